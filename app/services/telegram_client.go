package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReviewChannel delivers a candidate deal to a human reviewer and posts
// plain status messages. The pipeline never blocks on the reviewer: it
// sends and returns.
type ReviewChannel interface {
	SendCandidate(ctx context.Context, caption string, videoURL string) error
	SendMessage(ctx context.Context, text string) error
}

// TelegramClient implements ReviewChannel over the Telegram Bot API.
type TelegramClient struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	HTTPClient *http.Client
}

// NewTelegramClient creates a Telegram review channel client
func NewTelegramClient(baseURL, botToken, chatID string, timeout time.Duration) *TelegramClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TelegramClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		BotToken:   botToken,
		ChatID:     chatID,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type telegramResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendCandidate posts the candidate's rendered reel (by URL) with its
// caption to the review chat.
func (c *TelegramClient) SendCandidate(ctx context.Context, caption string, videoURL string) error {
	if videoURL == "" {
		return c.SendMessage(ctx, caption)
	}

	payload := map[string]string{
		"chat_id": c.ChatID,
		"video":   videoURL,
		"caption": caption,
	}
	return c.call(ctx, "sendVideo", payload)
}

// SendMessage posts a plain text message to the review chat.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id": c.ChatID,
		"text":    text,
	}
	return c.call(ctx, "sendMessage", payload)
}

func (c *TelegramClient) call(ctx context.Context, method string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var out telegramResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("telegram %s decode failed: %w", method, err)
	}
	if !out.OK {
		return fmt.Errorf("telegram %s rejected: %s", method, out.Description)
	}
	return nil
}
