package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PublishChannel publishes a rendered reel and returns its public permalink.
type PublishChannel interface {
	PublishReel(ctx context.Context, videoURL, caption string) (permalink string, err error)
}

// InstagramClient implements PublishChannel over the Instagram Graph API:
// create a reel container, poll until the video is processed, publish, and
// fetch the permalink.
type InstagramClient struct {
	BaseURL      string
	AccessToken  string
	IGUserID     string
	HTTPClient   *http.Client
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewInstagramClient creates an Instagram Graph API client
func NewInstagramClient(baseURL, accessToken, igUserID string, pollInterval, pollTimeout time.Duration) *InstagramClient {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 3 * time.Minute
	}
	return &InstagramClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		AccessToken:  accessToken,
		IGUserID:     igUserID,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		PollInterval: pollInterval,
		PollTimeout:  pollTimeout,
	}
}

// PublishReel runs the full container→poll→publish→permalink sequence.
func (c *InstagramClient) PublishReel(ctx context.Context, videoURL, caption string) (string, error) {
	creationID, err := c.createReelContainer(ctx, videoURL, caption)
	if err != nil {
		return "", err
	}

	if err := c.waitUntilReady(ctx, creationID); err != nil {
		return "", err
	}

	mediaID, err := c.publishContainer(ctx, creationID)
	if err != nil {
		return "", err
	}

	return c.mediaPermalink(ctx, mediaID)
}

func (c *InstagramClient) createReelContainer(ctx context.Context, videoURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("media_type", "REELS")
	form.Set("video_url", videoURL)
	form.Set("caption", caption)
	form.Set("access_token", c.AccessToken)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, fmt.Sprintf("/%s/media", c.IGUserID), form, &out); err != nil {
		return "", fmt.Errorf("instagram container creation failed: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("instagram container creation returned no id")
	}
	return out.ID, nil
}

// waitUntilReady polls the container status until FINISHED, ERROR, or the
// poll timeout.
func (c *InstagramClient) waitUntilReady(ctx context.Context, creationID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		var out struct {
			StatusCode string `json:"status_code"`
		}
		q := url.Values{}
		q.Set("fields", "status_code")
		q.Set("access_token", c.AccessToken)
		if err := c.get(ctx, fmt.Sprintf("/%s", creationID), q, &out); err != nil {
			return fmt.Errorf("instagram status poll failed: %w", err)
		}

		switch out.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return fmt.Errorf("instagram did not process the video: %s", out.StatusCode)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("instagram processing timed out: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *InstagramClient) publishContainer(ctx context.Context, creationID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", c.AccessToken)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, fmt.Sprintf("/%s/media_publish", c.IGUserID), form, &out); err != nil {
		return "", fmt.Errorf("instagram publish failed: %w", err)
	}
	return out.ID, nil
}

func (c *InstagramClient) mediaPermalink(ctx context.Context, mediaID string) (string, error) {
	var out struct {
		Permalink string `json:"permalink"`
	}
	q := url.Values{}
	q.Set("fields", "permalink")
	q.Set("access_token", c.AccessToken)
	if err := c.get(ctx, fmt.Sprintf("/%s", mediaID), q, &out); err != nil {
		return "", fmt.Errorf("instagram permalink lookup failed: %w", err)
	}
	return out.Permalink, nil
}

func (c *InstagramClient) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *InstagramClient) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *InstagramClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
