// Package handlers contains HTTP request handlers for the API layer
package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/mmutvidal/escapadas-go/app/dto"
	"github.com/mmutvidal/escapadas-go/app/services"
	"github.com/mmutvidal/escapadas-go/config"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	tokenService services.TokenService
	adminCfg     config.AdminConfig
	tokenTTL     time.Duration
	validator    *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(tokenService services.TokenService, adminCfg config.AdminConfig, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		adminCfg:     adminCfg,
		tokenTTL:     tokenTTL,
		validator:    validator.New(),
	}
}

// Login verifies the admin credentials and issues an access token
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST_BODY", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	if req.Username != h.adminCfg.Username {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
	}
	if err := services.VerifyPassword(h.adminCfg.PasswordHash, req.Password); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
	}

	token, err := h.tokenService.GenerateAdminToken(req.Username)
	if err != nil {
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue token", "TOKEN_ISSUE_FAILED", nil)
	}

	return SuccessResponse(c, fiber.StatusOK, "Login successful", dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
	})
}
