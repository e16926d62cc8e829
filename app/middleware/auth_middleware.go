// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mmutvidal/escapadas-go/app/dto"
	"github.com/mmutvidal/escapadas-go/app/services"
)

// AuthMiddleware handles JWT token validation for the admin endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the admin JWT carried in the Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: &dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: &dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: &dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			var code, msg string
			if errors.Is(err, services.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
				msg = "Access token has expired"
			} else if errors.Is(err, services.ErrInvalidToken) {
				code = "TOKEN_INVALID"
				msg = "Invalid access token"
			} else {
				code = "TOKEN_VALIDATION_FAILED"
				msg = "Token validation failed"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: msg,
				Error:   &dto.ErrorDetail{Code: code},
			})
		}

		c.Locals("admin_username", claims.Username)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// GetAdminUsernameFromContext extracts the authenticated admin username
func GetAdminUsernameFromContext(c fiber.Ctx) (string, bool) {
	username, ok := c.Locals("admin_username").(string)
	return username, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.AdminTokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.AdminTokenClaims)
	return claims, ok
}
