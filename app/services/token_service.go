package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token service errors
var (
	ErrTokenExpired         = errors.New("token has expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrMissingSecretKey     = errors.New("secret key is required")
)

// TokenService manages JWT tokens for the review/publish API. There is a
// single reviewer role, so the surface is deliberately small.
type TokenService interface {
	GenerateAdminToken(username string) (string, error)
	ValidateAdminToken(token string) (*AdminTokenClaims, error)
}

// AdminTokenClaims represents the JWT claims for reviewer tokens
type AdminTokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenServiceImpl implements TokenService with HMAC signing
type TokenServiceImpl struct {
	secretKey      []byte
	issuer         string
	audience       string
	accessTokenTTL time.Duration
}

// NewTokenService creates a new token service instance
func NewTokenService(secretKey, issuer, audience string, accessTokenTTL time.Duration) (TokenService, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}
	if accessTokenTTL <= 0 {
		accessTokenTTL = 12 * time.Hour
	}
	return &TokenServiceImpl{
		secretKey:      []byte(secretKey),
		issuer:         issuer,
		audience:       audience,
		accessTokenTTL: accessTokenTTL,
	}, nil
}

// GenerateAdminToken issues a signed access token for the reviewer
func (s *TokenServiceImpl) GenerateAdminToken(username string) (string, error) {
	now := time.Now().UTC()
	claims := AdminTokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAdminToken parses and verifies a reviewer token
func (s *TokenServiceImpl) ValidateAdminToken(tokenString string) (*AdminTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminTokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyPassword compares a bcrypt hash against a plaintext password
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashPassword produces a bcrypt hash for configuration bootstrapping
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
