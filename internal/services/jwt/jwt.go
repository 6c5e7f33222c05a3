// Package jwt provides bearer token generation and validation.
//
// Tokens are stateless HS256 JWTs carrying the user's id as subject and the
// user's role as a custom claim. The default lifetime is one hour; signin
// with "remember me" stretches it to seven days.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token has expired")
	ErrTokenNotFound    = errors.New("jwt: token not found")
	ErrInvalidClaims    = errors.New("jwt: invalid claims")
	ErrTokenNotYetValid = errors.New("jwt: token not yet valid")
)

// Claims are the verified contents of a bearer token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService creates and validates bearer tokens.
// Create one instance and reuse it throughout the application.
type TokenService struct {
	secret         []byte
	tokenExpiry    time.Duration
	extendedExpiry time.Duration
	issuer         string
	parser         *jwt.Parser
}

// NewTokenService creates a new TokenService.
//
// It reads configuration from environment variables:
//   - JWT_SECRET: signing secret (required in production)
//   - JWT_ISSUER: token issuer name (optional, default: "social-media-api")
func NewTokenService() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default-secret-change-in-production!"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "social-media-api"
	}

	parser := jwt.NewParser(
		// Only accept HS256 - prevents algorithm confusion attacks
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithIssuer(issuer),
	)

	return &TokenService{
		secret:         []byte(secret),
		tokenExpiry:    1 * time.Hour,
		extendedExpiry: 7 * 24 * time.Hour,
		issuer:         issuer,
		parser:         parser,
	}
}

// GenerateToken creates a signed token for the subject. rememberMe selects
// the extended seven-day lifetime instead of the default hour.
func (s *TokenService) GenerateToken(ctx context.Context, subject, role string, rememberMe bool) (string, error) {
	now := time.Now()

	expiry := s.tokenExpiry
	if rememberMe {
		expiry = s.extendedExpiry
	}

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("creating token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token string and returns its claims.
//
// Expired and otherwise-invalid tokens map to distinct errors here; HTTP
// callers collapse both into a single 401 so the cause is not leaked.
func (s *TokenService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenNotFound
	}

	claims := &Claims{}

	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, convertError(err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateToken checks if a token is valid.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) error {
	_, err := s.ParseToken(ctx, tokenString)
	return err
}

// GetSubjectFromToken extracts the subject (the user id) from a token.
func (s *TokenService) GetSubjectFromToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.ParseToken(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// convertError transforms jwt library errors into our custom errors.
func convertError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrTokenNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: token is malformed", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: signature is invalid", ErrInvalidToken)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
