package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the two token kinds the API uses: short
// lived access tokens checked by the auth middleware on every protected
// route, and long-lived refresh tokens accepted only by /auth/refresh.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies an access token and extracts its claims.
	// A refresh token presented here fails with ErrWrongTokenType; other
	// failures map to ErrExpiredToken or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed refresh token for the user.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken verifies a refresh token and extracts its
	// claims. Failures map to the refresh-token error sentinels so the
	// API layer never discloses which check rejected the token.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims carries the decoded token contents. TokenType distinguishes access
// from refresh tokens so one can never stand in for the other.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
