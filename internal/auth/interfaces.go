package auth

import (
	"context"

	"github.com/hugh/orgbook/internal/roles"
)

// Authenticator defines credential verification and token exchange.
type Authenticator interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenService defines JWT issue and verification.
type TokenService interface {
	GenerateToken(accountID uint, email string, role roles.Role) (string, error)
	GenerateRefreshToken(accountID uint, email string, role roles.Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// PasswordHasher is the one-way hash/compare primitive used by the account
// registry.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator  = (*Service)(nil)
	_ TokenService   = (*JWTService)(nil)
	_ PasswordHasher = (*Hasher)(nil)
)
