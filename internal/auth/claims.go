package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// ProviderID scopes provider accounts (doctor, clinic, laboratory, pharmacy)
// to their own ledger; admin accounts carry no provider scope and are
// authorized through RBAC checks instead.
type Claims struct {
	jwt.RegisteredClaims

	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id,omitempty"`
	Role       string    `json:"role"`
	TokenType  TokenType `json:"token_type"`
}
