package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxProviderID
	ctxRole
)

func WithIdentity(ctx context.Context, userID, providerID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxProviderID, providerID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

// ProviderID returns the provider scope of the caller.
// Admin identities have no provider scope; callers must treat the error as
// "not a provider account", not as an authentication failure.
func ProviderID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxProviderID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("provider_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
