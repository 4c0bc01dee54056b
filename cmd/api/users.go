package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"

	"healthpay-platform/internal/httpapi"
	"healthpay-platform/internal/rbac"
)

// The marketplace user directory is a separate service; the ledger API only
// needs enough of one to issue tokens. AUTH_USERS seeds a static directory:
//
//	AUTH_USERS="email:password:user_id:provider_id:role;..."
//
// provider_id is empty for admin accounts.
type staticDirectory struct {
	byEmail map[string]staticUser
	byID    map[string]staticUser
}

type staticUser struct {
	identity httpapi.Identity
	email    string
	password string
}

func bootstrapDirectory() (*staticDirectory, error) {
	raw := strings.TrimSpace(os.Getenv("AUTH_USERS"))
	d := &staticDirectory{
		byEmail: make(map[string]staticUser),
		byID:    make(map[string]staticUser),
	}
	if raw == "" {
		return d, nil
	}

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 5 {
			return nil, fmt.Errorf("AUTH_USERS entry must have 5 fields, got %d", len(parts))
		}
		email := strings.ToLower(strings.TrimSpace(parts[0]))
		u := staticUser{
			email:    email,
			password: parts[1],
			identity: httpapi.Identity{
				UserID:     strings.TrimSpace(parts[2]),
				ProviderID: strings.TrimSpace(parts[3]),
				Role:       strings.TrimSpace(parts[4]),
			},
		}
		if email == "" || u.password == "" || u.identity.UserID == "" || u.identity.Role == "" {
			return nil, errors.New("AUTH_USERS entry missing email, password, user_id or role")
		}
		if !rbac.IsAdmin(u.identity.Role) && !rbac.IsProviderRole(u.identity.Role) && u.identity.Role != rbac.RoleFinance {
			return nil, fmt.Errorf("AUTH_USERS entry has unknown role %q", u.identity.Role)
		}
		if rbac.IsProviderRole(u.identity.Role) && u.identity.ProviderID == "" {
			return nil, fmt.Errorf("AUTH_USERS provider account %s needs a provider_id", email)
		}
		d.byEmail[email] = u
		d.byID[u.identity.UserID] = u
	}
	return d, nil
}

func (d *staticDirectory) Authenticate(ctx context.Context, email, password string) (httpapi.Identity, error) {
	_ = ctx
	u, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return httpapi.Identity{}, httpapi.ErrBadCredentials
	}
	if subtle.ConstantTimeCompare([]byte(u.password), []byte(password)) != 1 {
		return httpapi.Identity{}, httpapi.ErrBadCredentials
	}
	return u.identity, nil
}

func (d *staticDirectory) Lookup(ctx context.Context, userID string) (httpapi.Identity, error) {
	_ = ctx
	u, ok := d.byID[userID]
	if !ok {
		return httpapi.Identity{}, httpapi.ErrBadCredentials
	}
	return u.identity, nil
}
