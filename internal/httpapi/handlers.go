package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/auth"
	"healthpay-platform/internal/cache"
	"healthpay-platform/internal/commission"
	"healthpay-platform/internal/invoice"
	"healthpay-platform/internal/ledger"
	"healthpay-platform/internal/notify"
	"healthpay-platform/internal/wallet"
	"healthpay-platform/internal/withdrawal"

	"github.com/gin-gonic/gin"
)

// Identity is what a successful credential check yields. Admin identities
// carry no provider scope.
type Identity struct {
	UserID     string
	ProviderID string
	Role       string
}

// ErrBadCredentials must be returned by Authenticator implementations for
// any failed login, without distinguishing unknown user from wrong password.
var ErrBadCredentials = errors.New("httpapi: invalid credentials")

// Authenticator checks login credentials and resolves identities for token
// rotation. The user directory itself lives outside this service.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
	Lookup(ctx context.Context, userID string) (Identity, error)
}

// Handlers carries every dependency of the HTTP surface. Route registration
// lives in cmd/api.
type Handlers struct {
	Auth  *auth.Manager
	Users Authenticator

	Ledger      *ledger.Service
	Wallet      *wallet.Calculator
	WalletCache *cache.WalletCache
	Withdrawals *withdrawal.Service
	Invoices    *invoice.Service
	Commission  *commission.Service
	Audit       *audit.Service
	Events      notify.Broker

	SSEHeartbeat time.Duration

	// Clock is injectable for deterministic tests.
	Clock func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// statusFor maps domain sentinels onto the HTTP error surface. Unknown
// errors stay opaque 500s; details go to logs, not clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, withdrawal.ErrValidation),
		errors.Is(err, invoice.ErrValidation),
		errors.Is(err, commission.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, withdrawal.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "insufficient_balance"
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, wallet.ErrNotFound),
		errors.Is(err, withdrawal.ErrNotFound),
		errors.Is(err, invoice.ErrNotFound),
		errors.Is(err, commission.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrNotCompleted),
		errors.Is(err, withdrawal.ErrIllegalTransition):
		return http.StatusConflict, "illegal_state_transition"
	case errors.Is(err, invoice.ErrNoEligiblePayments):
		return http.StatusConflict, "no_eligible_payments"
	case errors.Is(err, invoice.ErrConflict),
		errors.Is(err, withdrawal.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondErr(c *gin.Context, err error) {
	status, code := statusFor(err)
	body := gin.H{"error": code}
	if status < http.StatusInternalServerError {
		body["message"] = err.Error()
	}
	c.JSON(status, body)
}

// Healthz is liveness only; dependency health is the orchestrator's problem.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
