package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/auth"
	"healthpay-platform/internal/rbac"
	"healthpay-platform/internal/withdrawal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListWithdrawals returns the provider's withdrawal history, newest first.
func (h *Handlers) ListWithdrawals(c *gin.Context) {
	list, err := h.Withdrawals.List(c.Request.Context(), c.Param("provider_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if list == nil {
		list = []withdrawal.Withdrawal{}
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

type withdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
}

// SubmitWithdrawal creates a pending withdrawal after a balance check under
// the provider's serialization boundary.
func (h *Handlers) SubmitWithdrawal(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "malformed withdrawal request"})
		return
	}

	w, err := h.Withdrawals.Submit(c.Request.Context(), withdrawal.Request{
		ProviderID:    c.Param("provider_id"),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionWithdrawalRequested, w.ProviderID, w.ID, w.Amount.String())
	c.JSON(http.StatusCreated, w)
}

// providerDeletable: providers may clean up requests that never touched the
// balance. Removing approved/completed records (which restores balance by
// derivation) is an admin move.
func providerDeletable(s withdrawal.Status) bool {
	return s == withdrawal.StatusPending || s == withdrawal.StatusRejected
}

// DeleteWithdrawal removes one withdrawal from the provider's history.
func (h *Handlers) DeleteWithdrawal(c *gin.Context) {
	providerID := c.Param("provider_id")
	withdrawalID := c.Param("withdrawal_id")
	ctx := c.Request.Context()

	if !h.callerIsAdmin(c) {
		w, err := h.Withdrawals.Get(ctx, withdrawalID)
		if err != nil {
			if errors.Is(err, withdrawal.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"deleted": 0})
				return
			}
			respondErr(c, err)
			return
		}
		if w.ProviderID == providerID && !providerDeletable(w.Status) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "only pending or rejected withdrawals can be removed"})
			return
		}
	}

	n, err := h.Withdrawals.Delete(ctx, providerID, withdrawalID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if n > 0 {
		h.Audit.Record(ctx, audit.ActionWithdrawalDeleted, providerID, withdrawalID, "")
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type bulkDeleteRequest struct {
	ProviderID    string   `json:"provider_id" binding:"required"`
	WithdrawalIDs []string `json:"withdrawal_ids" binding:"required"`
}

// BulkDeleteWithdrawals removes a set of withdrawals and reports how many
// records actually went away. Unknown ids are skipped, not errors.
func (h *Handlers) BulkDeleteWithdrawals(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.WithdrawalIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "provider_id and withdrawal_ids are required"})
		return
	}
	ctx := c.Request.Context()

	if !h.callerIsAdmin(c) {
		// The route carries no :provider_id, so ownership is enforced here.
		pid, err := auth.ProviderID(ctx)
		if err != nil || pid != req.ProviderID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		for _, id := range req.WithdrawalIDs {
			w, err := h.Withdrawals.Get(ctx, id)
			if err != nil {
				continue
			}
			if w.ProviderID == req.ProviderID && !providerDeletable(w.Status) {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "only pending or rejected withdrawals can be removed"})
				return
			}
		}
	}

	n, err := h.Withdrawals.BulkDelete(ctx, req.ProviderID, req.WithdrawalIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	if n > 0 {
		h.Audit.Record(ctx, audit.ActionWithdrawalDeleted, req.ProviderID, "", fmt.Sprintf("bulk removed %d", n))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type transitionRequest struct {
	Status withdrawal.Status `json:"status" binding:"required"`
}

// TransitionWithdrawal moves a withdrawal through its lifecycle
// (pending→approved/rejected, approved→completed). Admin only.
func (h *Handlers) TransitionWithdrawal(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "status is required"})
		return
	}

	w, err := h.Withdrawals.Transition(c.Request.Context(), c.Param("withdrawal_id"), req.Status)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionWithdrawalMoved, w.ProviderID, w.ID, string(w.Status))
	c.JSON(http.StatusOK, w)
}

// DeleteAllWithdrawals wipes a provider's withdrawal history. Admin only.
func (h *Handlers) DeleteAllWithdrawals(c *gin.Context) {
	providerID := c.Param("provider_id")

	n, err := h.Withdrawals.DeleteAll(c.Request.Context(), providerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if n > 0 {
		h.Audit.Record(c.Request.Context(), audit.ActionWithdrawalDeleted, providerID, "", fmt.Sprintf("history wiped, %d removed", n))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *Handlers) callerIsAdmin(c *gin.Context) bool {
	role, err := auth.Role(c.Request.Context())
	return err == nil && rbac.IsAdmin(role)
}
