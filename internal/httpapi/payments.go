package httpapi

import (
	"net/http"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/ledger"

	"github.com/gin-gonic/gin"
)

// ListPayments returns the provider's payment history with soft-hidden
// records filtered out.
func (h *Handlers) ListPayments(c *gin.Context) {
	payments, err := h.Ledger.History(c.Request.Context(), c.Param("provider_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if payments == nil {
		payments = []ledger.Payment{}
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// HidePayment soft-hides one payment from the provider's history view.
// Balances and invoices are unaffected. Unknown ids are a no-op.
func (h *Handlers) HidePayment(c *gin.Context) {
	providerID := c.Param("provider_id")
	paymentID := c.Param("payment_id")

	n, err := h.Ledger.SoftHide(c.Request.Context(), providerID, paymentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if n > 0 {
		h.Audit.Record(c.Request.Context(), audit.ActionPaymentHidden, providerID, paymentID, "")
	}
	c.JSON(http.StatusOK, gin.H{"hidden": n})
}

type bulkHideRequest struct {
	PaymentIDs []string `json:"payment_ids" binding:"required"`
}

// BulkHidePayments soft-hides a set of payments and reports how many records
// actually changed.
func (h *Handlers) BulkHidePayments(c *gin.Context) {
	providerID := c.Param("provider_id")

	var req bulkHideRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.PaymentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "payment_ids is required"})
		return
	}

	n, err := h.Ledger.BulkSoftHide(c.Request.Context(), providerID, req.PaymentIDs)
	if err != nil {
		respondErr(c, err)
		return
	}
	if n > 0 {
		h.Audit.Record(c.Request.Context(), audit.ActionPaymentHidden, providerID, "", "")
	}
	c.JSON(http.StatusOK, gin.H{"hidden": n})
}

// RecordPayment appends a new payment. Admin only: the booking flow is an
// external system feeding the ledger through this endpoint.
func (h *Handlers) RecordPayment(c *gin.Context) {
	var req ledger.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "malformed payment"})
		return
	}

	p, err := h.Ledger.Record(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionPaymentRecorded, p.ProviderID, p.ID, "")
	c.JSON(http.StatusCreated, p)
}

// CompletePayment marks the underlying service as delivered. Idempotent.
func (h *Handlers) CompletePayment(c *gin.Context) {
	p, err := h.Ledger.MarkCompleted(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionPaymentCompleted, p.ProviderID, p.ID, "")
	c.JSON(http.StatusOK, p)
}

// ReleasePayment releases a completed payment to the provider's wallet.
// Idempotent; fails with a conflict when the service is not completed.
func (h *Handlers) ReleasePayment(c *gin.Context) {
	p, err := h.Ledger.MarkReleased(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionPaymentReleased, p.ProviderID, p.ID, "")
	c.JSON(http.StatusOK, p)
}
