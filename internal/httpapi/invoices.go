package httpapi

import (
	"net/http"
	"strconv"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/commission"
	"healthpay-platform/internal/invoice"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListProviderInvoices returns the provider's invoices, newest first.
func (h *Handlers) ListProviderInvoices(c *gin.Context) {
	list, err := h.Invoices.ListByProvider(c.Request.Context(), c.Param("provider_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if list == nil {
		list = []invoice.Invoice{}
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list})
}

type issueInvoiceRequest struct {
	ProviderName string `json:"provider_name"`
	ProviderType string `json:"provider_type"`
	// CommissionPercent overrides rule/default resolution when present.
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}

// IssueInvoice bills every currently eligible payment of the provider. The
// commission percentage resolves as request override, then active rule for
// the provider type, then the platform default.
func (h *Handlers) IssueInvoice(c *gin.Context) {
	providerID := c.Param("provider_id")

	var req issueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "malformed invoice request"})
		return
	}
	ctx := c.Request.Context()

	pct, err := h.Commission.ResolvePercent(ctx, commission.ProviderType(req.ProviderType), req.CommissionPercent)
	if err != nil {
		respondErr(c, err)
		return
	}

	inv, err := h.Invoices.Issue(ctx, invoice.IssueRequest{
		ProviderID:        providerID,
		ProviderName:      req.ProviderName,
		ProviderType:      req.ProviderType,
		CommissionPercent: pct,
		Notes:             req.Notes,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(ctx, audit.ActionInvoiceIssued, providerID, inv.ID, inv.InvoiceNumber)
	c.JSON(http.StatusCreated, inv)
}

// ListInvoices pages through all invoices for the back office.
func (h *Handlers) ListInvoices(c *gin.Context) {
	opts := invoice.ListOpts{
		ProviderID: c.Query("provider_id"),
		Limit:      intQuery(c, "limit", 50),
		Offset:     intQuery(c, "offset", 0),
	}

	list, total, err := h.Invoices.List(c.Request.Context(), opts)
	if err != nil {
		respondErr(c, err)
		return
	}
	if list == nil {
		list = []invoice.Invoice{}
	}
	c.JSON(http.StatusOK, gin.H{
		"invoices": list,
		"total":    total,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
