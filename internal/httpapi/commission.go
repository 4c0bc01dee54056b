package httpapi

import (
	"net/http"

	"healthpay-platform/internal/audit"
	"healthpay-platform/internal/commission"

	"github.com/gin-gonic/gin"
)

// ListCommissionRules returns every rule, newest effective first.
func (h *Handlers) ListCommissionRules(c *gin.Context) {
	rules, err := h.Commission.ListRules(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if rules == nil {
		rules = []commission.Rule{}
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// CreateCommissionRule installs a new effective-dated rule.
func (h *Handlers) CreateCommissionRule(c *gin.Context) {
	var req commission.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "malformed rule"})
		return
	}

	rule, err := h.Commission.CreateRule(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionRuleCreated, "", rule.ID, string(rule.ProviderType)+" "+rule.Percent.String()+"%")
	c.JSON(http.StatusCreated, rule)
}

// RetireCommissionRule takes a rule out of force immediately.
func (h *Handlers) RetireCommissionRule(c *gin.Context) {
	rule, err := h.Commission.RetireRule(c.Request.Context(), c.Param("rule_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Audit.Record(c.Request.Context(), audit.ActionRuleRetired, "", rule.ID, "")
	c.JSON(http.StatusOK, rule)
}

// ListAuditTrail exposes a provider's audit entries to the back office.
func (h *Handlers) ListAuditTrail(c *gin.Context) {
	entries, err := h.Audit.ListByProvider(c.Request.Context(), c.Param("provider_id"), intQuery(c, "limit", 100))
	if err != nil {
		respondErr(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
