package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWallet serves the provider's wallet snapshot through the read-through
// cache. The cache is a freshness optimization only; on any miss the snapshot
// is re-derived from the ledger and written back.
func (h *Handlers) GetWallet(c *gin.Context) {
	providerID := c.Param("provider_id")

	if snap, ok := h.WalletCache.Get(c.Request.Context(), providerID); ok {
		c.JSON(http.StatusOK, snap)
		return
	}

	snap, err := h.Wallet.Snapshot(c.Request.Context(), providerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.WalletCache.Set(c.Request.Context(), snap)
	c.JSON(http.StatusOK, snap)
}
