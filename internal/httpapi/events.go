package httpapi

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamEvents is the provider's push channel, delivered as server-sent
// events. Events are cache-invalidation hints only: clients re-fetch
// authoritative state on receipt. Delivery is at-most-once; a dropped event
// is recovered by the next regular poll.
func (h *Handlers) StreamEvents(c *gin.Context) {
	providerID := c.Param("provider_id")

	sub := h.Events.Subscribe(providerID)
	defer sub.Close()

	heartbeat := h.SSEHeartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		}
	})
}
