package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phl311.app/bot/internal/http/dto"
	"phl311.app/bot/internal/lookup"
	"phl311.app/bot/internal/service"
)

type LookupHandler struct {
	service service.LookupService
}

func NewLookupHandler(service service.LookupService) *LookupHandler {
	return &LookupHandler{service: service}
}

// Lookup returns the reply the bot would post for ?text=. 204 means the bot
// would stay silent.
func (h *LookupHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()

	text := strings.TrimSpace(c.Query("text"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	response, ok, err := h.service.Preview(ctx, text)
	if err != nil {
		if errors.Is(err, lookup.ErrInconsistentRecord) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "lookup failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to query service requests"})
		return
	}

	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.LookupResponse{Text: response})
}
