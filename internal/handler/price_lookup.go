package handler

import (
	"net/http"

	"github.com/fumiakihyodo/meiwaproducts/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceLookupHandler serves the hot read path: the Redis-cached current
// price of a part, consumed by procurement and quoting screens.
type PriceLookupHandler struct{ svc service.PriceHistoryService }

func NewPriceLookupHandler(svc service.PriceHistoryService) *PriceLookupHandler {
	return &PriceLookupHandler{svc: svc}
}

func (h *PriceLookupHandler) CurrentPrice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.CachedCurrentPrice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
