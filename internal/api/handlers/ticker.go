package handlers

import (
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type TickerHandler struct {
	tickers *services.TickerService
}

func NewTickerHandler(tickers *services.TickerService) *TickerHandler {
	return &TickerHandler{tickers: tickers}
}

type TickerRequest struct {
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active"`
	Order    *uint  `json:"order"`
}

// ListActive returns the tickers shown on the displays
func (h *TickerHandler) ListActive(c *gin.Context) {
	tickers, err := h.tickers.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"tickers": tickers})
}

// ListAll includes inactive tickers
func (h *TickerHandler) ListAll(c *gin.Context) {
	tickers, err := h.tickers.All(c.Request.Context(), 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"tickers": tickers})
}

func (h *TickerHandler) CreateTicker(c *gin.Context) {
	var req TickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ticker, err := h.tickers.Create(c.Request.Context(), services.TickerInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, ticker)
}

func (h *TickerHandler) UpdateTicker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req TickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ticker, err := h.tickers.Update(c.Request.Context(), id, services.TickerInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, ticker)
}

func (h *TickerHandler) DeleteTicker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.tickers.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Ticker deleted successfully"})
}
