package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

// StockLedger is the subset of the ledger exposed over HTTP. Only the
// delivery recorder decrements stock.
type StockLedger interface {
	Current(ctx context.Context) (models.StockSnapshot, error)
	Set(ctx context.Context, counts models.CanCounts) (models.StockSnapshot, error)
}

// StockHandler serves the stock endpoints.
type StockHandler struct {
	ledger StockLedger
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(ledger StockLedger, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{ledger: ledger, logger: logger}
}

// Get returns the current stock, initializing it on first use.
func (h *StockHandler) Get(c *gin.Context) {
	stock, err := h.ledger.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stock": stock})
}

// Update overwrites the stock with the absolute quantities in the body.
func (h *StockHandler) Update(c *gin.Context) {
	var req countsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err, "Server error")
		return
	}

	stock, err := h.ledger.Set(c.Request.Context(), req.counts())
	if err != nil {
		respondError(c, h.logger, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stock": stock})
}
