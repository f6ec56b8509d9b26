package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/service/delivery"
)

// OrderQueue is the order service surface used over HTTP.
type OrderQueue interface {
	Create(ctx context.Context, in models.OrderInput) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (models.Order, error)
	Update(ctx context.Context, id string, in models.OrderInput) (models.Order, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id, userPhone string) (delivery.Result, error)
}

// OrderHandler serves the order queue endpoints.
type OrderHandler struct {
	orders OrderQueue
	logger *zap.Logger
}

// NewOrderHandler constructs the HTTP handler adapter.
func NewOrderHandler(orders OrderQueue, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// List returns every pending order.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Create queues a new order.
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err, "Failed to create order")
		return
	}

	order, err := h.orders.Create(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// Get returns a single order.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Update replaces an order's fields.
func (h *OrderHandler) Update(c *gin.Context) {
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err, "Failed to update order")
		return
	}

	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err, "Failed to update order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Delete removes an order.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// Complete records the order as delivered and removes it from the queue.
func (h *OrderHandler) Complete(c *gin.Context) {
	var req completeOrderRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err, "Failed to complete order")
		return
	}

	result, err := h.orders.Complete(c.Request.Context(), c.Param("id"), req.UserPhone)
	if err != nil {
		h.fail(c, err, "Failed to complete order")
		return
	}
	c.JSON(http.StatusOK, deliveryResponse(result))
}

func (h *OrderHandler) fail(c *gin.Context, err error, fallback string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	respondError(c, h.logger, err, fallback)
}
