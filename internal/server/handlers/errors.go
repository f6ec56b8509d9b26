package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

// respondError maps domain errors onto HTTP responses. Unknown errors are
// logged and hidden behind fallback.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock changed while processing the request, please retry"})
	default:
		logger.Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
