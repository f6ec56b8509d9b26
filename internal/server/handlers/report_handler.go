package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/service/delivery"
)

// DeliveryRecorder records deliveries and lists them per submitter.
type DeliveryRecorder interface {
	Record(ctx context.Context, in models.DeliveryInput) (delivery.Result, error)
	ListByPhone(ctx context.Context, phone string) ([]models.DeliveryReport, error)
}

// ReportService aggregates reports and activities.
type ReportService interface {
	Reports(ctx context.Context, window models.DateRange) (models.ReportSummary, error)
	ListActivities(ctx context.Context, window models.DateRange) ([]models.Activity, error)
}

// ReportHandler serves delivery reporting and the activity feed.
type ReportHandler struct {
	recorder  DeliveryRecorder
	reporting ReportService
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(recorder DeliveryRecorder, reporting ReportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{recorder: recorder, reporting: reporting, logger: logger}
}

// ReportDelivery records a completed delivery and consumes stock.
func (h *ReportHandler) ReportDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, err, "Failed to submit report")
		return
	}

	result, err := h.recorder.Record(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit report")
		return
	}

	c.JSON(http.StatusOK, deliveryResponse(result))
}

// List returns reports with totals and per-place grouping, optionally
// restricted to [startDate, endDate].
func (h *ReportHandler) List(c *gin.Context) {
	window, err := dateRangeFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch reports")
		return
	}

	summary, err := h.reporting.Reports(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"reports":        summary.Reports,
		"totals":         summary.Totals,
		"reportsByPlace": summary.ReportsByPlace,
		"count":          summary.Count,
	})
}

// ListByPhone returns the reports submitted by one user.
func (h *ReportHandler) ListByPhone(c *gin.Context) {
	reports, err := h.recorder.ListByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch reports")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reports": reports})
}

// Activities returns the merged delivery and stock feed, newest first.
func (h *ReportHandler) Activities(c *gin.Context) {
	window, err := dateRangeFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch activities")
		return
	}

	activities, err := h.reporting.ListActivities(c.Request.Context(), window)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch activities")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "activities": activities})
}

func deliveryResponse(result delivery.Result) gin.H {
	return gin.H{
		"success":      true,
		"message":      "Delivery report submitted and stock updated successfully",
		"report":       result.Report,
		"updatedStock": result.UpdatedStock,
	}
}
