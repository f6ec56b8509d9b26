package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
	"github.com/mamadbah2/watercan/pkg/metrics"
)

// StockDecrementer is the single ledger operation the recorder may call.
type StockDecrementer interface {
	Decrement(ctx context.Context, req models.CanCounts) (models.StockSnapshot, error)
}

// Mirror receives a copy of every persisted report.
type Mirror interface {
	MirrorDelivery(ctx context.Context, report models.DeliveryReport) error
}

// Result is what a successful recording returns to the caller.
type Result struct {
	Report       models.DeliveryReport
	UpdatedStock models.StockSnapshot
}

// Recorder validates deliveries, consumes stock and persists reports.
type Recorder struct {
	ledger  StockDecrementer
	reports repository.DeliveryReportRepository
	mirror  Mirror
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecorder wires a recorder. mirror may be nil.
func NewRecorder(ledger StockDecrementer, reports repository.DeliveryReportRepository, mirror Mirror, m *metrics.Metrics, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		ledger:  ledger,
		reports: reports,
		mirror:  mirror,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Record decrements the ledger and then stores the report. When the
// decrement fails no report is written. A failure after the decrement leaves
// the stock consumed without a matching report; nothing compensates for it.
func (r *Recorder) Record(ctx context.Context, in models.DeliveryInput) (Result, error) {
	in.DeliveryPlace = strings.TrimSpace(in.DeliveryPlace)
	if err := validate(in); err != nil {
		r.metrics.RecordDeliveryRejection("validation")
		return Result{}, err
	}

	updated, err := r.ledger.Decrement(ctx, in.CanCounts)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			r.metrics.RecordDeliveryRejection("insufficient_stock")
			r.logger.Info("delivery rejected", zap.String("place", in.DeliveryPlace), zap.Error(err))
		}
		return Result{}, err
	}

	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = r.now()
	}

	report, err := r.reports.Insert(ctx, models.DeliveryReport{
		CanCounts:     in.CanCounts,
		DeliveryPlace: in.DeliveryPlace,
		UserPhone:     in.UserPhone,
		Timestamp:     timestamp.UTC(),
	})
	if err != nil {
		r.logger.Error("stock decremented but report was not saved",
			zap.String("place", in.DeliveryPlace),
			zap.Int("cans25L", in.Cans25L),
			zap.Int("cans10L", in.Cans10L),
			zap.Int("cans1L", in.Cans1L),
			zap.Error(err))
		return Result{}, fmt.Errorf("save delivery report: %w", err)
	}

	r.metrics.RecordDelivery(in.Cans25L, in.Cans10L, in.Cans1L)
	r.logger.Info("delivery recorded",
		zap.String("report_id", report.ID),
		zap.String("place", report.DeliveryPlace),
		zap.String("user_phone", report.UserPhone))

	if r.mirror != nil {
		if err := r.mirror.MirrorDelivery(ctx, report); err != nil {
			r.logger.Warn("failed to mirror delivery", zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	return Result{Report: report, UpdatedStock: updated}, nil
}

// ListByPhone returns the reports submitted from one phone, newest first.
func (r *Recorder) ListByPhone(ctx context.Context, phone string) ([]models.DeliveryReport, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, models.NewValidationError("phone", "is required")
	}
	reports, err := r.reports.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list reports for %s: %w", phone, err)
	}
	return reports, nil
}

func validate(in models.DeliveryInput) error {
	switch {
	case in.DeliveryPlace == "":
		return models.NewValidationError("deliveryPlace", "is required")
	case strings.TrimSpace(in.UserPhone) == "":
		return models.NewValidationError("userPhone", "is required")
	case in.Negative():
		return models.NewValidationError("quantities", "must not be negative")
	}
	return nil
}
