package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

// DeliveryReportRepository keeps delivery reports in process memory.
type DeliveryReportRepository struct {
	mu      sync.RWMutex
	reports []models.DeliveryReport
}

// NewDeliveryReportRepository creates an empty in-memory report store.
func NewDeliveryReportRepository() *DeliveryReportRepository {
	return &DeliveryReportRepository{}
}

var _ repository.DeliveryReportRepository = (*DeliveryReportRepository)(nil)

// Insert appends a report and assigns its identifier.
func (r *DeliveryReportRepository) Insert(_ context.Context, report models.DeliveryReport) (models.DeliveryReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report.ID = uuid.NewString()
	r.reports = append(r.reports, report)
	return report, nil
}

// List returns the reports inside the window in insertion order.
func (r *DeliveryReportRepository) List(_ context.Context, window models.DateRange) ([]models.DeliveryReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.DeliveryReport, 0, len(r.reports))
	for _, report := range r.reports {
		if window.Contains(report.Timestamp) {
			out = append(out, report)
		}
	}
	return out, nil
}

// ListByPhone returns the reports submitted from phone, newest first.
func (r *DeliveryReportRepository) ListByPhone(_ context.Context, phone string) ([]models.DeliveryReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.DeliveryReport, 0)
	for _, report := range r.reports {
		if report.UserPhone == phone {
			out = append(out, report)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Len returns the number of stored reports.
func (r *DeliveryReportRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}
