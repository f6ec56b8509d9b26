package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

// StockRepository keeps the ledger in process memory.
type StockRepository struct {
	mu          sync.RWMutex
	current     *models.StockSnapshot
	adjustments []models.StockAdjustment
}

// NewStockRepository creates an empty in-memory stock repository.
func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

var _ repository.StockRepository = (*StockRepository)(nil)

// Current returns a copy of the stored snapshot.
func (r *StockRepository) Current(_ context.Context) (*models.StockSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil, nil
	}
	snapshot := *r.current
	return &snapshot, nil
}

// Create stores the initial snapshot.
func (r *StockRepository) Create(_ context.Context, snapshot models.StockSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return models.ErrStockConflict
	}
	snapshot.ID = repository.CurrentStockID
	r.current = &snapshot
	return nil
}

// Save overwrites the snapshot, creating it when missing.
func (r *StockRepository) Save(_ context.Context, snapshot models.StockSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot.ID = repository.CurrentStockID
	r.current = &snapshot
	return nil
}

// SaveIfVersion overwrites the snapshot when the stored version matches expected.
func (r *StockRepository) SaveIfVersion(_ context.Context, snapshot models.StockSnapshot, expected int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.Version != expected {
		return models.ErrStockConflict
	}
	snapshot.ID = repository.CurrentStockID
	r.current = &snapshot
	return nil
}

// AppendAdjustment records a history row.
func (r *StockRepository) AppendAdjustment(_ context.Context, adjustment models.StockAdjustment) (models.StockAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if adjustment.ID == "" {
		adjustment.ID = uuid.NewString()
	}
	r.adjustments = append(r.adjustments, adjustment)
	return adjustment, nil
}

// ListAdjustments returns history rows inside the window.
func (r *StockRepository) ListAdjustments(_ context.Context, window models.DateRange) ([]models.StockAdjustment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.StockAdjustment, 0, len(r.adjustments))
	for _, adjustment := range r.adjustments {
		if window.Contains(adjustment.LastUpdated) {
			out = append(out, adjustment)
		}
	}
	return out, nil
}
