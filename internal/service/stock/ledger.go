package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
	"github.com/mamadbah2/watercan/pkg/metrics"
)

// WriteMode selects how the ledger commits a read-modify-write cycle.
type WriteMode string

const (
	// WriteUnguarded overwrites the snapshot by id. Two requests reading the
	// same snapshot both succeed and the last write wins.
	WriteUnguarded WriteMode = "unguarded"
	// WriteVersioned commits only if the snapshot version is still the one
	// read; the loser gets models.ErrStockConflict.
	WriteVersioned WriteMode = "versioned"
)

// ParseWriteMode validates a configured write mode.
func ParseWriteMode(value string) (WriteMode, error) {
	switch WriteMode(value) {
	case WriteUnguarded, WriteVersioned:
		return WriteMode(value), nil
	default:
		return "", fmt.Errorf("unknown stock write mode %q", value)
	}
}

// Ledger owns the single current-stock record.
type Ledger struct {
	repo    repository.StockRepository
	mode    WriteMode
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedger wires a ledger over the given repository.
func NewLedger(repo repository.StockRepository, mode WriteMode, m *metrics.Metrics, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mode == "" {
		mode = WriteUnguarded
	}
	return &Ledger{
		repo:    repo,
		mode:    mode,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Mode reports the configured write mode.
func (l *Ledger) Mode() WriteMode {
	return l.mode
}

// Current returns the current snapshot, creating a zero one on first use.
func (l *Ledger) Current(ctx context.Context) (models.StockSnapshot, error) {
	snapshot, err := l.repo.Current(ctx)
	if err != nil {
		return models.StockSnapshot{}, fmt.Errorf("load stock: %w", err)
	}
	if snapshot != nil {
		return *snapshot, nil
	}
	return l.initialize(ctx)
}

// Set overwrites the on-hand quantities with absolute values.
func (l *Ledger) Set(ctx context.Context, counts models.CanCounts) (models.StockSnapshot, error) {
	if counts.Negative() {
		return models.StockSnapshot{}, models.NewValidationError("stock", "quantities must not be negative")
	}

	current, err := l.Current(ctx)
	if err != nil {
		return models.StockSnapshot{}, err
	}

	next := models.StockSnapshot{
		CanCounts:   counts,
		ID:          current.ID,
		LastUpdated: l.now().UTC(),
		Version:     current.Version + 1,
	}
	if err := l.write(ctx, next, current.Version); err != nil {
		return models.StockSnapshot{}, err
	}

	// The snapshot is already committed; a missing history row only drops
	// this write from the activity feed.
	adjustment := models.StockAdjustment{CanCounts: counts, LastUpdated: next.LastUpdated}
	if _, err := l.repo.AppendAdjustment(ctx, adjustment); err != nil {
		l.logger.Error("stock set but adjustment was not recorded",
			zap.Int64("version", next.Version),
			zap.Error(err))
	}

	l.logger.Info("stock set",
		zap.Int("cans25L", counts.Cans25L),
		zap.Int("cans10L", counts.Cans10L),
		zap.Int("cans1L", counts.Cans1L),
		zap.Int64("version", next.Version))
	return next, nil
}

// Decrement subtracts the requested quantities in a single write. It fails
// with models.ErrInsufficientStock, leaving the snapshot untouched, when any
// size is short.
func (l *Ledger) Decrement(ctx context.Context, req models.CanCounts) (models.StockSnapshot, error) {
	if req.Negative() {
		return models.StockSnapshot{}, models.NewValidationError("quantities", "must not be negative")
	}

	current, err := l.Current(ctx)
	if err != nil {
		return models.StockSnapshot{}, err
	}

	if !current.Covers(req) {
		return models.StockSnapshot{}, fmt.Errorf("%w: requested %d/%d/%d, available %d/%d/%d",
			models.ErrInsufficientStock,
			req.Cans25L, req.Cans10L, req.Cans1L,
			current.Cans25L, current.Cans10L, current.Cans1L)
	}

	next := current
	next.CanCounts = current.Sub(req)
	next.LastUpdated = l.now().UTC()
	next.Version = current.Version + 1
	if err := l.write(ctx, next, current.Version); err != nil {
		return models.StockSnapshot{}, err
	}

	l.logger.Debug("stock decremented",
		zap.Int("cans25L", req.Cans25L),
		zap.Int("cans10L", req.Cans10L),
		zap.Int("cans1L", req.Cans1L),
		zap.Int64("version", next.Version))
	return next, nil
}

func (l *Ledger) write(ctx context.Context, next models.StockSnapshot, readVersion int64) error {
	var err error
	if l.mode == WriteVersioned {
		err = l.repo.SaveIfVersion(ctx, next, readVersion)
	} else {
		err = l.repo.Save(ctx, next)
	}

	if errors.Is(err, models.ErrStockConflict) {
		l.metrics.RecordStockConflict()
		l.logger.Warn("stock write lost a concurrent update", zap.Int64("read_version", readVersion))
		return err
	}
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}

	l.metrics.SetStockLevel(next.Cans25L, next.Cans10L, next.Cans1L)
	return nil
}

func (l *Ledger) initialize(ctx context.Context) (models.StockSnapshot, error) {
	snapshot := models.StockSnapshot{
		ID:          repository.CurrentStockID,
		LastUpdated: l.now().UTC(),
		Version:     1,
	}

	err := l.repo.Create(ctx, snapshot)
	if errors.Is(err, models.ErrStockConflict) {
		// Someone else initialized it between our read and insert.
		existing, err := l.repo.Current(ctx)
		if err != nil {
			return models.StockSnapshot{}, fmt.Errorf("reload stock: %w", err)
		}
		if existing == nil {
			return models.StockSnapshot{}, errors.New("stock vanished after concurrent initialization")
		}
		return *existing, nil
	}
	if err != nil {
		return models.StockSnapshot{}, fmt.Errorf("create stock: %w", err)
	}

	if _, err := l.repo.AppendAdjustment(ctx, models.StockAdjustment{LastUpdated: snapshot.LastUpdated}); err != nil {
		return models.StockSnapshot{}, fmt.Errorf("record initial stock: %w", err)
	}

	l.metrics.SetStockLevel(0, 0, 0)
	l.logger.Info("stock ledger initialized")
	return snapshot, nil
}
