package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository/memory"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, mode WriteMode) (*Ledger, *memory.StockRepository) {
	t.Helper()
	repo := memory.NewStockRepository()
	ledger := NewLedger(repo, mode, nil, nil)
	ledger.now = func() time.Time { return fixedNow }
	return ledger, repo
}

func seed(t *testing.T, repo *memory.StockRepository, counts models.CanCounts) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), models.StockSnapshot{CanCounts: counts, Version: 1}))
}

func TestLedger_CurrentInitializesZeroSnapshot(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t, WriteUnguarded)

	snapshot, err := ledger.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{}, snapshot.CanCounts)
	assert.Equal(t, fixedNow, snapshot.LastUpdated)
	assert.Equal(t, int64(1), snapshot.Version)

	_, err = ledger.Current(ctx)
	require.NoError(t, err)

	history, err := repo.ListAdjustments(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the first read creates a history row")
}

func TestLedger_SetOverwritesRegardlessOfPriorState(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t, WriteUnguarded)
	seed(t, repo, models.CanCounts{Cans25L: 40, Cans10L: 7, Cans1L: 100})

	for _, counts := range []models.CanCounts{
		{Cans25L: 1, Cans10L: 2, Cans1L: 3},
		{Cans25L: 0, Cans10L: 0, Cans1L: 0},
		{Cans25L: 55, Cans10L: 1, Cans1L: 8},
	} {
		_, err := ledger.Set(ctx, counts)
		require.NoError(t, err)

		current, err := ledger.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, counts, current.CanCounts)
	}

	history, err := repo.ListAdjustments(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

type historyFailingRepo struct {
	*memory.StockRepository
}

func (historyFailingRepo) AppendAdjustment(context.Context, models.StockAdjustment) (models.StockAdjustment, error) {
	return models.StockAdjustment{}, errors.New("history unavailable")
}

func TestLedger_SetSucceedsWhenHistoryWriteFails(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStockRepository()
	seed(t, inner, models.CanCounts{Cans25L: 1})
	ledger := NewLedger(historyFailingRepo{inner}, WriteVersioned, nil, nil)

	snapshot, err := ledger.Set(ctx, models.CanCounts{Cans25L: 8, Cans10L: 2})
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{Cans25L: 8, Cans10L: 2}, snapshot.CanCounts)
	assert.EqualValues(t, 2, snapshot.Version)

	stored, err := inner.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.CanCounts, stored.CanCounts)

	history, err := inner.ListAdjustments(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_SetRejectsNegative(t *testing.T) {
	ledger, _ := newTestLedger(t, WriteUnguarded)

	_, err := ledger.Set(context.Background(), models.CanCounts{Cans10L: -1})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLedger_DecrementWithinStock(t *testing.T) {
	ctx := context.Background()
	start := models.CanCounts{Cans25L: 3, Cans10L: 2, Cans1L: 3}

	for a := 0; a <= start.Cans25L; a++ {
		for b := 0; b <= start.Cans10L; b++ {
			for c := 0; c <= start.Cans1L; c++ {
				ledger, repo := newTestLedger(t, WriteUnguarded)
				seed(t, repo, start)

				req := models.CanCounts{Cans25L: a, Cans10L: b, Cans1L: c}
				updated, err := ledger.Decrement(ctx, req)
				require.NoError(t, err, "decrement %+v", req)
				assert.Equal(t, start.Sub(req), updated.CanCounts)

				stored, err := repo.Current(ctx)
				require.NoError(t, err)
				assert.Equal(t, start.Sub(req), stored.CanCounts)
			}
		}
	}
}

func TestLedger_DecrementInsufficientLeavesStockUnchanged(t *testing.T) {
	ctx := context.Background()
	start := models.CanCounts{Cans25L: 5, Cans10L: 10, Cans1L: 10}

	tests := []struct {
		name string
		req  models.CanCounts
	}{
		{name: "25L short", req: models.CanCounts{Cans25L: 6}},
		{name: "10L short", req: models.CanCounts{Cans25L: 1, Cans10L: 11}},
		{name: "1L short", req: models.CanCounts{Cans1L: 11}},
		{name: "all short", req: models.CanCounts{Cans25L: 6, Cans10L: 11, Cans1L: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, repo := newTestLedger(t, WriteUnguarded)
			seed(t, repo, start)

			_, err := ledger.Decrement(ctx, tt.req)
			assert.ErrorIs(t, err, models.ErrInsufficientStock)

			stored, err := repo.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, start, stored.CanCounts)
			assert.Equal(t, int64(1), stored.Version)
		})
	}
}

func TestLedger_DecrementDoesNotWriteHistory(t *testing.T) {
	ctx := context.Background()
	ledger, repo := newTestLedger(t, WriteUnguarded)
	seed(t, repo, models.CanCounts{Cans25L: 5})

	_, err := ledger.Decrement(ctx, models.CanCounts{Cans25L: 1})
	require.NoError(t, err)

	history, err := repo.ListAdjustments(ctx, models.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_DecrementInitializesEmptyLedger(t *testing.T) {
	ledger, _ := newTestLedger(t, WriteUnguarded)

	updated, err := ledger.Decrement(context.Background(), models.CanCounts{})
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{}, updated.CanCounts)

	_, err = ledger.Decrement(context.Background(), models.CanCounts{Cans1L: 1})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
}

// lockstepRepo holds every reader until all expected readers have loaded the
// snapshot, forcing concurrent decrements to act on the same state.
type lockstepRepo struct {
	*memory.StockRepository
	reads sync.WaitGroup
}

func (r *lockstepRepo) Current(ctx context.Context) (*models.StockSnapshot, error) {
	snapshot, err := r.StockRepository.Current(ctx)
	r.reads.Done()
	r.reads.Wait()
	return snapshot, err
}

func raceDecrements(t *testing.T, mode WriteMode, req models.CanCounts) ([]error, models.StockSnapshot) {
	t.Helper()
	ctx := context.Background()

	inner := memory.NewStockRepository()
	seed(t, inner, models.CanCounts{Cans25L: 10})
	repo := &lockstepRepo{StockRepository: inner}
	repo.reads.Add(2)

	ledger := NewLedger(repo, mode, nil, nil)

	errs := make([]error, 2)
	var done sync.WaitGroup
	for i := range errs {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			_, errs[i] = ledger.Decrement(ctx, req)
		}(i)
	}
	done.Wait()

	stored, err := inner.Current(ctx)
	require.NoError(t, err)
	return errs, *stored
}

func TestLedger_UnguardedConcurrentDecrementsDoubleSpend(t *testing.T) {
	errs, stored := raceDecrements(t, WriteUnguarded, models.CanCounts{Cans25L: 6})

	// Both callers consume 6 of 10 cans and both succeed: 12 cans leave a
	// stock of 10, and the ledger only reflects one of the decrements.
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 4, stored.Cans25L)
}

func TestLedger_VersionedConcurrentDecrementsRejectLoser(t *testing.T) {
	errs, stored := raceDecrements(t, WriteVersioned, models.CanCounts{Cans25L: 6})

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrStockConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 4, stored.Cans25L)
	assert.Equal(t, int64(2), stored.Version)
}

func TestParseWriteMode(t *testing.T) {
	mode, err := ParseWriteMode("versioned")
	require.NoError(t, err)
	assert.Equal(t, WriteVersioned, mode)

	_, err = ParseWriteMode("additive")
	assert.Error(t, err)
}
