package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository/memory"
	"github.com/mamadbah2/watercan/internal/service/stock"
)

type fakeMirror struct {
	mirrored []models.DeliveryReport
	err      error
}

func (f *fakeMirror) MirrorDelivery(_ context.Context, report models.DeliveryReport) error {
	f.mirrored = append(f.mirrored, report)
	return f.err
}

type failingReports struct {
	*memory.DeliveryReportRepository
}

func (failingReports) Insert(context.Context, models.DeliveryReport) (models.DeliveryReport, error) {
	return models.DeliveryReport{}, errors.New("disk full")
}

type fixture struct {
	recorder *Recorder
	ledger   *stock.Ledger
	reports  *memory.DeliveryReportRepository
	mirror   *fakeMirror
}

func newFixture(t *testing.T, initial models.CanCounts) fixture {
	t.Helper()
	stockRepo := memory.NewStockRepository()
	require.NoError(t, stockRepo.Save(context.Background(), models.StockSnapshot{CanCounts: initial, Version: 1}))

	ledger := stock.NewLedger(stockRepo, stock.WriteUnguarded, nil, nil)
	reports := memory.NewDeliveryReportRepository()
	mirror := &fakeMirror{}
	recorder := NewRecorder(ledger, reports, mirror, nil, nil)
	recorder.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

	return fixture{recorder: recorder, ledger: ledger, reports: reports, mirror: mirror}
}

func TestRecorder_DeliverThenRejectScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{Cans25L: 10, Cans10L: 10, Cans1L: 10})

	result, err := f.recorder.Record(ctx, models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans25L: 5},
		DeliveryPlace: "Main St",
		UserPhone:     "0700000000",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{Cans25L: 5, Cans10L: 10, Cans1L: 10}, result.UpdatedStock.CanCounts)
	assert.Equal(t, "Main St", result.Report.DeliveryPlace)
	assert.Equal(t, 1, f.reports.Len())

	_, err = f.recorder.Record(ctx, models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans25L: 6},
		DeliveryPlace: "Main St",
		UserPhone:     "0700000000",
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	current, err := f.ledger.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{Cans25L: 5, Cans10L: 10, Cans1L: 10}, current.CanCounts)
	assert.Equal(t, 1, f.reports.Len(), "no report for a failed decrement")
	assert.Len(t, f.mirror.mirrored, 1)
}

func TestRecorder_AssignsServerTimestamp(t *testing.T) {
	f := newFixture(t, models.CanCounts{Cans1L: 3})

	result, err := f.recorder.Record(context.Background(), models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans1L: 1},
		DeliveryPlace: "Depot",
		UserPhone:     "1",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), result.Report.Timestamp)

	supplied := time.Date(2024, 5, 30, 8, 30, 0, 0, time.UTC)
	result, err = f.recorder.Record(context.Background(), models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans1L: 1},
		DeliveryPlace: "Depot",
		UserPhone:     "1",
		Timestamp:     supplied,
	})
	require.NoError(t, err)
	assert.Equal(t, supplied, result.Report.Timestamp)
}

func TestRecorder_ValidationFailuresTouchNothing(t *testing.T) {
	tests := []struct {
		name string
		in   models.DeliveryInput
	}{
		{name: "missing place", in: models.DeliveryInput{CanCounts: models.CanCounts{Cans25L: 1}, UserPhone: "1"}},
		{name: "blank place", in: models.DeliveryInput{DeliveryPlace: "   ", UserPhone: "1"}},
		{name: "missing phone", in: models.DeliveryInput{DeliveryPlace: "Main St"}},
		{name: "negative quantity", in: models.DeliveryInput{CanCounts: models.CanCounts{Cans10L: -2}, DeliveryPlace: "Main St", UserPhone: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, models.CanCounts{Cans25L: 4, Cans10L: 4, Cans1L: 4})

			_, err := f.recorder.Record(ctx, tt.in)
			assert.ErrorIs(t, err, models.ErrValidation)

			current, err := f.ledger.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.CanCounts{Cans25L: 4, Cans10L: 4, Cans1L: 4}, current.CanCounts)
			assert.Zero(t, f.reports.Len())
		})
	}
}

func TestRecorder_TrimsPlace(t *testing.T) {
	f := newFixture(t, models.CanCounts{Cans25L: 1})

	result, err := f.recorder.Record(context.Background(), models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans25L: 1},
		DeliveryPlace: "  Market  ",
		UserPhone:     "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Market", result.Report.DeliveryPlace)
}

func TestRecorder_MirrorFailureDoesNotFailDelivery(t *testing.T) {
	f := newFixture(t, models.CanCounts{Cans25L: 2})
	f.mirror.err = errors.New("quota exceeded")

	_, err := f.recorder.Record(context.Background(), models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans25L: 1},
		DeliveryPlace: "Main St",
		UserPhone:     "1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.reports.Len())
}

func TestRecorder_ReportFailureAfterDecrementKeepsStockConsumed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{Cans25L: 3})
	recorder := NewRecorder(f.ledger, failingReports{f.reports}, nil, nil, nil)

	_, err := recorder.Record(ctx, models.DeliveryInput{
		CanCounts:     models.CanCounts{Cans25L: 2},
		DeliveryPlace: "Main St",
		UserPhone:     "1",
	})
	require.Error(t, err)

	current, err := f.ledger.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Cans25L, "the decrement is not rolled back")
}

func TestRecorder_ListByPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{Cans25L: 5})

	for _, phone := range []string{"111", "222", "111"} {
		_, err := f.recorder.Record(ctx, models.DeliveryInput{
			CanCounts:     models.CanCounts{Cans25L: 1},
			DeliveryPlace: "Main St",
			UserPhone:     phone,
		})
		require.NoError(t, err)
	}

	reports, err := f.recorder.ListByPhone(ctx, "111")
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	_, err = f.recorder.ListByPhone(ctx, " ")
	assert.ErrorIs(t, err, models.ErrValidation)
}
