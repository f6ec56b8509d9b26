package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository/memory"
	"github.com/mamadbah2/watercan/internal/service/delivery"
	"github.com/mamadbah2/watercan/internal/service/stock"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	orders  *memory.OrderRepository
	reports *memory.DeliveryReportRepository
	ledger  *stock.Ledger
}

func newFixture(t *testing.T, initial models.CanCounts) fixture {
	t.Helper()
	stockRepo := memory.NewStockRepository()
	require.NoError(t, stockRepo.Save(context.Background(), models.StockSnapshot{CanCounts: initial, Version: 1}))

	ledger := stock.NewLedger(stockRepo, stock.WriteUnguarded, nil, nil)
	reports := memory.NewDeliveryReportRepository()
	orders := memory.NewOrderRepository()
	svc := NewService(orders, delivery.NewRecorder(ledger, reports, nil, nil, nil), nil)
	svc.now = func() time.Time { return now }

	return fixture{svc: svc, orders: orders, reports: reports, ledger: ledger}
}

func TestService_CreateDefaults(t *testing.T) {
	f := newFixture(t, models.CanCounts{})

	order, err := f.svc.Create(context.Background(), models.OrderInput{DeliveryPlace: "Harbor"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.CanCounts{}, order.CanCounts)
	assert.Equal(t, now, order.DeliveryDate)
}

func TestService_CreateAndUpdateRequirePlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{})

	_, err := f.svc.Create(ctx, models.OrderInput{CanCounts: models.CanCounts{Cans25L: 2}})
	assert.ErrorIs(t, err, models.ErrValidation)

	order, err := f.svc.Create(ctx, models.OrderInput{DeliveryPlace: "Harbor"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, order.ID, models.OrderInput{DeliveryPlace: ""})
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harbor", stored.DeliveryPlace)
}

func TestService_UpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{})

	order, err := f.svc.Create(ctx, models.OrderInput{
		DeliveryPlace: "Harbor",
		CanCounts:     models.CanCounts{Cans25L: 3, Cans10L: 2, Cans1L: 1},
		DeliveryDate:  now.AddDate(0, 0, 3),
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, order.ID, models.OrderInput{DeliveryPlace: "School", CanCounts: models.CanCounts{Cans10L: 4}})
	require.NoError(t, err)
	assert.Equal(t, "School", updated.DeliveryPlace)
	assert.Equal(t, models.CanCounts{Cans10L: 4}, updated.CanCounts)
	assert.Equal(t, now, updated.DeliveryDate)

	_, err = f.svc.Update(ctx, "missing", models.OrderInput{DeliveryPlace: "School"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_ListSortedByDeliveryDateDesc(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{})

	for i, place := range []string{"first", "third", "second"} {
		offsets := []int{0, 2, 1}
		_, err := f.svc.Create(ctx, models.OrderInput{DeliveryPlace: place, DeliveryDate: now.AddDate(0, 0, offsets[i])})
		require.NoError(t, err)
	}

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "third", orders[0].DeliveryPlace)
	assert.Equal(t, "second", orders[1].DeliveryPlace)
	assert.Equal(t, "first", orders[2].DeliveryPlace)
}

func TestService_CompleteRecordsDeliveryAndDeletesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{Cans25L: 10, Cans10L: 10, Cans1L: 10})

	order, err := f.svc.Create(ctx, models.OrderInput{DeliveryPlace: "Main St", CanCounts: models.CanCounts{Cans25L: 4, Cans1L: 2}})
	require.NoError(t, err)

	result, err := f.svc.Complete(ctx, order.ID, "0700")
	require.NoError(t, err)
	assert.Equal(t, models.CanCounts{Cans25L: 6, Cans10L: 10, Cans1L: 8}, result.UpdatedStock.CanCounts)
	assert.Equal(t, "0700", result.Report.UserPhone)
	assert.Equal(t, 1, f.reports.Len())

	_, err = f.svc.Get(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_CompleteKeepsOrderWhenStockIsShort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{Cans25L: 1})

	order, err := f.svc.Create(ctx, models.OrderInput{DeliveryPlace: "Main St", CanCounts: models.CanCounts{Cans25L: 2}})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, order.ID, "0700")
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	_, err = f.svc.Get(ctx, order.ID)
	assert.NoError(t, err)
	assert.Zero(t, f.reports.Len())

	_, err = f.svc.Complete(ctx, "missing", "0700")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.CanCounts{})

	order, err := f.svc.Create(ctx, models.OrderInput{DeliveryPlace: "Harbor"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, order.ID), models.ErrNotFound)
}
