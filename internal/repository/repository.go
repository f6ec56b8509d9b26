// Package repository declares the storage contracts shared by the mongodb and
// memory drivers.
package repository

import (
	"context"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

// CurrentStockID is the fixed identifier of the single current snapshot.
const CurrentStockID = "current"

// StockRepository persists the current snapshot and its adjustment history.
type StockRepository interface {
	// Current returns the current snapshot, or nil when none was created yet.
	Current(ctx context.Context) (*models.StockSnapshot, error)
	// Create inserts the initial snapshot. It returns models.ErrStockConflict
	// when another writer created it first.
	Create(ctx context.Context, snapshot models.StockSnapshot) error
	// Save overwrites the snapshot unconditionally.
	Save(ctx context.Context, snapshot models.StockSnapshot) error
	// SaveIfVersion overwrites the snapshot only when the stored version still
	// equals expected, otherwise it returns models.ErrStockConflict.
	SaveIfVersion(ctx context.Context, snapshot models.StockSnapshot, expected int64) error
	AppendAdjustment(ctx context.Context, adjustment models.StockAdjustment) (models.StockAdjustment, error)
	// ListAdjustments returns history rows inside the range in insertion order.
	ListAdjustments(ctx context.Context, window models.DateRange) ([]models.StockAdjustment, error)
}

// DeliveryReportRepository stores immutable delivery reports.
type DeliveryReportRepository interface {
	Insert(ctx context.Context, report models.DeliveryReport) (models.DeliveryReport, error)
	// List returns reports inside the range in insertion order.
	List(ctx context.Context, window models.DateRange) ([]models.DeliveryReport, error)
	// ListByPhone returns the reports of one submitter, newest first.
	ListByPhone(ctx context.Context, phone string) ([]models.DeliveryReport, error)
}

// OrderRepository stores pending orders.
type OrderRepository interface {
	Insert(ctx context.Context, order models.Order) (models.Order, error)
	// List returns all orders sorted by delivery date, newest first.
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (models.Order, error)
	Replace(ctx context.Context, order models.Order) (models.Order, error)
	Delete(ctx context.Context, id string) error
}
