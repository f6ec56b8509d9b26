package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

type stockDocument struct {
	ID          string    `bson:"_id"`
	Cans25L     int       `bson:"cans25L"`
	Cans10L     int       `bson:"cans10L"`
	Cans1L      int       `bson:"cans1L"`
	LastUpdated time.Time `bson:"lastUpdated"`
	Version     int64     `bson:"version"`
}

type adjustmentDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Cans25L     int                `bson:"cans25L"`
	Cans10L     int                `bson:"cans10L"`
	Cans1L      int                `bson:"cans1L"`
	LastUpdated time.Time          `bson:"lastUpdated"`
}

// StockRepository stores the current snapshot as a single document and the
// adjustment history in its own collection.
type StockRepository struct {
	current *mongo.Collection
	history *mongo.Collection
}

var _ repository.StockRepository = (*StockRepository)(nil)

// Current loads the snapshot document.
func (r *StockRepository) Current(ctx context.Context) (*models.StockSnapshot, error) {
	var doc stockDocument
	err := r.current.FindOne(ctx, bson.M{"_id": repository.CurrentStockID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find current stock: %w", err)
	}
	snapshot := doc.toModel()
	return &snapshot, nil
}

// Create inserts the snapshot document.
func (r *StockRepository) Create(ctx context.Context, snapshot models.StockSnapshot) error {
	_, err := r.current.InsertOne(ctx, newStockDocument(snapshot))
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrStockConflict
	}
	if err != nil {
		return fmt.Errorf("insert current stock: %w", err)
	}
	return nil
}

// Save replaces the snapshot document by id.
func (r *StockRepository) Save(ctx context.Context, snapshot models.StockSnapshot) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.current.ReplaceOne(ctx, bson.M{"_id": repository.CurrentStockID}, newStockDocument(snapshot), opts)
	if err != nil {
		return fmt.Errorf("replace current stock: %w", err)
	}
	return nil
}

// SaveIfVersion replaces the snapshot document only while its version equals expected.
func (r *StockRepository) SaveIfVersion(ctx context.Context, snapshot models.StockSnapshot, expected int64) error {
	filter := bson.M{"_id": repository.CurrentStockID, "version": expected}
	res, err := r.current.ReplaceOne(ctx, filter, newStockDocument(snapshot))
	if err != nil {
		return fmt.Errorf("conditional replace current stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrStockConflict
	}
	return nil
}

// AppendAdjustment inserts a history row.
func (r *StockRepository) AppendAdjustment(ctx context.Context, adjustment models.StockAdjustment) (models.StockAdjustment, error) {
	doc := adjustmentDocument{
		Cans25L:     adjustment.Cans25L,
		Cans10L:     adjustment.Cans10L,
		Cans1L:      adjustment.Cans1L,
		LastUpdated: adjustment.LastUpdated,
	}
	res, err := r.history.InsertOne(ctx, doc)
	if err != nil {
		return models.StockAdjustment{}, fmt.Errorf("insert stock adjustment: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		adjustment.ID = id.Hex()
	}
	return adjustment, nil
}

// ListAdjustments returns history rows inside the window in insertion order.
func (r *StockRepository) ListAdjustments(ctx context.Context, window models.DateRange) ([]models.StockAdjustment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.history.Find(ctx, rangeFilter("lastUpdated", window), opts)
	if err != nil {
		return nil, fmt.Errorf("find stock adjustments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []adjustmentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock adjustments: %w", err)
	}

	out := make([]models.StockAdjustment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.StockAdjustment{
			CanCounts:   models.CanCounts{Cans25L: doc.Cans25L, Cans10L: doc.Cans10L, Cans1L: doc.Cans1L},
			ID:          doc.ID.Hex(),
			LastUpdated: doc.LastUpdated,
		})
	}
	return out, nil
}

func newStockDocument(snapshot models.StockSnapshot) stockDocument {
	return stockDocument{
		ID:          repository.CurrentStockID,
		Cans25L:     snapshot.Cans25L,
		Cans10L:     snapshot.Cans10L,
		Cans1L:      snapshot.Cans1L,
		LastUpdated: snapshot.LastUpdated,
		Version:     snapshot.Version,
	}
}

func (d stockDocument) toModel() models.StockSnapshot {
	return models.StockSnapshot{
		CanCounts:   models.CanCounts{Cans25L: d.Cans25L, Cans10L: d.Cans10L, Cans1L: d.Cans1L},
		ID:          d.ID,
		LastUpdated: d.LastUpdated,
		Version:     d.Version,
	}
}
