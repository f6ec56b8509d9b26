package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
)

const (
	stockCollection       = "stock"
	adjustmentsCollection = "stock_adjustments"
	reportsCollection     = "delivery_reports"
	ordersCollection      = "orders"
)

// Store owns the MongoDB client shared by the collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			logger.Warn("failed to disconnect after ping failure", zap.Error(disconnectErr))
		}
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := NewStoreFromClient(client, dbName, logger)
	store.ensureIndexes(ctx)
	return store, nil
}

// NewStoreFromClient wraps an already connected client.
func NewStoreFromClient(client *mongo.Client, dbName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
}

// Stock returns the ledger repository.
func (s *Store) Stock() *StockRepository {
	return &StockRepository{
		current: s.db.Collection(stockCollection),
		history: s.db.Collection(adjustmentsCollection),
	}
}

// Reports returns the delivery report repository.
func (s *Store) Reports() *DeliveryReportRepository {
	return &DeliveryReportRepository{collection: s.db.Collection(reportsCollection)}
}

// Orders returns the order repository.
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{collection: s.db.Collection(ordersCollection)}
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) {
	indexes := map[string][]mongo.IndexModel{
		adjustmentsCollection: {
			{Keys: bson.D{{Key: "lastUpdated", Value: 1}}},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "userPhone", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "deliveryDate", Value: -1}}},
		},
	}
	for name, specs := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			s.logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}

func rangeFilter(field string, window models.DateRange) bson.M {
	if window.IsZero() {
		return bson.M{}
	}
	cond := bson.M{}
	if window.Start != nil {
		cond["$gte"] = *window.Start
	}
	if window.End != nil {
		cond["$lte"] = *window.End
	}
	return bson.M{field: cond}
}
