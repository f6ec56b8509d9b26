package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

type reportDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Cans25L       int                `bson:"cans25L"`
	Cans10L       int                `bson:"cans10L"`
	Cans1L        int                `bson:"cans1L"`
	DeliveryPlace string             `bson:"deliveryPlace"`
	UserPhone     string             `bson:"userPhone"`
	Timestamp     time.Time          `bson:"timestamp"`
}

// DeliveryReportRepository persists delivery reports.
type DeliveryReportRepository struct {
	collection *mongo.Collection
}

var _ repository.DeliveryReportRepository = (*DeliveryReportRepository)(nil)

// Insert stores a report and returns it with its generated id.
func (r *DeliveryReportRepository) Insert(ctx context.Context, report models.DeliveryReport) (models.DeliveryReport, error) {
	doc := reportDocument{
		Cans25L:       report.Cans25L,
		Cans10L:       report.Cans10L,
		Cans1L:        report.Cans1L,
		DeliveryPlace: report.DeliveryPlace,
		UserPhone:     report.UserPhone,
		Timestamp:     report.Timestamp,
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return models.DeliveryReport{}, fmt.Errorf("insert delivery report: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = id.Hex()
	}
	return report, nil
}

// List returns reports inside the window in insertion order.
func (r *DeliveryReportRepository) List(ctx context.Context, window models.DateRange) ([]models.DeliveryReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, rangeFilter("timestamp", window), opts)
}

// ListByPhone returns the reports submitted from phone, newest first.
func (r *DeliveryReportRepository) ListByPhone(ctx context.Context, phone string) ([]models.DeliveryReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	return r.find(ctx, bson.M{"userPhone": phone}, opts)
}

func (r *DeliveryReportRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.DeliveryReport, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find delivery reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode delivery reports: %w", err)
	}

	out := make([]models.DeliveryReport, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.DeliveryReport{
			CanCounts:     models.CanCounts{Cans25L: doc.Cans25L, Cans10L: doc.Cans10L, Cans1L: doc.Cans1L},
			ID:            doc.ID.Hex(),
			DeliveryPlace: doc.DeliveryPlace,
			UserPhone:     doc.UserPhone,
			Timestamp:     doc.Timestamp,
		})
	}
	return out, nil
}
