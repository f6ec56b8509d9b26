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

type orderDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	DeliveryDate  time.Time          `bson:"deliveryDate"`
	DeliveryPlace string             `bson:"deliveryPlace"`
	Cans25L       int                `bson:"cans25L"`
	Cans10L       int                `bson:"cans10L"`
	Cans1L        int                `bson:"cans1L"`
}

// OrderRepository persists pending orders.
type OrderRepository struct {
	collection *mongo.Collection
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// Insert stores a new order.
func (r *OrderRepository) Insert(ctx context.Context, order models.Order) (models.Order, error) {
	doc := newOrderDocument(order)
	doc.ID = primitive.NilObjectID
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id.Hex()
	}
	return order, nil
}

// List returns all orders sorted by delivery date, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "deliveryDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

// Get loads one order by its hex id.
func (r *OrderRepository) Get(ctx context.Context, id string) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, models.ErrNotFound
	}

	var doc orderDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, models.ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return doc.toModel(), nil
}

// Replace overwrites the mutable fields of an existing order.
func (r *OrderRepository) Replace(ctx context.Context, order models.Order) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return models.Order{}, models.ErrNotFound
	}

	doc := newOrderDocument(order)
	doc.ID = oid
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return models.Order{}, fmt.Errorf("replace order %s: %w", order.ID, err)
	}
	if res.MatchedCount == 0 {
		return models.Order{}, models.ErrNotFound
	}
	return order, nil
}

// Delete removes an order by its hex id.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func newOrderDocument(order models.Order) orderDocument {
	return orderDocument{
		DeliveryDate:  order.DeliveryDate,
		DeliveryPlace: order.DeliveryPlace,
		Cans25L:       order.Cans25L,
		Cans10L:       order.Cans10L,
		Cans1L:        order.Cans1L,
	}
}

func (d orderDocument) toModel() models.Order {
	return models.Order{
		CanCounts:     models.CanCounts{Cans25L: d.Cans25L, Cans10L: d.Cans10L, Cans1L: d.Cans1L},
		ID:            d.ID.Hex(),
		DeliveryPlace: d.DeliveryPlace,
		DeliveryDate:  d.DeliveryDate,
	}
}
