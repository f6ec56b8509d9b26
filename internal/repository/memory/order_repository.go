package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
)

// OrderRepository keeps pending orders in process memory.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

// NewOrderRepository creates an empty in-memory order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]models.Order)}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// Insert stores a new order under a fresh identifier.
func (r *OrderRepository) Insert(_ context.Context, order models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = uuid.NewString()
	r.orders[order.ID] = order
	return order, nil
}

// List returns every order, latest delivery date first.
func (r *OrderRepository) List(_ context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeliveryDate.Equal(out[j].DeliveryDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].DeliveryDate.After(out[j].DeliveryDate)
	})
	return out, nil
}

// Get looks up an order by id.
func (r *OrderRepository) Get(_ context.Context, id string) (models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return models.Order{}, models.ErrNotFound
	}
	return order, nil
}

// Replace overwrites an existing order.
func (r *OrderRepository) Replace(_ context.Context, order models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return models.Order{}, models.ErrNotFound
	}
	r.orders[order.ID] = order
	return order, nil
}

// Delete removes an order.
func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}
