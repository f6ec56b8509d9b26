package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/repository"
	"github.com/mamadbah2/watercan/internal/service/delivery"
)

// DeliveryRecorder turns a completed order into a delivery report.
type DeliveryRecorder interface {
	Record(ctx context.Context, in models.DeliveryInput) (delivery.Result, error)
}

// Service is the pending-order queue.
type Service struct {
	repo     repository.OrderRepository
	recorder DeliveryRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the order queue.
func NewService(repo repository.OrderRepository, recorder DeliveryRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Create queues a new order.
func (s *Service) Create(ctx context.Context, in models.OrderInput) (models.Order, error) {
	order, err := s.build(in)
	if err != nil {
		return models.Order{}, err
	}

	saved, err := s.repo.Insert(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.logger.Info("order created", zap.String("order_id", saved.ID), zap.String("place", saved.DeliveryPlace))
	return saved, nil
}

// List returns the queue, latest delivery date first.
func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order or models.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (models.Order, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces every mutable field of an order.
func (s *Service) Update(ctx context.Context, id string, in models.OrderInput) (models.Order, error) {
	order, err := s.build(in)
	if err != nil {
		return models.Order{}, err
	}
	order.ID = id

	updated, err := s.repo.Replace(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	s.logger.Info("order updated", zap.String("order_id", id))
	return updated, nil
}

// Delete removes an order from the queue.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("order deleted", zap.String("order_id", id))
	return nil
}

// Complete records the order as a delivery by userPhone and then removes it
// from the queue. The order stays queued when recording fails.
func (s *Service) Complete(ctx context.Context, id, userPhone string) (delivery.Result, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return delivery.Result{}, err
	}

	result, err := s.recorder.Record(ctx, models.DeliveryInput{
		CanCounts:     order.CanCounts,
		DeliveryPlace: order.DeliveryPlace,
		UserPhone:     userPhone,
	})
	if err != nil {
		return delivery.Result{}, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delivery recorded but order was not removed",
			zap.String("order_id", id),
			zap.String("report_id", result.Report.ID),
			zap.Error(err))
		return delivery.Result{}, fmt.Errorf("remove completed order %s: %w", id, err)
	}

	s.logger.Info("order completed", zap.String("order_id", id), zap.String("report_id", result.Report.ID))
	return result, nil
}

func (s *Service) build(in models.OrderInput) (models.Order, error) {
	place := strings.TrimSpace(in.DeliveryPlace)
	if place == "" {
		return models.Order{}, models.NewValidationError("deliveryPlace", "is required")
	}
	if in.Negative() {
		return models.Order{}, models.NewValidationError("quantities", "must not be negative")
	}

	date := in.DeliveryDate
	if date.IsZero() {
		date = s.now()
	}

	return models.Order{
		CanCounts:     in.CanCounts,
		DeliveryPlace: place,
		DeliveryDate:  date.UTC(),
	}, nil
}
