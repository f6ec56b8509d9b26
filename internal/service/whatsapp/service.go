package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	client "github.com/mamadbah2/watercan/pkg/clients/whatsapp"
)

// Notifier pushes text messages to the operation manager.
type Notifier interface {
	NotifyManager(ctx context.Context, message string) error
}

// MetaWhatsAppService is the production Notifier backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	client    client.Client
	managerID string
	logger    *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(c client.Client, managerID string, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		client:    c,
		managerID: managerID,
		logger:    logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// NotifyManager sends message to the configured manager number.
func (s *MetaWhatsAppService) NotifyManager(ctx context.Context, message string) error {
	if message == "" {
		return errors.New("empty message body")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, s.managerID, message)
	if err != nil {
		return fmt.Errorf("notify manager: %w", err)
	}

	s.logger.Info("manager notified", zap.String("message_id", id))
	return nil
}

// LogNotifier writes messages to the log when WhatsApp is not configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a Notifier that only logs.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// NotifyManager logs message at info level.
func (n *LogNotifier) NotifyManager(_ context.Context, message string) error {
	n.logger.Info("manager notification", zap.String("message", message))
	return nil
}
