package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/config"
	"github.com/mamadbah2/watercan/internal/domain/models"
	"github.com/mamadbah2/watercan/internal/service/reporting"
	"github.com/mamadbah2/watercan/internal/service/whatsapp"
)

// DigestBuilder renders the periodic delivery digest.
type DigestBuilder interface {
	Digest(ctx context.Context, window models.DateRange) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	digest   DigestBuilder
	notifier whatsapp.Notifier
	cfg      config.ReportingConfig
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, digest DigestBuilder, notifier whatsapp.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		digest:   digest,
		notifier: notifier,
		cfg:      cfg,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDigest); err != nil {
		return fmt.Errorf("schedule delivery digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		s.logger.Error("delivery digest failed", zap.Error(err))
	}
}

// RunDigest builds the digest for the previous DigestDays and sends it.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	window := reporting.PreviousDays(s.now(), s.cfg.DigestDays, s.location)
	s.logger.Info("generating delivery digest",
		zap.Time("start", *window.Start),
		zap.Time("end", *window.End))

	text, err := s.digest.Digest(ctx, window)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	if err := s.notifier.NotifyManager(ctx, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	s.logger.Info("delivery digest sent")
	return nil
}
