package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/watercan/internal/config"
	"github.com/mamadbah2/watercan/internal/repository"
	"github.com/mamadbah2/watercan/internal/repository/memory"
	"github.com/mamadbah2/watercan/internal/repository/mongodb"
	"github.com/mamadbah2/watercan/internal/repository/sheets"
	"github.com/mamadbah2/watercan/internal/scheduler"
	"github.com/mamadbah2/watercan/internal/server/handlers"
	"github.com/mamadbah2/watercan/internal/server/router"
	deliverysvc "github.com/mamadbah2/watercan/internal/service/delivery"
	ordersvc "github.com/mamadbah2/watercan/internal/service/orders"
	reportingsvc "github.com/mamadbah2/watercan/internal/service/reporting"
	stocksvc "github.com/mamadbah2/watercan/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/watercan/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/watercan/pkg/clients/whatsapp"
	"github.com/mamadbah2/watercan/pkg/logger"
	"github.com/mamadbah2/watercan/pkg/metrics"
)

type repositories struct {
	stock   repository.StockRepository
	reports repository.DeliveryReportRepository
	orders  repository.OrderRepository
	close   func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repos, err := openRepositories(cfg, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := repos.close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	writeMode, err := stocksvc.ParseWriteMode(cfg.Stock.WriteMode)
	if err != nil {
		baseLogger.Fatal("invalid stock write mode", zap.Error(err))
	}

	appMetrics := metrics.New()

	var mirror deliverysvc.Mirror
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		deliveryMirror := sheets.NewDeliveryMirror(sheetsRepo, cfg.Sheets.DeliveryRange)
		if _, err := deliveryMirror.EnsureHeader(context.Background()); err != nil {
			baseLogger.Warn("failed to prepare delivery sheet", zap.Error(err))
		}
		mirror = deliveryMirror
		baseLogger.Info("sheets delivery mirror enabled", zap.String("range", cfg.Sheets.DeliveryRange))
	}

	ledger := stocksvc.NewLedger(repos.stock, writeMode, appMetrics, baseLogger.Named("svc.stock"))
	recorder := deliverysvc.NewRecorder(ledger, repos.reports, mirror, appMetrics, baseLogger.Named("svc.delivery"))
	orderSvc := ordersvc.NewService(repos.orders, recorder, baseLogger.Named("svc.orders"))
	reportingSvc := reportingsvc.NewService(repos.stock, repos.reports, ledger, baseLogger.Named("svc.reporting"))

	baseLogger.Info("stock ledger ready", zap.String("write_mode", string(ledger.Mode())))

	engine := router.New(router.Handlers{
		Stock:   handlers.NewStockHandler(ledger, baseLogger.Named("handlers.stock")),
		Reports: handlers.NewReportHandler(recorder, reportingSvc, baseLogger.Named("handlers.reports")),
		Orders:  handlers.NewOrderHandler(orderSvc, baseLogger.Named("handlers.orders")),
	}, appMetrics, baseLogger.Named("router"))

	if cfg.Reporting.DigestEnabled {
		var notifier whatsappsvc.Notifier
		if cfg.WhatsApp.Enabled() {
			notifier = whatsappsvc.NewMetaWhatsAppService(whatsappclient.NewClient(cfg.WhatsApp), cfg.WhatsApp.ManagerID, baseLogger.Named("svc.whatsapp"))
		} else {
			baseLogger.Warn("whatsapp not configured, digests will only be logged")
			notifier = whatsappsvc.NewLogNotifier(baseLogger.Named("svc.digest"))
		}

		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openRepositories(cfg *config.Config, log *zap.Logger) (repositories, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return repositories{
			stock:   memory.NewStockRepository(),
			reports: memory.NewDeliveryReportRepository(),
			orders:  memory.NewOrderRepository(),
			close:   func(context.Context) error { return nil },
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	store, err := mongodb.NewStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		stock:   store.Stock(),
		reports: store.Reports(),
		orders:  store.Orders(),
		close:   store.Close,
	}, nil
}
