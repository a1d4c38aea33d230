package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pronto-sync/internal/core/cache"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/server"
	"pronto-sync/internal/core/worktime"
	approvaladapter "pronto-sync/internal/features/approval/adapters"
	approvaldomain "pronto-sync/internal/features/approval/domain"
	approvalhandler "pronto-sync/internal/features/approval/handler"
	approvalservice "pronto-sync/internal/features/approval/service"
	notifyadapter "pronto-sync/internal/features/notifications/adapters"
	notifyservice "pronto-sync/internal/features/notifications/service"
	orderadapter "pronto-sync/internal/features/orders/adapters"
	prontoadapter "pronto-sync/internal/features/pronto/adapters"
	pronto "pronto-sync/internal/features/pronto/domain"
	schedulerhandler "pronto-sync/internal/features/scheduler/handler"
	schedulerservice "pronto-sync/internal/features/scheduler/service"
	shipmentservice "pronto-sync/internal/features/shipment/service"
	synchandler "pronto-sync/internal/features/sync/handler"
	syncservice "pronto-sync/internal/features/sync/service"

	"go.uber.org/zap"
)

// @title Pronto Sync API
// @version 1.0
// @description Synchronises WooCommerce orders with the Pronto ERP: order webhooks, dealer approval links, administrator sync actions and the periodic tick.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.basic AdminBasicAuth
// @securityDefinitions.apikey CronToken
// @in header
// @name X-Cron-Token
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(logger.Options{
		Environment:       cfg.Environment,
		Level:             cfg.LogLevel,
		ProntoEnvironment: cfg.Pronto.Environment,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("pronto_environment", cfg.Pronto.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Scheduler.Location()
	if err != nil {
		l.Fatal("Invalid scheduler configuration", zap.Error(err))
	}

	// Storage
	redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		l.Fatal("Failed to configure Redis", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	store := orderadapter.NewRedisOrderStore(redisCache.Client())
	locker := orderadapter.NewCacheOrderLocker(redisCache, orderadapter.DefaultLockLease, orderadapter.DefaultLockWait)

	// Storefront
	wcAdapter := orderadapter.NewWooCommerceAdapter(cfg.WooCommerce)
	if err := wcAdapter.HealthCheck(ctx); err != nil {
		l.Fatal("WooCommerce Health Check Failed", zap.Error(err))
	}
	l.Info("WooCommerce connection verified")

	// Pronto
	formatter, err := pronto.NewFormatter(cfg.Pronto.Debtor, cfg.Pronto.TaxDivisor)
	if err != nil {
		l.Fatal("Invalid Pronto formatter configuration", zap.Error(err))
	}
	prontoClient := prontoadapter.NewHTTPClient(cfg.Pronto)
	defaultEnv := pronto.Environment(cfg.Pronto.Environment)

	// Notifications
	dispatcher := notifyservice.NewDispatcher(
		notifyadapter.NewSMTPNotifier(cfg.Mail),
		notifyadapter.NewRedisAlertOutbox(redisCache.Client()),
		cfg.Mail.OpsEmail,
	)

	// Sync pipeline
	orchestrator := syncservice.NewOrchestrator(store, locker, wcAdapter, prontoClient, formatter, dispatcher, defaultEnv)

	gate := approvalservice.NewGate(
		cfg.Approval,
		store,
		locker,
		wcAdapter,
		dispatcher,
		approvaldomain.NewTokenSigner(cfg.Approval.TokenSecret, nil),
		approvaladapter.NewCacheTokenLedger(redisCache),
		orchestrator,
	)
	pipeline := syncservice.NewPipeline(store, wcAdapter, gate, orchestrator)

	tracker := shipmentservice.NewTracker(store, wcAdapter, prontoClient, dispatcher,
		worktime.BusinessWindow(location), defaultEnv)

	// Scheduler
	scheduler := schedulerservice.NewScheduler(store, orchestrator, tracker, gate, dispatcher, cfg.Scheduler.MinInterval, location)
	runner := schedulerservice.NewRunner(scheduler, cfg.Scheduler.TickInterval)

	srv := server.New(cfg)

	// Register Routes
	synchandler.NewSyncHandler(pipeline, orchestrator).RegisterRoutes(srv.App, srv.Admin("/admin"))
	approvalhandler.NewDealerHandler(gate).RegisterRoutes(srv.App)
	schedulerhandler.NewCronHandler(runner, cfg.Scheduler.CronToken).RegisterRoutes(srv.App)

	runner.Start(ctx)

	go func() {
		<-ctx.Done()
		l.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := runner.Stop(shutdownCtx); err != nil {
			l.Error("Scheduler did not stop cleanly", zap.Error(err))
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Server did not stop cleanly", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
