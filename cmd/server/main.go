package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/cache"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/invoicing"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/notification"
	"github.com/billing/backend/internal/infrastructure/payment"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/scheduler"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories and gateway adapters
	planRepo := persistence.NewGormPlanRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	cardStorage := persistence.NewGormCardStorage(db.DB)
	orderCounter := persistence.NewGormOrderCounter(db.DB)

	gateway := payment.NewMercadoPagoAdapter(cfg.MercadoPago)
	notifier := notification.NewDiscordNotifier(cfg.Discord, log)
	fiscalIssuer := invoicing.NewSpedyIssuer(cfg.Spedy)

	// Application services
	createService := appbilling.NewCreateSubscriptionService(
		planRepo, subscriptionRepo, invoiceRepo, gateway, cardStorage, notifier, fiscalIssuer, log,
	)
	changePlanService := appbilling.NewChangeSubscriptionPlanService(
		subscriptionRepo, planRepo, invoiceRepo, gateway, cardStorage,
		billing.NewPlanChangeEvaluator(), billing.NewProrationCalculator(), notifier, log,
	)
	renewService := appbilling.NewRenewSubscriptionService(
		subscriptionRepo, planRepo, invoiceRepo, gateway, orderCounter, notifier, fiscalIssuer, log,
	)
	changeCardService := appbilling.NewChangeCreditCardService(subscriptionRepo, gateway, cardStorage, log)
	cancelService := appbilling.NewCancelSubscriptionService(subscriptionRepo, notifier, log)
	queryService := appbilling.NewQueryService(planRepo, invoiceRepo)

	// Renewal scheduler with a per-subscription lock. Redis serializes
	// renewals across instances; a single instance can fall back to the
	// in-memory lock when Redis is unavailable in development.
	if cfg.Scheduler.Enabled {
		var lock scheduler.RenewalLock
		redisLock, err := cache.NewRedisRenewalLock(cfg.Redis, cfg.Scheduler.LockTTL)
		if err != nil {
			if cfg.App.Env == "production" {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			log.Warn("Redis unavailable, using in-memory renewal lock", zap.Error(err))
			lock = cache.NewInMemoryRenewalLock(cfg.Scheduler.LockTTL)
		} else {
			defer func() {
				if err := redisLock.Close(); err != nil {
					log.Error("Error closing Redis client", zap.Error(err))
				}
			}()
			lock = redisLock
		}

		renewalScheduler := scheduler.NewRenewalScheduler(subscriptionRepo, renewService, lock, cfg.Scheduler, log)
		if err := renewalScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start renewal scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := renewalScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping renewal scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP surface
	engine := router.NewEngine(cfg, log)

	healthHandler := handler.NewHealthHandler(db)
	engine.GET("/health", healthHandler.Health)

	subscriptionHandler := handler.NewSubscriptionHandler(createService, changePlanService, changeCardService, cancelService)
	planHandler := handler.NewPlanHandler(queryService)
	invoiceHandler := handler.NewInvoiceHandler(queryService)

	router.New(engine).
		Register(subscriptionHandler).
		Register(planHandler).
		Register(invoiceHandler).
		Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
