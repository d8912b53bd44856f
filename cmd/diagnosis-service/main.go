package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fe2Far/fiap-challenge4/pkg/artifacts"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/config"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/database"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/kafka"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/Fe2Far/fiap-challenge4/pkg/gateway/middleware"
	"github.com/Fe2Far/fiap-challenge4/pkg/gateway/web"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/metrics"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/tracking"
	"github.com/Fe2Far/fiap-challenge4/pkg/serving"
	"github.com/Fe2Far/fiap-challenge4/pkg/session"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).Warn("Failed to read .env file")
	}
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := tracking.Init(cfg.SentryDSN, cfg.Environment, version); err != nil {
		logger.Log.WithError(err).Warn("Sentry init failed, continuing without error tracking")
	}
	defer tracking.Flush()
	metrics.Init()

	loader := artifacts.Init(cfg)
	if err := loader.Warm(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to load artifacts")
	}
	defer loader.Close()

	var invokerOpts []serving.Option
	var history web.History
	if cfg.AuditEnabled {
		db, err := database.GetPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.ClosePostgres()

		repo := serving.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate diagnosis audit table")
		}
		invokerOpts = append(invokerOpts, serving.WithRecorder(repo))
		history = repo
	}
	if cfg.EventsEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		defer producer.Close()
		invokerOpts = append(invokerOpts, serving.WithPublisher(producer))
	}

	var store session.Store
	switch cfg.SessionBackend {
	case "redis":
		store = session.NewRedisStore(database.GetRedis(cfg), cfg.SessionTTL)
		defer database.CloseRedis()
	default:
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	handler, err := web.NewHandler(loader, web.Options{
		Store:           store,
		History:         history,
		InvokerOptions:  invokerOpts,
		DefaultLanguage: cfg.DefaultLanguage,
		SessionTTL:      cfg.SessionTTL,
		CookieSecure:    cfg.CookieSecure,
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to build web handler")
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	handler.Register(router)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":     cfg.ServerHost,
			"port":     cfg.ServerPort,
			"sessions": cfg.SessionBackend,
			"audit":    cfg.AuditEnabled,
			"events":   cfg.EventsEnabled,
		}).Info("Diagnosis Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Diagnosis Service...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Diagnosis Service stopped")
}
