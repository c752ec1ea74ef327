package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaikyD/einlagen-orders-service/internal/application"
	"github.com/RaikyD/einlagen-orders-service/internal/cache"
	"github.com/RaikyD/einlagen-orders-service/internal/config"
	"github.com/RaikyD/einlagen-orders-service/internal/kafka"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
	"github.com/RaikyD/einlagen-orders-service/internal/migrate"
	"github.com/RaikyD/einlagen-orders-service/internal/payload"
	"github.com/RaikyD/einlagen-orders-service/internal/presentation"
	"github.com/RaikyD/einlagen-orders-service/internal/repository"
)

const (
	sessionMaxAge = 2 * time.Hour
	cacheWarmSize = 1000
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DB_STRING)
	if err != nil {
		logger.Error("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
	defer prod.Close()

	opts := []application.Option{
		application.WithPublisher(prod),
		application.WithLeadDays(cfg.LeadDays()),
		application.WithTimeMode(payload.ParseTimeMode(cfg.COMPLETION_TIME_MODE)),
	}
	if cfg.REDIS_ADDR != "" {
		idem := cache.NewRedisCache(cfg.REDIS_ADDR, "einlagen-orders")
		defer idem.Close()
		opts = append(opts, application.WithIdempotencyStore(idem))
	} else {
		logger.Info("REDIS_ADDR not set; idempotency keys are checked against the database only")
	}

	repo := repository.NewOrderRepository(pool)
	svc := application.NewOrdersService(repo, opts...)

	if err := svc.RestoreCache(ctx, cacheWarmSize); err != nil {
		logger.Warn("restore cache failed", "err", err)
	}

	// prefill updates for open forms
	_, _ = kafka.StartConsumer(ctx, svc, kafka.ConsumerConfig{
		Brokers: cfg.KAFKA_BROKERS,
		Topic:   cfg.KAFKA_PREFILL_TOPIC,
		GroupID: cfg.KAFKA_GROUP_ID,
	})

	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				svc.PruneSessions(sessionMaxAge)
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	presentation.NewOrdersHandler(svc).Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP_PORT,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting http", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server crashed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", "err", err)
	}
}
