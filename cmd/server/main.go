package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/auth"
	"github.com/cx-tal-miterani/booking-service/internal/catalog"
	"github.com/cx-tal-miterani/booking-service/internal/config"
	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/directory"
	"github.com/cx-tal-miterani/booking-service/internal/events"
	"github.com/cx-tal-miterani/booking-service/internal/handlers"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/cx-tal-miterani/booking-service/internal/router"
	"github.com/cx-tal-miterani/booking-service/internal/service"
	"github.com/cx-tal-miterani/booking-service/internal/session"
	"github.com/cx-tal-miterani/booking-service/internal/websocket"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("Store ready", "backend", cfg.Store.Backend, "prefix", cfg.Store.KeyPrefix)

	if cfg.Store.Seed {
		if err := database.Seed(ctx, conn.Store, time.Now()); err != nil {
			logger.Error("Failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	// Booking events go to the owner's websocket connections and, when
	// configured, to Kafka.
	hub := websocket.NewHub()
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
		logger.Info("Publishing booking events to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	sess := session.New()
	sess.OnChange(func(u *models.PublicUser) {
		if u == nil {
			logger.Info("Session cleared")
			return
		}
		logger.Info("Session started", "userId", u.ID, "role", u.Role)
	})

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	bookingService := service.NewBookingService(
		catalog.New(conn.Store),
		ledger.New(conn.Store),
		directory.New(conn.Store),
		sess,
		tokens,
		publishers,
		service.Options{Latency: cfg.Booking.Latency, Logger: logger},
	)

	h := handlers.NewHandler(bookingService, hub)

	routerOpts := router.Options{KeyPrefix: cfg.Store.KeyPrefix, AccessLog: cfg.HTTP.AccessLog}
	if conn.Redis != nil {
		routerOpts.Idempotency = conn.Redis
	}
	r := router.SetupRouter(h, tokens, routerOpts)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
