package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cx-tal-miterani/booking-service/internal/activities"
	"github.com/cx-tal-miterani/booking-service/internal/config"
	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/events"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/cx-tal-miterani/booking-service/internal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.Store.Backend == config.BackendMemory {
		logger.Warn("Worker is using the memory store; it will not see the API server's bookings")
	}

	conn, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	logger.Info("Connecting to Temporal", "host", cfg.Temporal.Host)
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to connect to Temporal", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.CompletionSweepWorkflow)

	acts := activities.NewActivities(ledger.New(conn.Store), publisher)
	w.RegisterActivityWithOptions(acts.CompleteDepartedBookings, activity.RegisterOptions{Name: activities.CompleteDepartedBookingsName})

	// Starting an already running cron workflow returns the existing run
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           workflows.SweepWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Temporal.SweepCron,
	}, workflows.CompletionSweepWorkflow, models.SweepWorkflowInput{})
	if err != nil {
		logger.Error("Failed to schedule completion sweep", "error", err)
		os.Exit(1)
	}
	logger.Info("Completion sweep scheduled", "workflowId", run.GetID(), "runId", run.GetRunID(), "cron", cfg.Temporal.SweepCron)

	logger.Info("Starting Temporal worker", "taskQueue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}
}
