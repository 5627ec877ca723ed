package workflows

import (
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/activities"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// SweepWorkflowID is the fixed id of the cron sweep, so only one runs
	SweepWorkflowID = "booking-completion-sweep"
	// SweepTimeout bounds a single sweep activity
	SweepTimeout = 2 * time.Minute
)

// CompletionSweepWorkflow marks confirmed bookings of departed flights as
// completed. It is started on a cron schedule by the worker.
func CompletionSweepWorkflow(ctx workflow.Context, input models.SweepWorkflowInput) (*models.SweepResult, error) {
	logger := workflow.GetLogger(ctx)

	var last models.SweepResult
	if workflow.HasLastCompletionResult(ctx) {
		if err := workflow.GetLastCompletionResult(ctx, &last); err != nil {
			logger.Warn("Failed to read previous sweep result", "error", err)
		}
	}

	current := last
	err := workflow.SetQueryHandler(ctx, models.QueryLastSweep, func() (models.SweepResult, error) {
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = workflow.Now(ctx)
	}
	logger.Info("Completion sweep started", "now", now)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: SweepTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	var result models.SweepResult
	if err := workflow.ExecuteActivity(ctx, activities.CompleteDepartedBookingsName, now).Get(ctx, &result); err != nil {
		logger.Error("Completion sweep failed", "error", err)
		return nil, err
	}

	current = result
	logger.Info("Completion sweep finished", "completed", result.Completed)
	return &result, nil
}
