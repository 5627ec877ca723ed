package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/booking"
	"github.com/cx-tal-miterani/booking-service/internal/events"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/metrics"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"go.temporal.io/sdk/activity"
)

// Activity names registered with the worker
const (
	CompleteDepartedBookingsName = "CompleteDepartedBookings"
)

// Activities holds the dependencies of the sweep activities
type Activities struct {
	ledger    *ledger.Ledger
	publisher events.Publisher
}

func NewActivities(l *ledger.Ledger, publisher events.Publisher) *Activities {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Activities{ledger: l, publisher: publisher}
}

// CompleteDepartedBookings moves every confirmed booking whose flight departed
// at or before now to completed.
func (a *Activities) CompleteDepartedBookings(ctx context.Context, now time.Time) (*models.SweepResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Sweeping departed bookings", "now", now)

	ids, err := a.ledger.CompleteWhere(ctx, func(b models.Booking) bool {
		return b.Status == models.BookingStatusConfirmed && booking.HasDeparted(b, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete bookings: %w", err)
	}

	result := &models.SweepResult{
		Completed:  len(ids),
		BookingIDs: ids,
		SweptAt:    now,
	}
	if len(ids) == 0 {
		return result, nil
	}

	metrics.BookingsCompleted.Add(float64(len(ids)))
	logger.Info("Bookings completed", "count", len(ids))

	a.publishCompleted(ctx, ids, now)
	return result, nil
}

func (a *Activities) publishCompleted(ctx context.Context, ids []string, now time.Time) {
	logger := activity.GetLogger(ctx)

	all, err := a.ledger.List(ctx)
	if err != nil {
		logger.Warn("Failed to reload bookings for events", "error", err)
		return
	}

	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	for _, b := range all {
		if !completed[b.ID] {
			continue
		}
		if err := a.publisher.Publish(ctx, events.FromBooking(events.BookingCompleted, b, now)); err != nil {
			metrics.EventPublishErrors.Inc()
			logger.Warn("Failed to publish completion event", "bookingId", b.ID, "error", err)
		}
	}
}
