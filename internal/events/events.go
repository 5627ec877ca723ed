package events

import (
	"context"
	"errors"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/models"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingCancelled Type = "booking.cancelled"
	BookingCompleted Type = "booking.completed"
)

// Event describes a booking lifecycle change
type Event struct {
	Type             Type                 `json:"type"`
	BookingID        string               `json:"bookingId"`
	UserID           string               `json:"userId"`
	Status           models.BookingStatus `json:"status"`
	ConfirmationCode string               `json:"confirmationCode,omitempty"`
	Timestamp        int64                `json:"timestamp"`
}

// FromBooking builds an event for b at time at
func FromBooking(t Type, b models.Booking, at time.Time) Event {
	return Event{
		Type:             t,
		BookingID:        b.ID,
		UserID:           b.UserID,
		Status:           b.Status,
		ConfirmationCode: b.ConfirmationCode,
		Timestamp:        at.UnixMilli(),
	}
}

// Publisher delivers booking events
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to several publishers
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
