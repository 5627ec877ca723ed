package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
)

// Ledger is the persisted list of every booking ever created.
// Bookings are appended and their status changed; they are never removed.
type Ledger struct {
	store database.Store
}

// New creates a ledger on top of a store
func New(store database.Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) load(ctx context.Context) ([]models.Booking, error) {
	bookings, err := database.LoadList[models.Booking](ctx, l.store, database.BookingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

// update is the only write path. The store makes the read-modify-write atomic
// across every process sharing it.
func (l *Ledger) update(ctx context.Context, fn func([]models.Booking) ([]models.Booking, error)) error {
	return database.UpdateList(ctx, l.store, database.BookingsKey, fn)
}

// List returns every booking in insertion order
func (l *Ledger) List(ctx context.Context) ([]models.Booking, error) {
	return l.load(ctx)
}

// ListByUser returns the bookings of a user in insertion order
func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Booking{}
	for _, b := range bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// FindByID returns a booking, or ErrBookingNotFound
func (l *Ledger) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	bookings, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return &bookings[i], nil
		}
	}
	return nil, ErrBookingNotFound
}

// Append adds a booking to the end of the ledger
func (l *Ledger) Append(ctx context.Context, b models.Booking) error {
	return l.update(ctx, func(bookings []models.Booking) ([]models.Booking, error) {
		return append(bookings, b), nil
	})
}

// UpdateStatus sets the status of a booking in place.
// A missing id returns ErrBookingNotFound and nothing is written.
func (l *Ledger) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	_, err := l.Transition(ctx, id, func(b models.Booking) (models.BookingStatus, error) {
		return status, nil
	})
	return err
}

// Transition reads a booking, lets decide choose its next status and writes it
// in one atomic store update. An error from decide aborts without writing.
func (l *Ledger) Transition(ctx context.Context, id string, decide func(models.Booking) (models.BookingStatus, error)) (*models.Booking, error) {
	var updated models.Booking
	err := l.update(ctx, func(bookings []models.Booking) ([]models.Booking, error) {
		for i := range bookings {
			if bookings[i].ID != id {
				continue
			}
			next, err := decide(bookings[i])
			if err != nil {
				return nil, err
			}
			bookings[i].Status = next
			updated = bookings[i]
			return bookings, nil
		}
		return nil, ErrBookingNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// CompleteWhere moves every booking matching pred to completed in a single
// atomic write and returns the ids it changed.
func (l *Ledger) CompleteWhere(ctx context.Context, pred func(models.Booking) bool) ([]string, error) {
	var changed []string
	err := l.update(ctx, func(bookings []models.Booking) ([]models.Booking, error) {
		changed = nil
		for i := range bookings {
			if pred(bookings[i]) {
				bookings[i].Status = models.BookingStatusCompleted
				changed = append(changed, bookings[i].ID)
			}
		}
		if len(changed) == 0 {
			return nil, nil
		}
		return bookings, nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}
