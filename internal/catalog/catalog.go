package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/models"
)

var ErrFlightNotFound = errors.New("flight not found")

// Catalog serves the seeded flight list. Booking code only reads it.
type Catalog struct {
	store database.Store
}

func New(store database.Store) *Catalog {
	return &Catalog{store: store}
}

// List returns every flight in catalog order
func (c *Catalog) List(ctx context.Context) ([]models.Flight, error) {
	flights, err := database.LoadList[models.Flight](ctx, c.store, database.FlightsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load flights: %w", err)
	}
	return flights, nil
}

// Get returns a flight by id, or ErrFlightNotFound
func (c *Catalog) Get(ctx context.Context, id string) (*models.Flight, error) {
	flights, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range flights {
		if flights[i].ID == id {
			return &flights[i], nil
		}
	}
	return nil, ErrFlightNotFound
}

// Search lists flights whose origin and destination contain the filter text
// (case-insensitive) and whose departure falls on the filter date.
func (c *Catalog) Search(ctx context.Context, filter models.FlightFilter) ([]models.Flight, error) {
	flights, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Flight{}
	for _, f := range flights {
		if Matches(f, filter) {
			out = append(out, f)
		}
	}
	return out, nil
}

func Matches(f models.Flight, filter models.FlightFilter) bool {
	if filter.Origin != "" && !containsFold(f.Origin, filter.Origin) {
		return false
	}
	if filter.Destination != "" && !containsFold(f.Destination, filter.Destination) {
		return false
	}
	if filter.Date != "" && f.DepartureDate.Format(models.FlightDateLayout) != filter.Date {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
