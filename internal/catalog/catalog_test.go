package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	store := database.NewMemoryStore()
	flights := []models.Flight{
		{ID: "1", FlightNumber: "EK201", Origin: "Santiago (SCL)", Destination: "Dubai (DXB)", DepartureDate: time.Date(2030, 12, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "2", FlightNumber: "EK202", Origin: "Dubai (DXB)", Destination: "Santiago (SCL)", DepartureDate: time.Date(2030, 12, 22, 0, 0, 0, 0, time.UTC)},
		{ID: "3", FlightNumber: "EK305", Origin: "Santiago (SCL)", Destination: "London (LHR)", DepartureDate: time.Date(2030, 11, 20, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, store.Save(context.Background(), database.FlightsKey, flights))
	return New(store)
}

func TestGet(t *testing.T) {
	c := setupCatalog(t)

	f, err := c.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "EK202", f.FlightNumber)

	_, err = c.Get(context.Background(), "99")
	assert.ErrorIs(t, err, ErrFlightNotFound)
}

func TestSearch(t *testing.T) {
	c := setupCatalog(t)

	tests := []struct {
		name     string
		filter   models.FlightFilter
		expected []string
	}{
		{name: "no filter", filter: models.FlightFilter{}, expected: []string{"1", "2", "3"}},
		{name: "origin case insensitive", filter: models.FlightFilter{Origin: "santiago"}, expected: []string{"1", "3"}},
		{name: "destination code", filter: models.FlightFilter{Destination: "LHR"}, expected: []string{"3"}},
		{name: "date", filter: models.FlightFilter{Date: "2030-12-22"}, expected: []string{"2"}},
		{name: "no match", filter: models.FlightFilter{Origin: "Tokyo"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flights, err := c.Search(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := []string{}
			for _, f := range flights {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}
