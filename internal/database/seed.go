package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/booking"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Seed populates each empty collection with demo data. Collections that
// already hold documents are left untouched.
func Seed(ctx context.Context, s Store, now time.Time) error {
	flights, err := LoadList[models.Flight](ctx, s, FlightsKey)
	if err != nil {
		return err
	}
	if len(flights) == 0 {
		flights = sampleFlights(now)
		if err := s.Save(ctx, FlightsKey, flights); err != nil {
			return fmt.Errorf("failed to seed flights: %w", err)
		}
	}

	users, err := LoadList[models.User](ctx, s, UsersKey)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		users, err = sampleUsers(now)
		if err != nil {
			return err
		}
		if err := s.Save(ctx, UsersKey, users); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}

	bookings, err := LoadList[models.Booking](ctx, s, BookingsKey)
	if err != nil {
		return err
	}
	if len(bookings) == 0 && len(flights) >= 2 {
		bookings, err = sampleBookings(flights, now)
		if err != nil {
			return err
		}
		if err := s.Save(ctx, BookingsKey, bookings); err != nil {
			return fmt.Errorf("failed to seed bookings: %w", err)
		}
	}

	return nil
}

func sampleFlights(now time.Time) []models.Flight {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []models.Flight{
		{
			ID:             "1",
			FlightNumber:   "EK201",
			Origin:         "Santiago (SCL)",
			Destination:    "Dubai (DXB)",
			DepartureDate:  day.AddDate(0, 0, 60),
			DepartureTime:  "22:30",
			ArrivalTime:    "18:45+1",
			Duration:       "16h 15m",
			Aircraft:       "Boeing 777-300ER",
			Status:         models.FlightStatusScheduled,
			Pricing:        models.ClassPricing{Economy: 1200, Business: 4500, FirstClass: 8500},
			AvailableSeats: models.ClassSeats{Economy: 45, Business: 12, FirstClass: 4},
			Amenities:      []string{"WiFi", "In-flight entertainment", "Gourmet dining", "Exclusive lounge"},
		},
		{
			ID:             "2",
			FlightNumber:   "EK202",
			Origin:         "Dubai (DXB)",
			Destination:    "Santiago (SCL)",
			DepartureDate:  day.AddDate(0, 0, 67),
			DepartureTime:  "08:15",
			ArrivalTime:    "18:30",
			Duration:       "16h 15m",
			Aircraft:       "Airbus A380",
			Status:         models.FlightStatusScheduled,
			Pricing:        models.ClassPricing{Economy: 1300, Business: 4700, FirstClass: 9000},
			AvailableSeats: models.ClassSeats{Economy: 120, Business: 25, FirstClass: 8},
			Amenities:      []string{"WiFi", "Entertainment", "Onboard bar", "Shower (First Class)"},
		},
		{
			ID:             "3",
			FlightNumber:   "EK305",
			Origin:         "Santiago (SCL)",
			Destination:    "London (LHR)",
			DepartureDate:  day.AddDate(0, 0, 35),
			DepartureTime:  "14:00",
			ArrivalTime:    "09:30+1",
			Duration:       "15h 30m",
			Aircraft:       "Boeing 787-9",
			Status:         models.FlightStatusScheduled,
			Pricing:        models.ClassPricing{Economy: 1100, Business: 4200, FirstClass: 7800},
			AvailableSeats: models.ClassSeats{Economy: 85, Business: 18, FirstClass: 6},
			Amenities:      []string{"WiFi", "Entertainment", "Premium dining"},
		},
	}
}

func sampleUsers(now time.Time) ([]models.User, error) {
	accounts := []struct {
		id, email, password, name string
		role                      models.Role
	}{
		{"1", "admin@emirates.com", "admin123", "Emirates Administrator", models.RoleAdmin},
		{"2", "cliente@example.com", "cliente123", "Sample Client", models.RoleClient},
	}

	users := make([]models.User, 0, len(accounts))
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password: %w", err)
		}
		users = append(users, models.User{
			ID:        a.id,
			Email:     a.email,
			Password:  string(hash),
			Name:      a.name,
			Role:      a.role,
			CreatedAt: now,
		})
	}
	return users, nil
}

func sampleBookings(flights []models.Flight, now time.Time) ([]models.Booking, error) {
	first := models.Booking{
		ID:          "1",
		UserID:      "2",
		UserName:    "Sample Client",
		UserEmail:   "cliente@example.com",
		Flight:      flights[0],
		FlightClass: models.FlightClassEconomy,
		Passengers: []models.Passenger{
			{
				FirstName:      "Juan",
				LastName:       "Pérez",
				DocumentType:   "Passport",
				DocumentNumber: "12345678",
				DateOfBirth:    time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
				Nationality:    "Chilean",
			},
		},
		SeatNumbers:      []string{"12A"},
		Extras:           &models.BookingExtras{AirportTransfer: true, MealPreference: "vegetarian"},
		Status:           models.BookingStatusConfirmed,
		BookingDate:      now,
		PaymentMethod:    "Credit card",
		ConfirmationCode: "ABC123",
	}

	second := models.Booking{
		ID:          "2",
		UserID:      "2",
		UserName:    "Sample Client",
		UserEmail:   "cliente@example.com",
		Flight:      flights[1],
		FlightClass: models.FlightClassBusiness,
		Passengers: []models.Passenger{
			{
				FirstName:      "María",
				LastName:       "González",
				DocumentType:   "National ID",
				DocumentNumber: "87654321",
				DateOfBirth:    time.Date(1985, 4, 20, 0, 0, 0, 0, time.UTC),
				Nationality:    "Chilean",
			},
			{
				FirstName:      "Pedro",
				LastName:       "González",
				DocumentType:   "National ID",
				DocumentNumber: "11223344",
				DateOfBirth:    time.Date(2010, 8, 10, 0, 0, 0, 0, time.UTC),
				Nationality:    "Chilean",
			},
		},
		SeatNumbers:      []string{"5A", "5B"},
		Extras:           &models.BookingExtras{ExtraLuggage: 20},
		Status:           models.BookingStatusConfirmed,
		BookingDate:      now.AddDate(0, 0, -14),
		PaymentMethod:    "Bank transfer",
		ConfirmationCode: "XYZ789",
	}

	bookings := []models.Booking{first, second}
	for i := range bookings {
		b := &bookings[i]
		total, err := booking.ComputeTotalPrice(b.Flight, b.FlightClass, len(b.Passengers), b.Extras)
		if err != nil {
			return nil, fmt.Errorf("failed to price seed booking %s: %w", b.ID, err)
		}
		b.TotalPrice = total
	}
	return bookings, nil
}
