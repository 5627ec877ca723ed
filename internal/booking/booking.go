// Package booking holds the pure pricing, seating and lifecycle rules for
// flight bookings. Nothing here touches storage.
package booking

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/models"
)

const (
	// AirportTransferFee is charged per passenger
	AirportTransferFee = 50.0
	// ExtraLuggageFeePerKg is charged per extra kilogram for the whole booking
	ExtraLuggageFeePerKg = 10.0

	// FirstSeatRow is the row of the first passenger's seat
	FirstSeatRow = 10

	ConfirmationCodeLength   = 6
	ConfirmationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrUnknownFlightClass = errors.New("unknown flight class")

var classPrice = map[models.FlightClass]func(models.ClassPricing) float64{
	models.FlightClassEconomy:  func(p models.ClassPricing) float64 { return p.Economy },
	models.FlightClassBusiness: func(p models.ClassPricing) float64 { return p.Business },
	models.FlightClassFirst:    func(p models.ClassPricing) float64 { return p.FirstClass },
}

// PriceForClass returns the per-passenger price of a cabin class on a flight
func PriceForClass(flight models.Flight, class models.FlightClass) (float64, error) {
	price, ok := classPrice[class]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFlightClass, class)
	}
	return price(flight.Pricing), nil
}

// ComputeTotalPrice prices a booking. Inputs are not clamped: a negative
// passenger count or luggage weight produces a correspondingly odd total.
func ComputeTotalPrice(flight models.Flight, class models.FlightClass, passengers int, extras *models.BookingExtras) (float64, error) {
	perPerson, err := PriceForClass(flight, class)
	if err != nil {
		return 0, err
	}

	total := perPerson * float64(passengers)
	if extras == nil {
		return total, nil
	}
	if extras.AirportTransfer {
		total += AirportTransferFee * float64(passengers)
	}
	if extras.ExtraLuggage > 0 {
		total += ExtraLuggageFeePerKg * float64(extras.ExtraLuggage)
	}
	return total, nil
}

// AssignSeats returns one label per passenger. Every passenger gets a new
// row, so labels never repeat; they do not reflect a real cabin layout.
func AssignSeats(passengers int) []string {
	if passengers <= 0 {
		return []string{}
	}
	seats := make([]string, passengers)
	for i := range seats {
		seats[i] = fmt.Sprintf("%d%c", FirstSeatRow+i, 'A'+rune(i%6))
	}
	return seats
}

// GenerateConfirmationCode draws six characters from A-Z0-9 uniformly with
// replacement. Uniqueness against existing bookings is not checked.
func GenerateConfirmationCode() string {
	max := big.NewInt(int64(len(ConfirmationCodeAlphabet)))
	code := make([]byte, ConfirmationCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(fmt.Sprintf("failed to read random source: %v", err))
		}
		code[i] = ConfirmationCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// IsValidConfirmationCode reports whether code has the shape produced by
// GenerateConfirmationCode.
func IsValidConfirmationCode(code string) bool {
	if len(code) != ConfirmationCodeLength {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// HasDeparted reports whether the booked flight's departure date is not in the future
func HasDeparted(b models.Booking, now time.Time) bool {
	return !b.Flight.DepartureDate.After(now)
}

// CanCancel reports whether a booking may still be cancelled
func CanCancel(b models.Booking, now time.Time) bool {
	return b.Status == models.BookingStatusConfirmed && !HasDeparted(b, now)
}
