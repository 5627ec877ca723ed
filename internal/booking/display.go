package booking

import (
	"math"
	"sort"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/models"
)

const unknownLabel = "Unknown"

var statusText = map[models.BookingStatus]string{
	models.BookingStatusConfirmed: "Confirmed",
	models.BookingStatusPending:   "Pending",
	models.BookingStatusCancelled: "Cancelled",
	models.BookingStatusCompleted: "Completed",
}

var statusBadge = map[models.BookingStatus]string{
	models.BookingStatusConfirmed: "bg-success",
	models.BookingStatusPending:   "bg-warning",
	models.BookingStatusCancelled: "bg-danger",
	models.BookingStatusCompleted: "bg-secondary",
}

var className = map[models.FlightClass]string{
	models.FlightClassEconomy:  "Economy",
	models.FlightClassBusiness: "Business",
	models.FlightClassFirst:    "First Class",
}

func StatusText(s models.BookingStatus) string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return unknownLabel
}

// IsKnownStatus reports whether s is one of the booking statuses
func IsKnownStatus(s models.BookingStatus) bool {
	_, ok := statusText[s]
	return ok
}

// FilterByStatus keeps the bookings in status s, preserving order.
// An empty status keeps everything.
func FilterByStatus(bookings []models.Booking, s models.BookingStatus) []models.Booking {
	if s == "" {
		return bookings
	}
	out := []models.Booking{}
	for _, b := range bookings {
		if b.Status == s {
			out = append(out, b)
		}
	}
	return out
}

func StatusBadge(s models.BookingStatus) string {
	if badge, ok := statusBadge[s]; ok {
		return badge
	}
	return "bg-secondary"
}

func ClassName(c models.FlightClass) string {
	if name, ok := className[c]; ok {
		return name
	}
	return unknownLabel
}

// LoyaltyPoints awards one point per currency unit spent on bookings that
// were not cancelled.
func LoyaltyPoints(bookings []models.Booking) int64 {
	var spent float64
	for _, b := range bookings {
		if b.Status != models.BookingStatusCancelled {
			spent += b.TotalPrice
		}
	}
	return int64(math.Floor(spent))
}

// Upcoming returns confirmed bookings whose flight has not departed yet
func Upcoming(bookings []models.Booking, now time.Time) []models.Booking {
	out := []models.Booking{}
	for _, b := range bookings {
		if b.Status == models.BookingStatusConfirmed && !HasDeparted(b, now) {
			out = append(out, b)
		}
	}
	return out
}

// Past returns bookings whose flight has departed or that were completed
func Past(bookings []models.Booking, now time.Time) []models.Booking {
	out := []models.Booking{}
	for _, b := range bookings {
		if HasDeparted(b, now) || b.Status == models.BookingStatusCompleted {
			out = append(out, b)
		}
	}
	return out
}

// Recent returns up to n bookings, newest booking date first
func Recent(bookings []models.Booking, n int) []models.Booking {
	sorted := make([]models.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BookingDate.After(sorted[j].BookingDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
