package models

import "time"

// Booking represents a flight reservation held by a user.
// User and flight data are snapshots taken at creation time.
type Booking struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	UserName         string         `json:"userName"`
	UserEmail        string         `json:"userEmail"`
	Flight           Flight         `json:"flight"`
	FlightClass      FlightClass    `json:"flightClass"`
	Passengers       []Passenger    `json:"passengers"`
	SeatNumbers      []string       `json:"seatNumbers"`
	TotalPrice       float64        `json:"totalPrice"`
	Extras           *BookingExtras `json:"extras,omitempty"`
	Status           BookingStatus  `json:"status"`
	BookingDate      time.Time      `json:"bookingDate"`
	PaymentMethod    string         `json:"paymentMethod,omitempty"`
	ConfirmationCode string         `json:"confirmationCode"`
}

// Passenger is a traveller listed on a booking
type Passenger struct {
	FirstName      string    `json:"firstName" validate:"required"`
	LastName       string    `json:"lastName" validate:"required"`
	DocumentType   string    `json:"documentType" validate:"required"`
	DocumentNumber string    `json:"documentNumber" validate:"required"`
	DateOfBirth    time.Time `json:"dateOfBirth"`
	Nationality    string    `json:"nationality"`
}

// BookingExtras are optional add-ons. Transfer and luggage affect the price.
type BookingExtras struct {
	AirportTransfer   bool   `json:"airportTransfer,omitempty"`
	ExtraLuggage      int    `json:"extraLuggage,omitempty"` // kg
	MealPreference    string `json:"mealPreference,omitempty"`
	SpecialAssistance string `json:"specialAssistance,omitempty"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// CreateBookingRequest represents a request to create a new booking
type CreateBookingRequest struct {
	UserID        string         `json:"userId" validate:"required"`
	FlightID      string         `json:"flightId" validate:"required"`
	FlightClass   FlightClass    `json:"flightClass" validate:"required,oneof=economy business first_class"`
	Passengers    []Passenger    `json:"passengers" validate:"required,min=1,dive"`
	Extras        *BookingExtras `json:"extras,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
}

// ProfileSummary is the booking overview shown on a user's profile
type ProfileSummary struct {
	User           PublicUser `json:"user"`
	TotalBookings  int        `json:"totalBookings"`
	LoyaltyPoints  int64      `json:"loyaltyPoints"`
	RecentBookings []Booking  `json:"recentBookings"`
	Upcoming       []Booking  `json:"upcoming"`
	Past           []Booking  `json:"past"`
}
