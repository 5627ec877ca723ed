package models

import "time"

// Flight represents a scheduled flight in the catalog
type Flight struct {
	ID             string       `json:"id"`
	FlightNumber   string       `json:"flightNumber"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureDate  time.Time    `json:"departureDate"`
	DepartureTime  string       `json:"departureTime"`
	ArrivalTime    string       `json:"arrivalTime"`
	Duration       string       `json:"duration"`
	Aircraft       string       `json:"aircraft"`
	Status         FlightStatus `json:"status"`
	Pricing        ClassPricing `json:"pricing"`
	AvailableSeats ClassSeats   `json:"availableSeats"`
	Amenities      []string     `json:"amenities"`
}

// ClassPricing holds the per-seat price of each cabin class
type ClassPricing struct {
	Economy    float64 `json:"economy"`
	Business   float64 `json:"business"`
	FirstClass float64 `json:"firstClass"`
}

// ClassSeats holds the advertised seat availability of each cabin class.
// Booking creation does not decrement these counts.
type ClassSeats struct {
	Economy    int `json:"economy"`
	Business   int `json:"business"`
	FirstClass int `json:"firstClass"`
}

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusArrived   FlightStatus = "arrived"
	FlightStatusCancelled FlightStatus = "cancelled"
)

type FlightClass string

const (
	FlightClassEconomy  FlightClass = "economy"
	FlightClassBusiness FlightClass = "business"
	FlightClassFirst    FlightClass = "first_class"
)

// FlightDateLayout is the format of FlightFilter.Date
const FlightDateLayout = "2006-01-02"

// FlightFilter narrows the catalog listing. Empty fields match everything.
type FlightFilter struct {
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD
}
