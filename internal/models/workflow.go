package models

import "time"

// SweepWorkflowInput is the input for the completion sweep workflow
type SweepWorkflowInput struct {
	// Now overrides the sweep cut-off. Zero means workflow time.
	Now time.Time `json:"now,omitempty"`
}

// SweepResult reports what a completion sweep changed
type SweepResult struct {
	Completed  int       `json:"completed"`
	BookingIDs []string  `json:"bookingIds,omitempty"`
	SweptAt    time.Time `json:"sweptAt"`
}

// Queries for workflow state
const (
	QueryLastSweep = "last_sweep"
)
