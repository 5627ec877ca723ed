package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "The total number of bookings created, by flight class",
	}, []string{"class"})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "The total number of bookings cancelled",
	})
	BookingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_completed_total",
		Help: "The total number of bookings completed by the departure sweep",
	})
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "The total number of login and registration attempts, by result",
	}, []string{"result"})
	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_event_publish_errors_total",
		Help: "The total number of booking events that failed to publish",
	})
)
