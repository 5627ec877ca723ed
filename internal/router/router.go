package router

import (
	"net/http"

	"github.com/cx-tal-miterani/booking-service/internal/handlers"
	"github.com/cx-tal-miterani/booking-service/internal/middleware"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configure optional router features
type Options struct {
	// Idempotency enables Idempotency-Key handling on booking creation
	Idempotency middleware.IdempotencyClient
	KeyPrefix   string
	// AccessLog turns on chi's request logger
	AccessLog bool
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, tokens middleware.TokenParser, opts Options) *mux.Router {
	r := mux.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if opts.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(corsMiddleware)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Authenticate(tokens))

	authed := func(f http.HandlerFunc) http.Handler { return middleware.RequireAuth(f) }

	// Flights
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)

	// Auth
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/logout", authed(h.Logout)).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/auth/me", authed(h.Me)).Methods(http.MethodGet, http.MethodOptions)

	// Bookings
	create := http.Handler(http.HandlerFunc(h.CreateBooking))
	if opts.Idempotency != nil {
		create = middleware.Idempotency(opts.Idempotency, opts.KeyPrefix)(create)
	}
	api.Handle("/bookings", authed(h.GetBookings)).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/bookings", middleware.RequireAuth(create)).Methods(http.MethodPost)
	api.Handle("/bookings/{id}", authed(h.GetBooking)).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/bookings/{id}", authed(h.CancelBooking)).Methods(http.MethodDelete)
	api.Handle("/bookings/{id}/qr", authed(h.GetBookingQR)).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/profile", authed(h.GetProfile)).Methods(http.MethodGet, http.MethodOptions)

	// Admin
	api.Handle("/admin/bookings", middleware.RequireAdmin(http.HandlerFunc(h.GetAllBookings))).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for booking updates
	api.Handle("/ws", authed(h.Events)).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
