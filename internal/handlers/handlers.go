package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/booking"
	"github.com/cx-tal-miterani/booking-service/internal/catalog"
	"github.com/cx-tal-miterani/booking-service/internal/directory"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/middleware"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/cx-tal-miterani/booking-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// EventStreamer upgrades a request into a user's booking event stream
type EventStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	streamer       EventStreamer
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, streamer EventStreamer) *Handler {
	return &Handler{
		bookingService: bookingService,
		streamer:       streamer,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps domain errors onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrFlightNotFound):
		respondError(w, http.StatusNotFound, "Flight not found")
	case errors.Is(err, ledger.ErrBookingNotFound):
		respondError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, directory.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, directory.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, directory.ErrEmailAlreadyExists):
		respondError(w, http.StatusConflict, "Email is already registered")
	case errors.Is(err, service.ErrBookingAlreadyCancelled),
		errors.Is(err, service.ErrFlightDeparted),
		errors.Is(err, service.ErrBookingNotCancellable):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func currentUser(r *http.Request) models.PublicUser {
	user, _ := middleware.UserFromContext(r.Context())
	return user
}

// GetFlights handles GET /api/flights
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.FlightFilter{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		Date:        q.Get("date"),
	}
	if filter.Date != "" {
		if _, err := time.Parse(models.FlightDateLayout, filter.Date); err != nil {
			respondError(w, http.StatusBadRequest, "Date must be formatted as YYYY-MM-DD")
			return
		}
	}

	flights, err := h.bookingService.GetAvailableFlights(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["id"]
	flight, err := h.bookingService.GetFlight(r.Context(), flightID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.bookingService.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.bookingService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.Logout(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}

// statusFilter reads the optional ?status= query parameter
func statusFilter(w http.ResponseWriter, r *http.Request) (models.BookingStatus, bool) {
	status := models.BookingStatus(r.URL.Query().Get("status"))
	if status != "" && !booking.IsKnownStatus(status) {
		respondError(w, http.StatusBadRequest, "Invalid status, expected one of pending, confirmed, cancelled, completed")
		return "", false
	}
	return status, true
}

// GetBookings handles GET /api/bookings
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetUserBookings(r.Context(), currentUser(r).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking.FilterByStatus(bookings, status))
}

// GetAllBookings handles GET /api/admin/bookings
func (h *Handler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingService.GetAllBookings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking.FilterByStatus(bookings, status))
}

// CreateBooking handles POST /api/bookings. The booking is always made for
// the authenticated user.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := currentUser(r)
	req.UserID = user.ID

	booking, err := h.bookingService.CreateBooking(r.Context(), &req, user.Name, user.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// authorizedBooking loads a booking the current user may see: their own, or
// any booking for an admin.
func (h *Handler) authorizedBooking(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	booking, err := h.bookingService.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}

	user := currentUser(r)
	if booking.UserID != user.ID && user.Role != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return booking, true
}

// GetBooking handles GET /api/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// GetBookingQR handles GET /api/bookings/{id}/qr
func (h *Handler) GetBookingQR(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}

	qr, err := qrcode.New(fmt.Sprintf("%s %s", booking.ConfirmationCode, booking.Flight.FlightNumber), qrcode.Medium)
	if err != nil {
		respondServiceError(w, fmt.Errorf("failed to generate qr code: %w", err))
		return
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(qrSize)); err != nil {
		respondServiceError(w, fmt.Errorf("failed to encode qr code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// CancelBooking handles DELETE /api/bookings/{id}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}

	cancelled, err := h.bookingService.CancelBooking(r.Context(), booking.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cancelled)
}

// GetProfile handles GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.bookingService.GetProfile(r.Context(), currentUser(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Events handles GET /api/ws
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.streamer.Serve(w, r, currentUser(r).ID)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
