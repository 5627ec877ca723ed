package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/auth"
	"github.com/cx-tal-miterani/booking-service/internal/booking"
	"github.com/cx-tal-miterani/booking-service/internal/catalog"
	"github.com/cx-tal-miterani/booking-service/internal/directory"
	"github.com/cx-tal-miterani/booking-service/internal/events"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/metrics"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/cx-tal-miterani/booking-service/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")
	ErrFlightDeparted          = errors.New("flight has already departed")
	ErrBookingNotCancellable   = errors.New("booking cannot be cancelled")
)

// RecentBookingsLimit is how many bookings the profile summary lists
const RecentBookingsLimit = 3

// BookingService defines the booking service interface
type BookingService interface {
	GetAvailableFlights(ctx context.Context, filter models.FlightFilter) ([]models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest, userName, userEmail string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]models.Booking, error)
	GetProfile(ctx context.Context, user models.PublicUser) (*models.ProfileSummary, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.PublicUser
}

// Options tune a booking service. Zero values are usable.
type Options struct {
	// Latency is slept before every operation to mimic a remote backend
	Latency time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	directory *directory.Directory
	session   *session.State
	tokens    *auth.Tokens
	publisher events.Publisher
	validate  *validator.Validate
	latency   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	cat *catalog.Catalog,
	led *ledger.Ledger,
	dir *directory.Directory,
	sess *session.State,
	tokens *auth.Tokens,
	publisher events.Publisher,
	opts Options,
) BookingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &bookingServiceImpl{
		catalog:   cat,
		ledger:    led,
		directory: dir,
		session:   sess,
		tokens:    tokens,
		publisher: publisher,
		validate:  validator.New(),
		latency:   opts.Latency,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

func (s *bookingServiceImpl) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *bookingServiceImpl) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (s *bookingServiceImpl) GetAvailableFlights(ctx context.Context, filter models.FlightFilter) ([]models.Flight, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.catalog.Search(ctx, filter)
}

func (s *bookingServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.catalog.Get(ctx, flightID)
}

func (s *bookingServiceImpl) CreateBooking(ctx context.Context, req *models.CreateBookingRequest, userName, userEmail string) (*models.Booking, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	flight, err := s.catalog.Get(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	user, err := s.directory.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if userName == "" {
		userName = user.Name
	}
	if userEmail == "" {
		userEmail = user.Email
	}

	total, err := booking.ComputeTotalPrice(*flight, req.FlightClass, len(req.Passengers), req.Extras)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.now()
	b := models.Booking{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		UserName:         userName,
		UserEmail:        userEmail,
		Flight:           *flight,
		FlightClass:      req.FlightClass,
		Passengers:       req.Passengers,
		SeatNumbers:      booking.AssignSeats(len(req.Passengers)),
		TotalPrice:       total,
		Extras:           req.Extras,
		Status:           models.BookingStatusConfirmed,
		BookingDate:      now,
		PaymentMethod:    req.PaymentMethod,
		ConfirmationCode: booking.GenerateConfirmationCode(),
	}

	if err := s.ledger.Append(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingsCreated.WithLabelValues(string(b.FlightClass)).Inc()
	s.logger.Info("booking created",
		"bookingId", b.ID,
		"userId", b.UserID,
		"flight", b.Flight.FlightNumber,
		"class", b.FlightClass,
		"total", b.TotalPrice,
	)
	s.publish(ctx, events.FromBooking(events.BookingCreated, b, now))

	return &b, nil
}

func (s *bookingServiceImpl) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	b, err := s.ledger.Transition(ctx, bookingID, func(b models.Booking) (models.BookingStatus, error) {
		switch {
		case b.Status == models.BookingStatusCancelled:
			return "", ErrBookingAlreadyCancelled
		case b.Status != models.BookingStatusConfirmed:
			return "", ErrBookingNotCancellable
		case booking.HasDeparted(b, now):
			return "", ErrFlightDeparted
		}
		return models.BookingStatusCancelled, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingsCancelled.Inc()
	s.logger.Info("booking cancelled", "bookingId", b.ID, "userId", b.UserID)
	s.publish(ctx, events.FromBooking(events.BookingCancelled, *b, now))

	return b, nil
}

func (s *bookingServiceImpl) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.ledger.ListByUser(ctx, userID)
}

func (s *bookingServiceImpl) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.ledger.FindByID(ctx, bookingID)
}

// GetAllBookings returns every booking of every user, for administrators
func (s *bookingServiceImpl) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.ledger.List(ctx)
}

func (s *bookingServiceImpl) GetProfile(ctx context.Context, user models.PublicUser) (*models.ProfileSummary, error) {
	bookings, err := s.GetUserBookings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &models.ProfileSummary{
		User:           user,
		TotalBookings:  len(bookings),
		LoyaltyPoints:  booking.LoyaltyPoints(bookings),
		RecentBookings: booking.Recent(bookings, RecentBookingsLimit),
		Upcoming:       booking.Upcoming(bookings, now),
		Past:           booking.Past(bookings, now),
	}, nil
}

func (s *bookingServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.directory.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	return s.startSession(*user)
}

func (s *bookingServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.directory.Register(ctx, *req)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("registered").Inc()
	s.logger.Info("user registered", "userId", user.ID, "role", user.Role)

	return s.startSession(*user)
}

func (s *bookingServiceImpl) startSession(user models.User) (*models.AuthResponse, error) {
	public := directory.Public(user)
	token, err := s.tokens.Issue(public)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.session.Set(public)
	return &models.AuthResponse{User: public, Token: token}, nil
}

func (s *bookingServiceImpl) Logout(ctx context.Context) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.session.Clear()
	return nil
}

func (s *bookingServiceImpl) CurrentUser() *models.PublicUser {
	return s.session.Current()
}

// publish never fails the calling operation
func (s *bookingServiceImpl) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.EventPublishErrors.Inc()
		s.logger.Warn("failed to publish booking event", "type", e.Type, "bookingId", e.BookingID, "error", err)
	}
}
