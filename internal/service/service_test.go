package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cx-tal-miterani/booking-service/internal/auth"
	"github.com/cx-tal-miterani/booking-service/internal/catalog"
	"github.com/cx-tal-miterani/booking-service/internal/database"
	"github.com/cx-tal-miterani/booking-service/internal/directory"
	"github.com/cx-tal-miterani/booking-service/internal/events"
	"github.com/cx-tal-miterani/booking-service/internal/ledger"
	"github.com/cx-tal-miterani/booking-service/internal/models"
	"github.com/cx-tal-miterani/booking-service/internal/session"
	"github.com/stretchr/testify/suite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type BookingServiceTestSuite struct {
	suite.Suite
	now       time.Time
	store     *database.MemoryStore
	ledger    *ledger.Ledger
	session   *session.State
	tokens    *auth.Tokens
	publisher *recordingPublisher
	svc       BookingService
}

func (s *BookingServiceTestSuite) SetupTest() {
	s.now = time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = database.NewMemoryStore()
	s.Require().NoError(database.Seed(context.Background(), s.store, s.now))

	s.ledger = ledger.New(s.store)
	s.session = session.New()
	s.tokens = auth.NewTokens("test-secret", time.Hour)
	s.publisher = &recordingPublisher{}
	s.svc = NewBookingService(
		catalog.New(s.store),
		s.ledger,
		directory.New(s.store),
		s.session,
		s.tokens,
		s.publisher,
		Options{Now: func() time.Time { return s.now }},
	)
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (s *BookingServiceTestSuite) passenger(first string) models.Passenger {
	return models.Passenger{FirstName: first, LastName: "Doe", DocumentType: "Passport", DocumentNumber: "X1"}
}

func (s *BookingServiceTestSuite) TestGetAvailableFlights() {
	flights, err := s.svc.GetAvailableFlights(context.Background(), models.FlightFilter{})
	s.Require().NoError(err)
	s.Len(flights, 3)

	flights, err = s.svc.GetAvailableFlights(context.Background(), models.FlightFilter{Destination: "london"})
	s.Require().NoError(err)
	s.Require().Len(flights, 1)
	s.Equal("EK305", flights[0].FlightNumber)
}

func (s *BookingServiceTestSuite) TestGetFlight_NotFound() {
	_, err := s.svc.GetFlight(context.Background(), "missing")
	s.ErrorIs(err, catalog.ErrFlightNotFound)
}

func (s *BookingServiceTestSuite) TestCreateBooking() {
	req := &models.CreateBookingRequest{
		UserID:      "2",
		FlightID:    "1",
		FlightClass: models.FlightClassBusiness,
		Passengers:  []models.Passenger{s.passenger("Ana"), s.passenger("Luis")},
		Extras:      &models.BookingExtras{AirportTransfer: true, ExtraLuggage: 5},
	}

	b, err := s.svc.CreateBooking(context.Background(), req, "", "")
	s.Require().NoError(err)

	// 4500*2 + 50*2 + 10*5
	s.Equal(9150.0, b.TotalPrice)
	s.Equal(models.BookingStatusConfirmed, b.Status)
	s.Equal([]string{"10A", "11B"}, b.SeatNumbers)
	s.Equal("Sample Client", b.UserName)
	s.Equal("cliente@example.com", b.UserEmail)
	s.Equal(s.now, b.BookingDate)
	s.Len(b.ConfirmationCode, 6)
	s.Equal("EK201", b.Flight.FlightNumber)

	list, err := s.svc.GetUserBookings(context.Background(), "2")
	s.Require().NoError(err)
	s.Len(list, 3)
	s.Equal(b.ID, list[2].ID)

	s.Require().Len(s.publisher.events, 1)
	s.Equal(events.BookingCreated, s.publisher.events[0].Type)
	s.Equal(b.ID, s.publisher.events[0].BookingID)
}

func (s *BookingServiceTestSuite) TestCreateBooking_Errors() {
	base := func() *models.CreateBookingRequest {
		return &models.CreateBookingRequest{
			UserID:      "2",
			FlightID:    "1",
			FlightClass: models.FlightClassEconomy,
			Passengers:  []models.Passenger{s.passenger("Ana")},
		}
	}

	tests := []struct {
		name   string
		modify func(r *models.CreateBookingRequest)
		want   error
	}{
		{"unknown flight", func(r *models.CreateBookingRequest) { r.FlightID = "99" }, catalog.ErrFlightNotFound},
		{"unknown user", func(r *models.CreateBookingRequest) { r.UserID = "99" }, directory.ErrUserNotFound},
		{"unknown class", func(r *models.CreateBookingRequest) { r.FlightClass = "premium" }, ErrValidation},
		{"no passengers", func(r *models.CreateBookingRequest) { r.Passengers = nil }, ErrValidation},
		{"incomplete passenger", func(r *models.CreateBookingRequest) { r.Passengers[0].LastName = "" }, ErrValidation},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := base()
			tt.modify(req)
			_, err := s.svc.CreateBooking(context.Background(), req, "", "")
			s.ErrorIs(err, tt.want)
		})
	}

	all, err := s.ledger.List(context.Background())
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Empty(s.publisher.events)
}

func (s *BookingServiceTestSuite) TestCancelBooking() {
	b, err := s.svc.CancelBooking(context.Background(), "1")
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCancelled, b.Status)

	stored, err := s.svc.GetBooking(context.Background(), "1")
	s.Require().NoError(err)
	s.Equal(models.BookingStatusCancelled, stored.Status)

	s.Require().Len(s.publisher.events, 1)
	s.Equal(events.BookingCancelled, s.publisher.events[0].Type)

	_, err = s.svc.CancelBooking(context.Background(), "1")
	s.ErrorIs(err, ErrBookingAlreadyCancelled)
}

func (s *BookingServiceTestSuite) TestCancelBooking_Rejected() {
	_, err := s.svc.CancelBooking(context.Background(), "missing")
	s.ErrorIs(err, ledger.ErrBookingNotFound)

	s.Require().NoError(s.ledger.UpdateStatus(context.Background(), "2", models.BookingStatusCompleted))
	_, err = s.svc.CancelBooking(context.Background(), "2")
	s.ErrorIs(err, ErrBookingNotCancellable)

	s.now = s.now.AddDate(1, 0, 0)
	_, err = s.svc.CancelBooking(context.Background(), "1")
	s.ErrorIs(err, ErrFlightDeparted)

	stored, err := s.svc.GetBooking(context.Background(), "1")
	s.Require().NoError(err)
	s.Equal(models.BookingStatusConfirmed, stored.Status)
	s.Empty(s.publisher.events)
}

func (s *BookingServiceTestSuite) TestPublishFailureDoesNotFailBooking() {
	s.publisher.err = errors.New("broker down")

	_, err := s.svc.CancelBooking(context.Background(), "1")
	s.NoError(err)
}

func (s *BookingServiceTestSuite) TestLoginAndLogout() {
	var seen []*models.PublicUser
	s.session.OnChange(func(u *models.PublicUser) { seen = append(seen, u) })

	resp, err := s.svc.Login(context.Background(), &models.LoginRequest{Email: "admin@emirates.com", Password: "admin123"})
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, resp.User.Role)
	s.NotEmpty(resp.Token)

	claims, err := s.tokens.Parse(resp.Token)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, claims.User().ID)

	s.Require().NotNil(s.svc.CurrentUser())
	s.Equal("admin@emirates.com", s.svc.CurrentUser().Email)

	s.Require().NoError(s.svc.Logout(context.Background()))
	s.Nil(s.svc.CurrentUser())

	s.Require().Len(seen, 2)
	s.NotNil(seen[0])
	s.Nil(seen[1])
}

func (s *BookingServiceTestSuite) TestLogin_InvalidCredentials() {
	_, err := s.svc.Login(context.Background(), &models.LoginRequest{Email: "admin@emirates.com", Password: "wrong"})
	s.ErrorIs(err, directory.ErrInvalidCredentials)

	_, err = s.svc.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "admin123"})
	s.ErrorIs(err, directory.ErrInvalidCredentials)
	s.Nil(s.svc.CurrentUser())
}

func (s *BookingServiceTestSuite) TestRegister() {
	resp, err := s.svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret1",
		Name:     "New User",
	})
	s.Require().NoError(err)
	s.Equal(models.RoleClient, resp.User.Role)
	s.Equal("new@example.com", s.svc.CurrentUser().Email)

	_, err = s.svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret2",
		Name:     "Duplicate",
	})
	s.ErrorIs(err, directory.ErrEmailAlreadyExists)

	_, err = s.svc.Register(context.Background(), &models.RegisterRequest{Email: "bad", Password: "1", Name: "x"})
	s.ErrorIs(err, ErrValidation)
}

func (s *BookingServiceTestSuite) TestGetProfile() {
	user := models.PublicUser{ID: "2", Name: "Sample Client"}

	_, err := s.svc.CancelBooking(context.Background(), "2")
	s.Require().NoError(err)

	profile, err := s.svc.GetProfile(context.Background(), user)
	s.Require().NoError(err)
	s.Equal(2, profile.TotalBookings)
	s.Equal(int64(1250), profile.LoyaltyPoints)
	s.Len(profile.RecentBookings, 2)
	s.Len(profile.Upcoming, 1)
	s.Empty(profile.Past)
}

func TestLatencyHonorsCancellation(t *testing.T) {
	store := database.NewMemoryStore()
	svc := NewBookingService(catalog.New(store), ledger.New(store), directory.New(store),
		session.New(), auth.NewTokens("s", time.Hour), nil, Options{Latency: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetAvailableFlights(ctx, models.FlightFilter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func (s *BookingServiceTestSuite) TestGetAllBookings() {
	s.Require().NoError(s.ledger.Append(context.Background(), models.Booking{ID: "x", UserID: "1"}))

	all, err := s.svc.GetAllBookings(context.Background())
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("x", all[2].ID)
}
