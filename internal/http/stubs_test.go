package http

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/booking-portal/internal/application"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	userPrincipal         = application.Principal{UserID: "user-1", Name: "Jane", Email: "jane@example.com", Role: application.RoleUser}
	professionalPrincipal = application.Principal{UserID: "user-2", Name: "Sarah", Email: "sarah.johnson@example.com", Role: application.RoleProfessional}
	adminPrincipal        = application.Principal{UserID: "user-3", Name: "Root", Email: "root@example.com", Role: application.RoleAdmin}
)

type sessionValidatorStub struct {
	principals map[string]application.Principal
	err        error
}

func (s sessionValidatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	p, ok := s.principals[token]
	if !ok {
		return application.Principal{}, application.ErrInvalidCredentials
	}
	return p, nil
}

func defaultSessions() sessionValidatorStub {
	return sessionValidatorStub{principals: map[string]application.Principal{
		"user-token":         userPrincipal,
		"professional-token": professionalPrincipal,
		"admin-token":        adminPrincipal,
	}}
}

type authServiceStub struct {
	mu          sync.Mutex
	result      application.AuthResult
	err         error
	lastLogin   application.LoginParams
	lastSignup  application.SignupParams
	loggedOut   []string
	logoutError error
}

func (s *authServiceStub) Login(_ context.Context, params application.LoginParams) (application.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLogin = params
	return s.result, s.err
}

func (s *authServiceStub) Signup(_ context.Context, params application.SignupParams) (application.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSignup = params
	return s.result, s.err
}

func (s *authServiceStub) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedOut = append(s.loggedOut, token)
	return s.logoutError
}

type professionalServiceStub struct {
	professionals []application.Professional
	err           error
	lastQuery     string
}

func (s *professionalServiceStub) ListProfessionals(_ context.Context, _ application.Principal, query string) ([]application.Professional, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return application.FilterProfessionals(s.professionals, query), nil
}

func (s *professionalServiceStub) GetProfessional(_ context.Context, _ application.Principal, id string) (application.Professional, error) {
	if s.err != nil {
		return application.Professional{}, s.err
	}
	for _, p := range s.professionals {
		if p.ID == id {
			return p, nil
		}
	}
	return application.Professional{}, application.ErrNotFound
}

func (s *professionalServiceStub) Availability(ctx context.Context, principal application.Principal, id string) (application.AvailabilityIndex, error) {
	p, err := s.GetProfessional(ctx, principal, id)
	if err != nil {
		return application.AvailabilityIndex{}, err
	}
	return application.OpenSlotsByDate(p.AvailableSlots), nil
}

type bookingServiceStub struct {
	result application.BookingResult
	err    error
	last   application.BookParams
}

func (s *bookingServiceStub) Book(_ context.Context, params application.BookParams) (application.BookingResult, error) {
	s.last = params
	return s.result, s.err
}

type dashboardServiceStub struct {
	user         application.UserDashboard
	professional application.ProfessionalDashboard
	admin        application.AdminDashboard
	err          error
}

func (s *dashboardServiceStub) UserDashboard(context.Context, application.Principal) (application.UserDashboard, error) {
	return s.user, s.err
}

func (s *dashboardServiceStub) ProfessionalDashboard(context.Context, application.Principal) (application.ProfessionalDashboard, error) {
	return s.professional, s.err
}

func (s *dashboardServiceStub) AdminDashboard(context.Context, application.Principal) (application.AdminDashboard, error) {
	return s.admin, s.err
}

type adminServiceStub struct {
	professional application.Professional
	err          error
	lastActive   application.SetProfessionalActiveParams
	toggled      []string
	csv          string
}

func (s *adminServiceStub) SetProfessionalActive(_ context.Context, params application.SetProfessionalActiveParams) (application.Professional, error) {
	s.lastActive = params
	if s.err != nil {
		return application.Professional{}, s.err
	}
	p := s.professional
	p.IsActive = params.Active
	return p, nil
}

func (s *adminServiceStub) ToggleProfessional(_ context.Context, _ application.Principal, id string) (application.Professional, error) {
	s.toggled = append(s.toggled, id)
	if s.err != nil {
		return application.Professional{}, s.err
	}
	p := s.professional
	p.IsActive = !p.IsActive
	return p, nil
}

func (s *adminServiceStub) ExportAppointmentsCSV(_ context.Context, _ application.Principal, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.csv)
	return err
}

type reconcileServiceStub struct {
	report application.ReconciliationReport
	err    error
}

func (s *reconcileServiceStub) ReconcileSlots(context.Context, application.Principal) (application.ReconciliationReport, error) {
	return s.report, s.err
}

type observerStub struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *observerStub) RecordRequest(_ string, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.status = append(o.status, status)
}

func sampleProfessionals() []application.Professional {
	return []application.Professional{
		{
			ID:         "1",
			Name:       "Dr. Sarah Johnson",
			Email:      "sarah.johnson@example.com",
			Profession: "Cardiologist",
			IsActive:   true,
			AvailableSlots: []application.TimeSlot{
				{ID: "1-0-0", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00"},
				{ID: "1-0-1", Date: "2024-03-04", StartTime: "10:00", EndTime: "11:00", IsBooked: true},
				{ID: "1-1-0", Date: "2024-03-05", StartTime: "09:00", EndTime: "10:00"},
			},
		},
		{
			ID:         "2",
			Name:       "Michael Chen",
			Email:      "michael.chen@example.com",
			Profession: "Financial Advisor",
			IsActive:   false,
		},
	}
}

// unexpectedError is an error outside every sentinel.
type unexpectedError struct{}

func (unexpectedError) Error() string { return "disk on fire" }
