package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const recentAppointmentLimit = 5

// DashboardService derives the per-role home view read models. It never writes.
type DashboardService struct {
	store      EntityStore
	demoUserID string
	logger     *slog.Logger
}

// NewDashboardService constructs a DashboardService. Appointments owned by
// demoUserID are shown on every user dashboard so seeded bookings stay visible.
func NewDashboardService(store EntityStore, demoUserID string) *DashboardService {
	return NewDashboardServiceWithLogger(store, demoUserID, nil)
}

// NewDashboardServiceWithLogger constructs a DashboardService with a specified logger.
func NewDashboardServiceWithLogger(store EntityStore, demoUserID string, logger *slog.Logger) *DashboardService {
	return &DashboardService{store: store, demoUserID: strings.TrimSpace(demoUserID), logger: defaultLogger(logger)}
}

func (s *DashboardService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DashboardService", operation, attrs...)
}

func (s *DashboardService) ready() error {
	if s == nil {
		return fmt.Errorf("DashboardService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("entity store not configured")
	}
	return nil
}

// UserDashboard lists the principal's appointments with summary counts.
func (s *DashboardService) UserDashboard(ctx context.Context, principal Principal) (UserDashboard, error) {
	if err := s.ready(); err != nil {
		return UserDashboard{}, err
	}
	if err := requireView(principal, ViewUserDashboard); err != nil {
		return UserDashboard{}, err
	}

	appointments, err := s.store.ReadAppointments(ctx)
	if err != nil {
		return UserDashboard{}, fmt.Errorf("read appointments: %w", err)
	}

	var mine []Appointment
	for _, a := range appointments {
		if a.UserID == principal.UserID || (s.demoUserID != "" && a.UserID == s.demoUserID) {
			mine = append(mine, a)
		}
	}

	s.loggerWith(ctx, "UserDashboard", "principal_id", principal.UserID).
		DebugContext(ctx, "user dashboard built", "appointments", len(mine))
	return UserDashboard{Appointments: mine, Stats: summarize(mine)}, nil
}

// ProfessionalDashboard lists appointments with the professional whose email
// matches the principal. Professional is nil when no record matches.
func (s *DashboardService) ProfessionalDashboard(ctx context.Context, principal Principal) (ProfessionalDashboard, error) {
	if err := s.ready(); err != nil {
		return ProfessionalDashboard{}, err
	}
	if err := requireView(principal, ViewProfessionalDashboard); err != nil {
		return ProfessionalDashboard{}, err
	}

	professionals, err := s.store.ReadProfessionals(ctx)
	if err != nil {
		return ProfessionalDashboard{}, fmt.Errorf("read professionals: %w", err)
	}
	appointments, err := s.store.ReadAppointments(ctx)
	if err != nil {
		return ProfessionalDashboard{}, fmt.Errorf("read appointments: %w", err)
	}

	var dashboard ProfessionalDashboard
	for _, p := range professionals {
		if principal.Email != "" && strings.EqualFold(p.Email, principal.Email) {
			match := cloneProfessional(p)
			dashboard.Professional = &match
			break
		}
	}
	if dashboard.Professional == nil {
		return dashboard, nil
	}

	for _, a := range appointments {
		if a.ProfessionalID == dashboard.Professional.ID {
			dashboard.Appointments = append(dashboard.Appointments, a)
		}
	}
	dashboard.Stats = summarize(dashboard.Appointments)
	dashboard.OpenSlots = OpenSlotsByDate(dashboard.Professional.AvailableSlots).OpenSlotCount()
	return dashboard, nil
}

// AdminDashboard aggregates platform-wide counters.
func (s *DashboardService) AdminDashboard(ctx context.Context, principal Principal) (AdminDashboard, error) {
	if err := s.ready(); err != nil {
		return AdminDashboard{}, err
	}
	if err := requireView(principal, ViewAdminDashboard); err != nil {
		return AdminDashboard{}, err
	}

	professionals, err := s.store.ReadProfessionals(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("read professionals: %w", err)
	}
	appointments, err := s.store.ReadAppointments(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("read appointments: %w", err)
	}

	users := make(map[string]struct{})
	active := 0
	for _, a := range appointments {
		users[a.UserID] = struct{}{}
		if a.Status != StatusCompleted {
			active++
		}
	}

	bookings := make([]ProfessionalBookings, 0, len(professionals))
	for _, p := range professionals {
		count := 0
		for _, a := range appointments {
			if a.ProfessionalID == p.ID {
				count++
			}
		}
		bookings = append(bookings, ProfessionalBookings{
			ProfessionalID: p.ID,
			Name:           firstName(p.Name),
			Bookings:       count,
		})
	}

	recent := appointments
	if len(recent) > recentAppointmentLimit {
		recent = recent[:recentAppointmentLimit]
	}

	return AdminDashboard{
		Stats: AdminStats{
			TotalUsers:         len(users),
			TotalProfessionals: len(professionals),
			TotalAppointments:  len(appointments),
			ActiveAppointments: active,
		},
		BookingsByProvider: bookings,
		RecentAppointments: append([]Appointment(nil), recent...),
		Professionals:      cloneProfessionals(professionals),
	}, nil
}

func summarize(appointments []Appointment) DashboardStats {
	stats := DashboardStats{Total: len(appointments)}
	for _, a := range appointments {
		switch a.Status {
		case StatusConfirmed, StatusPending:
			stats.Upcoming++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
		}
	}
	return stats
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
