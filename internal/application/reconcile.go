package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/booking-portal/internal/scheduler"
)

// ReconciliationIssue is one mismatch between rosters and appointments.
type ReconciliationIssue struct {
	Kind           string
	ProfessionalID string
	SlotID         string
	Date           string
	StartTime      string
	EndTime        string
	AppointmentIDs []string
}

// ReconciliationReport summarises slot and appointment consistency.
type ReconciliationReport struct {
	GeneratedAt   time.Time
	Professionals int
	Slots         int
	BookedSlots   int
	Appointments  int
	Issues        []ReconciliationIssue
}

// Counts tallies issues by kind.
func (r ReconciliationReport) Counts() map[string]int {
	counts := make(map[string]int)
	for _, issue := range r.Issues {
		counts[issue.Kind]++
	}
	return counts
}

func (r ReconciliationReport) clone() ReconciliationReport {
	out := r
	if r.Issues != nil {
		out.Issues = make([]ReconciliationIssue, len(r.Issues))
		for i, issue := range r.Issues {
			issue.AppointmentIDs = append([]string(nil), issue.AppointmentIDs...)
			out.Issues[i] = issue
		}
	}
	return out
}

// ReconcileService reports slots and appointments that disagree. It only reads.
type ReconcileService struct {
	store  EntityStore
	cache  *reportCache
	now    func() time.Time
	logger *slog.Logger
}

// NewReconcileService constructs a ReconcileService. Reports are cached for
// cacheTTL or until Invalidate is called.
func NewReconcileService(store EntityStore, now func() time.Time, cacheTTL time.Duration) *ReconcileService {
	return NewReconcileServiceWithLogger(store, now, cacheTTL, nil)
}

// NewReconcileServiceWithLogger constructs a ReconcileService with a specified logger.
func NewReconcileServiceWithLogger(store EntityStore, now func() time.Time, cacheTTL time.Duration, logger *slog.Logger) *ReconcileService {
	if now == nil {
		now = time.Now
	}
	return &ReconcileService{
		store:  store,
		cache:  newReportCache(cacheTTL, now),
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *ReconcileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReconcileService", operation, attrs...)
}

// ReconcileSlots returns the report to an administrator, serving a cached
// copy when one is fresh.
func (s *ReconcileService) ReconcileSlots(ctx context.Context, principal Principal) (ReconciliationReport, error) {
	if s == nil {
		return ReconciliationReport{}, fmt.Errorf("ReconcileService is nil")
	}
	if err := requireView(principal, ViewAdminDashboard); err != nil {
		return ReconciliationReport{}, err
	}
	if report, ok := s.cache.Get(); ok {
		return report, nil
	}
	return s.Run(ctx)
}

// Run computes a fresh report and refreshes the cache.
func (s *ReconcileService) Run(ctx context.Context) (report ReconciliationReport, err error) {
	if s == nil {
		err = fmt.Errorf("ReconcileService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("entity store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Run")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reconciliation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		attrs := []any{"issues", len(report.Issues), "appointments", report.Appointments, "booked_slots", report.BookedSlots}
		for kind, count := range report.Counts() {
			attrs = append(attrs, kind, count)
		}
		logger.InfoContext(ctx, "reconciliation completed", attrs...)
	}()

	var professionals []Professional
	professionals, err = s.store.ReadProfessionals(ctx)
	if err != nil {
		err = fmt.Errorf("read professionals: %w", err)
		return
	}
	var appointments []Appointment
	appointments, err = s.store.ReadAppointments(ctx)
	if err != nil {
		err = fmt.Errorf("read appointments: %w", err)
		return
	}

	report = BuildReconciliationReport(professionals, appointments)
	report.GeneratedAt = s.now().UTC()
	s.cache.Store(report)
	return
}

// Invalidate drops the cached report.
func (s *ReconcileService) Invalidate() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// BuildReconciliationReport matches appointments to slots on professional id,
// date, start time, and end time.
func BuildReconciliationReport(professionals []Professional, appointments []Appointment) ReconciliationReport {
	report := ReconciliationReport{
		Professionals: len(professionals),
		Appointments:  len(appointments),
	}

	var slots []scheduler.Slot
	for _, p := range professionals {
		for _, slot := range p.AvailableSlots {
			report.Slots++
			if slot.IsBooked {
				report.BookedSlots++
			}
			slots = append(slots, scheduler.Slot{
				ID:     slot.ID,
				Key:    scheduler.SlotKey{OwnerID: p.ID, Date: slot.Date, Start: slot.StartTime, End: slot.EndTime},
				Booked: slot.IsBooked,
			})
		}
	}

	bookings := make([]scheduler.Booking, 0, len(appointments))
	for _, a := range appointments {
		if a.Status == StatusCancelled {
			continue
		}
		bookings = append(bookings, scheduler.Booking{
			ID:  a.ID,
			Key: scheduler.SlotKey{OwnerID: a.ProfessionalID, Date: a.Date, Start: a.StartTime, End: a.EndTime},
		})
	}

	for _, c := range scheduler.DetectConflicts(slots, bookings) {
		report.Issues = append(report.Issues, ReconciliationIssue{
			Kind:           string(c.Type),
			ProfessionalID: c.Key.OwnerID,
			SlotID:         c.SlotID,
			Date:           c.Key.Date,
			StartTime:      c.Key.Start,
			EndTime:        c.Key.End,
			AppointmentIDs: c.BookingIDs,
		})
	}
	return report
}
