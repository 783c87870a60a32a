package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
)

// ProfessionalService serves the professional directory and its admin controls.
type ProfessionalService struct {
	store  EntityStore
	logger *slog.Logger
	// guards activation writes; shared with BookingService
	mu *sync.Mutex
}

// NewProfessionalService constructs a ProfessionalService.
func NewProfessionalService(store EntityStore) *ProfessionalService {
	return NewProfessionalServiceWithLogger(store, nil)
}

// NewProfessionalServiceWithLogger constructs a ProfessionalService with a specified logger.
func NewProfessionalServiceWithLogger(store EntityStore, logger *slog.Logger) *ProfessionalService {
	return NewProfessionalServiceWithLock(store, nil, logger)
}

// NewProfessionalServiceWithLock constructs a ProfessionalService whose
// activation updates hold writeLock. Pass the lock given to the booking
// service so the two never overwrite each other's professionals write.
func NewProfessionalServiceWithLock(store EntityStore, writeLock *sync.Mutex, logger *slog.Logger) *ProfessionalService {
	if writeLock == nil {
		writeLock = &sync.Mutex{}
	}
	return &ProfessionalService{store: store, logger: defaultLogger(logger), mu: writeLock}
}

func (s *ProfessionalService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfessionalService", operation, attrs...)
}

func (s *ProfessionalService) ready() error {
	if s == nil {
		return fmt.Errorf("ProfessionalService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("entity store not configured")
	}
	return nil
}

// ListProfessionals returns professionals whose name or profession contains
// query, ignoring case. An empty query returns everyone.
func (s *ProfessionalService) ListProfessionals(ctx context.Context, principal Principal, query string) ([]Professional, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := requireView(principal, ViewProfessionals); err != nil {
		return nil, err
	}

	professionals, err := s.store.ReadProfessionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("read professionals: %w", err)
	}
	return FilterProfessionals(professionals, query), nil
}

// FilterProfessionals applies the directory search to an in-memory list.
func FilterProfessionals(professionals []Professional, query string) []Professional {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]Professional, 0, len(professionals))
	for _, p := range professionals {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Profession), needle) {
			out = append(out, cloneProfessional(p))
		}
	}
	return out
}

// GetProfessional returns a single professional by id.
func (s *ProfessionalService) GetProfessional(ctx context.Context, principal Principal, id string) (Professional, error) {
	if err := s.ready(); err != nil {
		return Professional{}, err
	}
	if err := requireView(principal, ViewProfessionalProfile); err != nil {
		return Professional{}, err
	}
	return s.lookup(ctx, id)
}

// Availability returns the professional's open slots grouped by date.
func (s *ProfessionalService) Availability(ctx context.Context, principal Principal, id string) (AvailabilityIndex, error) {
	professional, err := s.GetProfessional(ctx, principal, id)
	if err != nil {
		return AvailabilityIndex{}, err
	}
	return OpenSlotsByDate(professional.AvailableSlots), nil
}

func (s *ProfessionalService) lookup(ctx context.Context, id string) (Professional, error) {
	professionals, err := s.store.ReadProfessionals(ctx)
	if err != nil {
		return Professional{}, fmt.Errorf("read professionals: %w", err)
	}
	idx := findProfessional(professionals, strings.TrimSpace(id))
	if idx < 0 {
		return Professional{}, ErrNotFound
	}
	return cloneProfessional(professionals[idx]), nil
}

// SetProfessionalActive sets the listing state of a professional.
func (s *ProfessionalService) SetProfessionalActive(ctx context.Context, params SetProfessionalActiveParams) (Professional, error) {
	return s.updateActive(ctx, "SetProfessionalActive", params.Principal, params.ProfessionalID, func(bool) bool {
		return params.Active
	})
}

// ToggleProfessional flips the listing state of a professional.
func (s *ProfessionalService) ToggleProfessional(ctx context.Context, principal Principal, id string) (Professional, error) {
	return s.updateActive(ctx, "ToggleProfessional", principal, id, func(current bool) bool {
		return !current
	})
}

func (s *ProfessionalService) updateActive(ctx context.Context, operation string, principal Principal, id string, next func(bool) bool) (professional Professional, err error) {
	if err = s.ready(); err != nil {
		return
	}

	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"professional_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update professional", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("is_active", professional.IsActive).InfoContext(ctx, "professional updated")
	}()

	if err = requireView(principal, ViewAdminDashboard); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var professionals []Professional
	professionals, err = s.store.ReadProfessionals(ctx)
	if err != nil {
		err = fmt.Errorf("read professionals: %w", err)
		return
	}
	idx := findProfessional(professionals, id)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	professionals[idx].IsActive = next(professionals[idx].IsActive)
	if err = s.store.WriteProfessionals(ctx, professionals); err != nil {
		err = fmt.Errorf("write professionals: %w", err)
		return
	}
	professional = cloneProfessional(professionals[idx])
	return
}

type appointmentCSVRow struct {
	ID                     string `csv:"id"`
	UserID                 string `csv:"user_id"`
	ProfessionalID         string `csv:"professional_id"`
	ProfessionalName       string `csv:"professional_name"`
	ProfessionalProfession string `csv:"professional_profession"`
	Date                   string `csv:"date"`
	StartTime              string `csv:"start_time"`
	EndTime                string `csv:"end_time"`
	Status                 string `csv:"status"`
	CreatedAt              string `csv:"created_at"`
}

// ExportAppointmentsCSV writes every appointment to w as CSV with a header row.
func (s *ProfessionalService) ExportAppointmentsCSV(ctx context.Context, principal Principal, w io.Writer) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ExportAppointmentsCSV", "principal_id", principal.UserID)
	rows := 0
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "appointment export failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointments exported", "rows", rows)
	}()

	if err = requireView(principal, ViewAdminDashboard); err != nil {
		return
	}

	var appointments []Appointment
	appointments, err = s.store.ReadAppointments(ctx)
	if err != nil {
		err = fmt.Errorf("read appointments: %w", err)
		return
	}

	out := make([]*appointmentCSVRow, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, &appointmentCSVRow{
			ID:                     a.ID,
			UserID:                 a.UserID,
			ProfessionalID:         a.ProfessionalID,
			ProfessionalName:       a.ProfessionalName,
			ProfessionalProfession: a.ProfessionalProfession,
			Date:                   a.Date,
			StartTime:              a.StartTime,
			EndTime:                a.EndTime,
			Status:                 string(a.Status),
			CreatedAt:              csvTimestamp(a.CreatedAt),
		})
	}
	rows = len(out)

	if err = gocsv.Marshal(out, w); err != nil {
		err = fmt.Errorf("encode csv: %w", err)
	}
	return
}

// csvTimestamp leaves the cell empty for appointments whose stored
// createdAt could not be read.
func csvTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
