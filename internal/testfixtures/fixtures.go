package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/booking-portal/internal/application"
	"github.com/example/booking-portal/internal/persistence"
)

var (
	userCounter         uint64
	professionalCounter uint64
	appointmentCounter  uint64
)

var referenceTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic signed-in user.
type UserFixture struct {
	ID    string
	Name  string
	Email string
	Role  application.Role
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
// Users default to the user role.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:    id,
		Name:  fmt.Sprintf("User %03d", idx),
		Email: fmt.Sprintf("%s@example.com", id),
		Role:  application.RoleUser,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserRole sets the role.
func WithUserRole(role application.Role) UserOption {
	return func(f *UserFixture) {
		f.Role = role
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{ID: f.ID, Name: f.Name, Email: f.Email, Role: f.Role}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return f.Application().Principal()
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{ID: f.ID, Name: f.Name, Email: f.Email, Role: string(f.Role)}
}

// ------------------------- Professional fixtures -------------------------

// ProfessionalFixture represents a deterministic professional and roster.
type ProfessionalFixture struct {
	ID         string
	Name       string
	Email      string
	Profession string
	IsActive   bool
	Slots      []application.TimeSlot
}

// ProfessionalOption configures the generated professional fixture.
type ProfessionalOption func(*ProfessionalFixture)

// NewProfessionalFixture returns an active professional with two open slots on
// the reference day.
func NewProfessionalFixture(opts ...ProfessionalOption) ProfessionalFixture {
	idx := atomic.AddUint64(&professionalCounter, 1)
	id := fmt.Sprintf("pro-%03d", idx)
	fixture := ProfessionalFixture{
		ID:         id,
		Name:       fmt.Sprintf("Professional %03d", idx),
		Email:      fmt.Sprintf("%s@example.com", id),
		Profession: "Consultant",
		IsActive:   true,
	}
	fixture.Slots = DaySlots(id, referenceTime.Format(time.DateOnly), "09:00", "10:00")
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProfessionalID overrides the generated ID. Slot ids are not renamed.
func WithProfessionalID(id string) ProfessionalOption {
	return func(f *ProfessionalFixture) {
		f.ID = id
	}
}

// WithProfessionalEmail overrides the generated email address.
func WithProfessionalEmail(email string) ProfessionalOption {
	return func(f *ProfessionalFixture) {
		f.Email = email
	}
}

// WithProfessionalProfession sets the profession label.
func WithProfessionalProfession(profession string) ProfessionalOption {
	return func(f *ProfessionalFixture) {
		f.Profession = profession
	}
}

// WithProfessionalActive sets the listing state.
func WithProfessionalActive(active bool) ProfessionalOption {
	return func(f *ProfessionalFixture) {
		f.IsActive = active
	}
}

// WithProfessionalSlots replaces the roster.
func WithProfessionalSlots(slots ...application.TimeSlot) ProfessionalOption {
	return func(f *ProfessionalFixture) {
		f.Slots = append([]application.TimeSlot(nil), slots...)
	}
}

// DaySlots builds one-hour open slots on date, identified as <owner>-<date>-<index>.
func DaySlots(ownerID, date string, starts ...string) []application.TimeSlot {
	slots := make([]application.TimeSlot, 0, len(starts))
	for i, start := range starts {
		begin, err := time.Parse("15:04", start)
		if err != nil {
			panic(fmt.Sprintf("testfixtures: bad slot start %q", start))
		}
		slots = append(slots, application.TimeSlot{
			ID:        fmt.Sprintf("%s-%s-%d", ownerID, date, i),
			Date:      date,
			StartTime: start,
			EndTime:   begin.Add(time.Hour).Format("15:04"),
		})
	}
	return slots
}

// Application returns the fixture as an application.Professional value.
func (f ProfessionalFixture) Application() application.Professional {
	return application.Professional{
		ID:             f.ID,
		Name:           f.Name,
		Email:          f.Email,
		Profession:     f.Profession,
		IsActive:       f.IsActive,
		AvailableSlots: append([]application.TimeSlot(nil), f.Slots...),
	}
}

// Persistence returns the fixture as a persistence.Professional value.
func (f ProfessionalFixture) Persistence() persistence.Professional {
	slots := make([]persistence.TimeSlot, 0, len(f.Slots))
	for _, s := range f.Slots {
		slots = append(slots, persistence.TimeSlot{
			ID:        s.ID,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsBooked:  s.IsBooked,
		})
	}
	return persistence.Professional{
		ID:             f.ID,
		Name:           f.Name,
		Email:          f.Email,
		Profession:     f.Profession,
		IsActive:       f.IsActive,
		AvailableSlots: slots,
	}
}

// -------------------------- Appointment fixtures -------------------------

// AppointmentFixture represents a deterministic appointment.
type AppointmentFixture struct {
	ID             string
	UserID         string
	ProfessionalID string
	Date           string
	StartTime      string
	EndTime        string
	Status         application.AppointmentStatus
	CreatedAt      time.Time
}

// AppointmentOption configures the generated appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointmentFixture returns a confirmed appointment on the reference day.
func NewAppointmentFixture(opts ...AppointmentOption) AppointmentFixture {
	idx := atomic.AddUint64(&appointmentCounter, 1)
	fixture := AppointmentFixture{
		ID:             fmt.Sprintf("apt-%03d", idx),
		UserID:         "user-001",
		ProfessionalID: "pro-001",
		Date:           referenceTime.Format(time.DateOnly),
		StartTime:      "09:00",
		EndTime:        "10:00",
		Status:         application.StatusConfirmed,
		CreatedAt:      referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAppointmentUser sets the owning user.
func WithAppointmentUser(userID string) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.UserID = userID
	}
}

// WithAppointmentSlot copies the professional and time range from slot.
func WithAppointmentSlot(professionalID string, slot application.TimeSlot) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.ProfessionalID = professionalID
		f.Date = slot.Date
		f.StartTime = slot.StartTime
		f.EndTime = slot.EndTime
	}
}

// WithAppointmentStatus sets the status.
func WithAppointmentStatus(status application.AppointmentStatus) AppointmentOption {
	return func(f *AppointmentFixture) {
		f.Status = status
	}
}

// Application returns the fixture as an application.Appointment value.
func (f AppointmentFixture) Application() application.Appointment {
	return application.Appointment{
		ID:             f.ID,
		UserID:         f.UserID,
		ProfessionalID: f.ProfessionalID,
		Date:           f.Date,
		StartTime:      f.StartTime,
		EndTime:        f.EndTime,
		Status:         f.Status,
		CreatedAt:      f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Appointment value.
func (f AppointmentFixture) Persistence() persistence.Appointment {
	return persistence.Appointment{
		ID:             f.ID,
		UserID:         f.UserID,
		ProfessionalID: f.ProfessionalID,
		Date:           f.Date,
		StartTime:      f.StartTime,
		EndTime:        f.EndTime,
		Status:         string(f.Status),
		CreatedAt:      f.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
