// Package appstore adapts the persisted records to the application model.
package appstore

import (
	"context"
	"errors"
	"time"

	"github.com/example/booking-portal/internal/application"
	"github.com/example/booking-portal/internal/persistence"
)

// Repository is the persistence surface the adapter needs. *persistence.EntityStore satisfies it.
type Repository interface {
	persistence.ProfessionalRepository
	persistence.AppointmentRepository
	persistence.AuthUserRepository
}

// Store implements application.EntityStore and application.AuthUserStore.
type Store struct {
	repo Repository
}

var (
	_ application.EntityStore   = (*Store)(nil)
	_ application.AuthUserStore = (*Store)(nil)
)

// New wraps repo.
func New(repo Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) ReadProfessionals(ctx context.Context) ([]application.Professional, error) {
	records, err := s.repo.ReadProfessionals(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]application.Professional, 0, len(records))
	for _, r := range records {
		out = append(out, toApplicationProfessional(r))
	}
	return out, nil
}

func (s *Store) WriteProfessionals(ctx context.Context, professionals []application.Professional) error {
	records := make([]persistence.Professional, 0, len(professionals))
	for _, p := range professionals {
		records = append(records, toPersistenceProfessional(p))
	}
	return mapError(s.repo.WriteProfessionals(ctx, records))
}

func (s *Store) ReadAppointments(ctx context.Context) ([]application.Appointment, error) {
	records, err := s.repo.ReadAppointments(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]application.Appointment, 0, len(records))
	for _, r := range records {
		out = append(out, toApplicationAppointment(r))
	}
	return out, nil
}

func (s *Store) WriteAppointments(ctx context.Context, appointments []application.Appointment) error {
	records := make([]persistence.Appointment, 0, len(appointments))
	for _, a := range appointments {
		records = append(records, toPersistenceAppointment(a))
	}
	return mapError(s.repo.WriteAppointments(ctx, records))
}

func (s *Store) GetAuthUser(ctx context.Context) (application.User, error) {
	record, err := s.repo.GetAuthUser(ctx)
	if err != nil {
		return application.User{}, mapError(err)
	}
	return application.User{
		ID:     record.ID,
		Name:   record.Name,
		Email:  record.Email,
		Role:   application.Role(record.Role),
		Avatar: record.Avatar,
	}, nil
}

func (s *Store) SetAuthUser(ctx context.Context, user application.User) error {
	return mapError(s.repo.SetAuthUser(ctx, persistence.User{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		Avatar: user.Avatar,
	}))
}

func (s *Store) ClearAuthUser(ctx context.Context) error {
	return mapError(s.repo.ClearAuthUser(ctx))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

func toApplicationProfessional(r persistence.Professional) application.Professional {
	slots := make([]application.TimeSlot, 0, len(r.AvailableSlots))
	for _, s := range r.AvailableSlots {
		slots = append(slots, application.TimeSlot{
			ID:        s.ID,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsBooked:  s.IsBooked,
		})
	}
	return application.Professional{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Profession:     r.Profession,
		Experience:     r.Experience,
		Rating:         r.Rating,
		Description:    r.Description,
		Avatar:         r.Avatar,
		AvailableSlots: slots,
		IsActive:       r.IsActive,
	}
}

func toPersistenceProfessional(p application.Professional) persistence.Professional {
	slots := make([]persistence.TimeSlot, 0, len(p.AvailableSlots))
	for _, s := range p.AvailableSlots {
		slots = append(slots, persistence.TimeSlot{
			ID:        s.ID,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsBooked:  s.IsBooked,
		})
	}
	return persistence.Professional{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Profession:     p.Profession,
		Experience:     p.Experience,
		Rating:         p.Rating,
		Description:    p.Description,
		Avatar:         p.Avatar,
		AvailableSlots: slots,
		IsActive:       p.IsActive,
	}
}

// toApplicationAppointment leaves CreatedAt zero when the stored timestamp does not parse.
func toApplicationAppointment(r persistence.Appointment) application.Appointment {
	createdAt, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return application.Appointment{
		ID:                     r.ID,
		UserID:                 r.UserID,
		ProfessionalID:         r.ProfessionalID,
		ProfessionalName:       r.ProfessionalName,
		ProfessionalProfession: r.ProfessionalProfession,
		Date:                   r.Date,
		StartTime:              r.StartTime,
		EndTime:                r.EndTime,
		Status:                 application.AppointmentStatus(r.Status),
		CreatedAt:              createdAt,
	}
}

func toPersistenceAppointment(a application.Appointment) persistence.Appointment {
	var createdAt string
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return persistence.Appointment{
		ID:                     a.ID,
		UserID:                 a.UserID,
		ProfessionalID:         a.ProfessionalID,
		ProfessionalName:       a.ProfessionalName,
		ProfessionalProfession: a.ProfessionalProfession,
		Date:                   a.Date,
		StartTime:              a.StartTime,
		EndTime:                a.EndTime,
		Status:                 string(a.Status),
		CreatedAt:              createdAt,
	}
}
