package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EntityStore keeps the professional, appointment, and auth-user records as
// JSON documents in a KeyValueStore. Reads decode a fresh copy on every call
// and writes overwrite the whole collection.
type EntityStore struct {
	kv     KeyValueStore
	seeder *Seeder
	now    func() time.Time
}

// NewEntityStore constructs an EntityStore over kv. A nil seeder seeds in UTC
// and a nil clock falls back to time.Now.
func NewEntityStore(kv KeyValueStore, seeder *Seeder, now func() time.Time) *EntityStore {
	if seeder == nil {
		seeder = NewSeeder(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &EntityStore{kv: kv, seeder: seeder, now: now}
}

// Seed writes the sample collections for any collection key that is absent.
// Existing data is never touched.
func (s *EntityStore) Seed(ctx context.Context) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("entity store not configured")
	}
	reference := s.now()

	if _, ok, err := s.kv.Get(ctx, KeyProfessionals); err != nil {
		return fmt.Errorf("check professionals: %w", err)
	} else if !ok {
		if err := s.WriteProfessionals(ctx, s.seeder.Professionals(reference)); err != nil {
			return err
		}
	}

	if _, ok, err := s.kv.Get(ctx, KeyAppointments); err != nil {
		return fmt.Errorf("check appointments: %w", err)
	} else if !ok {
		if err := s.WriteAppointments(ctx, s.seeder.Appointments(reference)); err != nil {
			return err
		}
	}

	return nil
}

// ReadProfessionals returns the stored professionals, or the seeded defaults
// when nothing has been persisted yet.
func (s *EntityStore) ReadProfessionals(ctx context.Context) ([]Professional, error) {
	var professionals []Professional
	found, err := s.readJSON(ctx, KeyProfessionals, &professionals)
	if err != nil {
		return nil, err
	}
	if !found {
		return s.seeder.Professionals(s.now()), nil
	}
	return professionals, nil
}

// WriteProfessionals overwrites the professional collection.
func (s *EntityStore) WriteProfessionals(ctx context.Context, professionals []Professional) error {
	if professionals == nil {
		professionals = []Professional{}
	}
	return s.writeJSON(ctx, KeyProfessionals, professionals)
}

// ReadAppointments returns the stored appointments, or the seeded defaults
// when nothing has been persisted yet.
func (s *EntityStore) ReadAppointments(ctx context.Context) ([]Appointment, error) {
	var appointments []Appointment
	found, err := s.readJSON(ctx, KeyAppointments, &appointments)
	if err != nil {
		return nil, err
	}
	if !found {
		return s.seeder.Appointments(s.now()), nil
	}
	return appointments, nil
}

// WriteAppointments overwrites the appointment collection.
func (s *EntityStore) WriteAppointments(ctx context.Context, appointments []Appointment) error {
	if appointments == nil {
		appointments = []Appointment{}
	}
	return s.writeJSON(ctx, KeyAppointments, appointments)
}

// GetAuthUser returns the signed-in user or ErrNotFound.
func (s *EntityStore) GetAuthUser(ctx context.Context) (User, error) {
	var user User
	found, err := s.readJSON(ctx, KeyAuthUser, &user)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, ErrNotFound
	}
	return user, nil
}

// SetAuthUser replaces the signed-in user.
func (s *EntityStore) SetAuthUser(ctx context.Context, user User) error {
	return s.writeJSON(ctx, KeyAuthUser, user)
}

// ClearAuthUser removes the signed-in user. Clearing an absent user is not an error.
func (s *EntityStore) ClearAuthUser(ctx context.Context) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("entity store not configured")
	}
	if err := s.kv.Delete(ctx, KeyAuthUser); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %s: %w", KeyAuthUser, err)
	}
	return nil
}

func (s *EntityStore) readJSON(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil || s.kv == nil {
		return false, fmt.Errorf("entity store not configured")
	}
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}

func (s *EntityStore) writeJSON(ctx context.Context, key string, value any) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("entity store not configured")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
