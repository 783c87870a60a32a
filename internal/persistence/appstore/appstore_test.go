package appstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/booking-portal/internal/application"
	"github.com/example/booking-portal/internal/persistence"
	"github.com/example/booking-portal/internal/persistence/memory"
)

func newStore(t *testing.T) (*Store, *memory.Storage) {
	t.Helper()
	kv := memory.Open()
	reference := time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)
	entities := persistence.NewEntityStore(kv, nil, func() time.Time { return reference })
	return New(entities), kv
}

func TestStoreReadsSeededCollections(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	professionals, err := store.ReadProfessionals(ctx)
	if err != nil {
		t.Fatalf("ReadProfessionals returned error: %v", err)
	}
	if len(professionals) != 4 || professionals[0].ID != "1" || !professionals[0].IsActive {
		t.Fatalf("unexpected professionals %+v", professionals)
	}

	appointments, err := store.ReadAppointments(ctx)
	if err != nil {
		t.Fatalf("ReadAppointments returned error: %v", err)
	}
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appointments))
	}
	if appointments[0].Status != application.StatusConfirmed || appointments[1].Status != application.StatusPending {
		t.Fatalf("unexpected statuses %q %q", appointments[0].Status, appointments[1].Status)
	}
	if !appointments[0].CreatedAt.Equal(time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created at %v", appointments[0].CreatedAt)
	}
}

func TestStoreWritesRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()
	created := time.Date(2024, time.March, 4, 9, 30, 0, 123000000, time.UTC)

	in := []application.Appointment{{
		ID:             "apt-1709544600123",
		UserID:         "user-9",
		ProfessionalID: "2",
		Date:           "2024-03-05",
		StartTime:      "14:00",
		EndTime:        "15:00",
		Status:         application.StatusConfirmed,
		CreatedAt:      created,
	}}
	if err := store.WriteAppointments(ctx, in); err != nil {
		t.Fatalf("WriteAppointments returned error: %v", err)
	}
	out, err := store.ReadAppointments(ctx)
	if err != nil {
		t.Fatalf("ReadAppointments returned error: %v", err)
	}
	if len(out) != 1 || out[0].ID != in[0].ID || !out[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected appointments %+v", out)
	}

	professionals, _ := store.ReadProfessionals(ctx)
	professionals[1].IsActive = false
	professionals[1].AvailableSlots[0].IsBooked = true
	if err := store.WriteProfessionals(ctx, professionals); err != nil {
		t.Fatalf("WriteProfessionals returned error: %v", err)
	}
	reread, _ := store.ReadProfessionals(ctx)
	if reread[1].IsActive || !reread[1].AvailableSlots[0].IsBooked {
		t.Fatalf("professional changes not persisted: %+v", reread[1])
	}
}

func TestStoreAuthUser(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	if _, err := store.GetAuthUser(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected application.ErrNotFound, got %v", err)
	}

	user := application.User{ID: "user-1", Name: "jane", Email: "jane@example.com", Role: application.RoleProfessional}
	if err := store.SetAuthUser(ctx, user); err != nil {
		t.Fatalf("SetAuthUser returned error: %v", err)
	}
	got, err := store.GetAuthUser(ctx)
	if err != nil {
		t.Fatalf("GetAuthUser returned error: %v", err)
	}
	if got != user {
		t.Fatalf("expected %+v, got %+v", user, got)
	}

	if err := store.ClearAuthUser(ctx); err != nil {
		t.Fatalf("ClearAuthUser returned error: %v", err)
	}
	if _, err := store.GetAuthUser(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected application.ErrNotFound after clear, got %v", err)
	}
}

func TestStoreUnparseableCreatedAt(t *testing.T) {
	t.Parallel()

	got := toApplicationAppointment(persistence.Appointment{ID: "apt-x", CreatedAt: "yesterday"})
	if !got.CreatedAt.IsZero() {
		t.Fatalf("expected zero time, got %v", got.CreatedAt)
	}
	if back := toPersistenceAppointment(got); back.CreatedAt != "" {
		t.Fatalf("expected empty created at, got %q", back.CreatedAt)
	}
}
