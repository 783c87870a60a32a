package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/booking-portal/internal/persistence"
	"github.com/example/booking-portal/internal/persistence/appstore"
	"github.com/example/booking-portal/internal/persistence/memory"
	"github.com/example/booking-portal/internal/persistence/sqlite"
)

// StoreHarness exposes one backend at every layer: raw key-value access, the
// persisted entity store, and the application adapter.
type StoreHarness struct {
	KV       persistence.KeyValueStore
	Entities *persistence.EntityStore
	Store    *appstore.Store
}

func newHarness(tb testing.TB, kv persistence.KeyValueStore, clock *Clock) *StoreHarness {
	tb.Helper()
	if clock == nil {
		clock = NewClock(ReferenceTime())
	}
	entities := persistence.NewEntityStore(kv, nil, clock.NowFunc())
	tb.Cleanup(func() { _ = kv.Close() })
	return &StoreHarness{KV: kv, Entities: entities, Store: appstore.New(entities)}
}

// NewMemoryHarness returns an unseeded harness over the in-memory backend.
func NewMemoryHarness(tb testing.TB, clock *Clock) *StoreHarness {
	tb.Helper()
	return newHarness(tb, memory.Open(), clock)
}

// NewSQLiteHarness returns a harness over a migrated SQLite file in a temp dir.
func NewSQLiteHarness(tb testing.TB, clock *Clock) *StoreHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return newHarness(tb, storage, clock)
}

// Seed writes the sample collections.
func (h *StoreHarness) Seed(tb testing.TB) {
	tb.Helper()
	if err := h.Entities.Seed(context.Background()); err != nil {
		tb.Fatalf("failed to seed store: %v", err)
	}
}

// Load replaces both collections with the given fixtures.
func (h *StoreHarness) Load(tb testing.TB, professionals []ProfessionalFixture, appointments []AppointmentFixture) {
	tb.Helper()
	ctx := context.Background()

	pros := make([]persistence.Professional, 0, len(professionals))
	for _, p := range professionals {
		pros = append(pros, p.Persistence())
	}
	if err := h.Entities.WriteProfessionals(ctx, pros); err != nil {
		tb.Fatalf("failed to write professionals: %v", err)
	}

	apts := make([]persistence.Appointment, 0, len(appointments))
	for _, a := range appointments {
		apts = append(apts, a.Persistence())
	}
	if err := h.Entities.WriteAppointments(ctx, apts); err != nil {
		tb.Fatalf("failed to write appointments: %v", err)
	}
}
