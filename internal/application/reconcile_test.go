package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBuildReconciliationReport(t *testing.T) {
	t.Parallel()

	professionals := sampleProfessionals()
	appointments := append(sampleAppointments(),
		Appointment{ID: "apt-3", UserID: "u", ProfessionalID: "2", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00", Status: StatusConfirmed},
		Appointment{ID: "apt-4", UserID: "u", ProfessionalID: "1", Date: "2024-03-05", StartTime: "09:00", EndTime: "10:00", Status: StatusCancelled},
	)

	report := BuildReconciliationReport(professionals, appointments)
	if report.Slots != 4 || report.BookedSlots != 1 || report.Appointments != 4 {
		t.Fatalf("unexpected totals %+v", report)
	}

	counts := report.Counts()
	if counts["unmarked_booking"] != 1 || counts["double_booked"] != 1 || counts["orphan_booked_slot"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
	for _, issue := range report.Issues {
		if issue.ProfessionalID != "2" || issue.SlotID != "2-0-0" || len(issue.AppointmentIDs) != 2 {
			t.Fatalf("unexpected issue %+v", issue)
		}
	}
}

func TestReconcileService(t *testing.T) {
	t.Parallel()

	t.Run("caches until invalidated", func(t *testing.T) {
		t.Parallel()

		store := &entityStoreStub{professionals: sampleProfessionals(), appointments: sampleAppointments()}
		svc := NewReconcileService(store, fixedNow, time.Minute)

		first, err := svc.ReconcileSlots(context.Background(), adminPrincipal)
		if err != nil {
			t.Fatalf("ReconcileSlots returned error: %v", err)
		}
		readsAfterFirst := store.reads

		if _, err := svc.ReconcileSlots(context.Background(), adminPrincipal); err != nil {
			t.Fatalf("ReconcileSlots returned error: %v", err)
		}
		if store.reads != readsAfterFirst {
			t.Fatal("expected cached report to be served")
		}

		svc.Invalidate()
		second, err := svc.ReconcileSlots(context.Background(), adminPrincipal)
		if err != nil {
			t.Fatalf("ReconcileSlots returned error: %v", err)
		}
		if store.reads == readsAfterFirst {
			t.Fatal("expected fresh report after invalidation")
		}
		if !second.GeneratedAt.Equal(first.GeneratedAt) || len(second.Issues) != len(first.Issues) {
			t.Fatalf("expected identical report, got %+v vs %+v", first, second)
		}
	})

	t.Run("requires admin", func(t *testing.T) {
		t.Parallel()

		svc := NewReconcileService(&entityStoreStub{}, fixedNow, time.Minute)
		if _, err := svc.ReconcileSlots(context.Background(), userPrincipal("u")); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("propagates store failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("read failed")
		svc := NewReconcileService(&entityStoreStub{readProfessionalsErr: expected}, fixedNow, time.Minute)
		if _, err := svc.Run(context.Background()); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}

func TestReportCacheExpiresAndCopies(t *testing.T) {
	current := referenceTime
	cache := newReportCache(time.Second, func() time.Time { return current })

	cache.Store(ReconciliationReport{Issues: []ReconciliationIssue{{Kind: "double_booked", AppointmentIDs: []string{"apt-1"}}}})

	cached, ok := cache.Get()
	if !ok {
		t.Fatalf("expected cache hit")
	}
	cached.Issues[0].AppointmentIDs[0] = "mutated"

	again, ok := cache.Get()
	if !ok || again.Issues[0].AppointmentIDs[0] != "apt-1" {
		t.Fatalf("expected cache to return independent copy, got %+v", again)
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get(); ok {
		t.Fatalf("expected cache entry to expire")
	}
}
