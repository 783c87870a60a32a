package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/example/booking-portal/internal/config"
	"github.com/example/booking-portal/internal/persistence"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func testConfig(driver string) config.Config {
	return config.Config{
		StoreDriver:       driver,
		SessionSecret:     "main-test-secret",
		SessionTTL:        time.Hour,
		OperationTimeout:  5 * time.Second,
		DemoUserID:        "user-1",
		ReconcileCacheTTL: time.Minute,
		AuthRatePerSecond: 100,
		AuthRateBurst:     100,
		Location:          time.UTC,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, handler http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNewAppServesBookingFlow(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(config.StoreMemory), quietLogger())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	if a.scheduler.Enabled() {
		t.Fatalf("expected reconciliation job to be disabled without a schedule")
	}

	rec := do(t, a.handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = do(t, a.handler, http.MethodPost, "/sessions", "", map[string]string{
		"email": "alice@example.com", "password": "secret", "role": "user",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("login: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil || session.Token == "" {
		t.Fatalf("decode session: %v (%s)", err, rec.Body.String())
	}

	rec = do(t, a.handler, http.MethodGet, "/professionals/1", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get professional: expected 200, got %d", rec.Code)
	}
	var detail struct {
		Professional struct {
			AvailableSlots []struct {
				ID string `json:"id"`
			} `json:"available_slots"`
		} `json:"professional"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode professional: %v", err)
	}
	if len(detail.Professional.AvailableSlots) == 0 {
		t.Fatalf("expected seeded slots for professional 1")
	}

	slotID := detail.Professional.AvailableSlots[0].ID
	rec = do(t, a.handler, http.MethodPost, "/professionals/1/bookings", session.Token, map[string]string{"slot_id": slotID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, a.handler, http.MethodGet, "/admin/dashboard", session.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin dashboard as user: expected 403, got %d", rec.Code)
	}

	rec = do(t, a.handler, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`booking_sign_ins_total{role="user"} 1`,
		`booking_appointments_booked_total{slot_persisted="false"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewAppRejectsBadSchedule(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.ReconcileSchedule = "not a schedule"

	if _, err := newApp(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatalf("expected invalid schedule to fail")
	}
}

func TestOpenStoreDrivers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		name string
		cfg  func() config.Config
	}{
		{"memory", func() config.Config { return testConfig(config.StoreMemory) }},
		{"sqlite", func() config.Config {
			cfg := testConfig(config.StoreSQLite)
			cfg.SQLiteDSN = filepath.Join(dir, "booking.db")
			return cfg
		}},
		{"bolt", func() config.Config {
			cfg := testConfig(config.StoreBolt)
			cfg.BoltPath = filepath.Join(dir, "booking.bolt")
			return cfg
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			kv, err := openStore(ctx, tc.cfg(), quietLogger())
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer kv.Close()

			if err := kv.Set(ctx, persistence.KeyProfessionals, []byte("[]")); err != nil {
				t.Fatalf("set: %v", err)
			}
			value, ok, err := kv.Get(ctx, persistence.KeyProfessionals)
			if err != nil || !ok || string(value) != "[]" {
				t.Fatalf("get: value=%q ok=%v err=%v", value, ok, err)
			}
			if err := healthCheck(kv)(ctx); err != nil {
				t.Fatalf("health check: %v", err)
			}
		})
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := openStore(context.Background(), testConfig("redis"), quietLogger()); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}
