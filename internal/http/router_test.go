package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/booking-portal/internal/application"
)

type testDeps struct {
	auth          *authServiceStub
	professionals *professionalServiceStub
	bookings      *bookingServiceStub
	dashboards    *dashboardServiceStub
	admin         *adminServiceStub
	reconcile     *reconcileServiceStub
	observer      *observerStub
	limiter       *RateLimiter
	health        func(context.Context) error
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:          &authServiceStub{},
		professionals: &professionalServiceStub{professionals: sampleProfessionals()},
		bookings:      &bookingServiceStub{},
		dashboards:    &dashboardServiceStub{},
		admin:         &adminServiceStub{professional: sampleProfessionals()[0]},
		reconcile:     &reconcileServiceStub{},
		observer:      &observerStub{},
	}
}

func (d *testDeps) router() http.Handler {
	logger := discardLogger()
	return NewRouter(RouterConfig{
		Auth:          NewAuthHandler(d.auth, logger),
		Professionals: NewProfessionalHandler(d.professionals, d.bookings, logger),
		Dashboards:    NewDashboardHandler(d.dashboards, logger),
		Admin:         NewAdminHandler(d.admin, d.reconcile, logger),
		Sessions:      defaultSessions(),
		AuthLimiter:   d.limiter,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "metrics")
		}),
		Health:     d.health,
		Logger:     logger,
		Middleware: []func(http.Handler) http.Handler{RequestLogger(logger, d.observer)},
	})
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
}

func TestPublicRoutes(t *testing.T) {
	t.Parallel()

	t.Run("healthz reports ok", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestDeps().router(), http.MethodGet, "/healthz", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("healthz reports store failure", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.health = func(context.Context) error { return errors.New("closed") }
		rec := do(t, deps.router(), http.MethodGet, "/healthz", "", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("metrics is mounted", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestDeps().router(), http.MethodGet, "/metrics", "", "")
		if rec.Code != http.StatusOK || rec.Body.String() != "metrics" {
			t.Fatalf("unexpected metrics response %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestRoleGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "anonymous listing", method: http.MethodGet, path: "/professionals", want: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodGet, path: "/me", token: "forged", want: http.StatusUnauthorized},
		{name: "user listing", method: http.MethodGet, path: "/professionals", token: "user-token", want: http.StatusOK},
		{name: "user dashboard", method: http.MethodGet, path: "/dashboard", token: "user-token", want: http.StatusOK},
		{name: "user on admin dashboard", method: http.MethodGet, path: "/admin/dashboard", token: "user-token", want: http.StatusForbidden},
		{name: "user on professional dashboard", method: http.MethodGet, path: "/professional/dashboard", token: "user-token", want: http.StatusForbidden},
		{name: "professional dashboard", method: http.MethodGet, path: "/professional/dashboard", token: "professional-token", want: http.StatusOK},
		{name: "professional on listing", method: http.MethodGet, path: "/professionals", token: "professional-token", want: http.StatusForbidden},
		{name: "admin dashboard", method: http.MethodGet, path: "/admin/dashboard", token: "admin-token", want: http.StatusOK},
		{name: "admin on user dashboard", method: http.MethodGet, path: "/dashboard", token: "admin-token", want: http.StatusForbidden},
		{name: "admin on booking", method: http.MethodPost, path: "/professionals/1/bookings", token: "admin-token", want: http.StatusForbidden},
	}

	router := newTestDeps().router()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, router, tc.method, tc.path, tc.token, "")
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHomeAndMe(t *testing.T) {
	t.Parallel()

	router := newTestDeps().router()
	for token, want := range map[string]string{
		"user-token":         "/dashboard",
		"professional-token": "/professional",
		"admin-token":        "/admin",
	} {
		rec := do(t, router, http.MethodGet, "/home", token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", token, rec.Code)
		}
		var resp homeResponse
		decodeBody(t, rec, &resp)
		if resp.View != want {
			t.Fatalf("%s: expected view %s, got %s", token, want, resp.View)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "admin-token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for cookie session, got %d", rec.Code)
	}
	var me principalDTO
	decodeBody(t, rec, &me)
	if me.UserID != adminPrincipal.UserID || me.Role != "admin" {
		t.Fatalf("unexpected principal %+v", me)
	}
}

func TestAuthRoutes(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		expires := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
		deps.auth.result = application.AuthResult{
			User:      application.User{ID: "user-1709544600000", Name: "jane", Email: "jane@example.com", Role: application.RoleUser},
			Token:     "signed",
			ExpiresAt: expires,
		}

		rec := do(t, deps.router(), http.MethodPost, "/sessions", "", `{"email":" Jane@Example.com ","password":"pw","role":"user"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Session-Token"); got != "signed" {
			t.Fatalf("expected session header, got %q", got)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != "session_token" || cookies[0].Value != "signed" {
			t.Fatalf("unexpected cookies %+v", cookies)
		}
		var resp sessionResponse
		decodeBody(t, rec, &resp)
		if resp.User.Name != "jane" || resp.ExpiresAt != "2024-03-05T09:30:00Z" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if deps.auth.lastLogin.Email != "jane@example.com" || deps.auth.lastLogin.Role != "user" {
			t.Fatalf("unexpected login params %+v", deps.auth.lastLogin)
		}
	})

	t.Run("signup validation errors are 422 with fields", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.auth.err = &application.ValidationError{FieldErrors: map[string]string{"confirm_password": "passwords do not match"}}

		rec := do(t, deps.router(), http.MethodPost, "/signup", "", `{"name":"Jane","email":"jane@example.com","password":"a","confirm_password":"b","role":"user"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Errors["confirm_password"] != "passwords do not match" {
			t.Fatalf("unexpected field errors %+v", resp.Errors)
		}
		if deps.auth.lastSignup.ConfirmPassword != "b" {
			t.Fatalf("confirm password not forwarded: %+v", deps.auth.lastSignup)
		}
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		t.Parallel()
		rec := do(t, newTestDeps().router(), http.MethodPost, "/sessions", "", `{`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("logout revokes the presented token", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		rec := do(t, deps.router(), http.MethodDelete, "/sessions/current", "user-token", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(deps.auth.loggedOut) != 1 || deps.auth.loggedOut[0] != "user-token" {
			t.Fatalf("unexpected logout calls %v", deps.auth.loggedOut)
		}
	})

	t.Run("login is rate limited per client", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.limiter = NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1}, discardLogger())
		t.Cleanup(deps.limiter.Stop)
		router := deps.router()

		first := do(t, router, http.MethodPost, "/sessions", "", `{"email":"a@b.c","password":"p","role":"user"}`)
		if first.Code != http.StatusCreated {
			t.Fatalf("expected first login to pass, got %d", first.Code)
		}
		second := do(t, router, http.MethodPost, "/signup", "", `{}`)
		if second.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", second.Code)
		}
		if second.Header().Get("Retry-After") == "" {
			t.Fatal("expected Retry-After header")
		}
	})
}

func TestBookingRoute(t *testing.T) {
	t.Parallel()

	t.Run("created appointment", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.bookings.result = application.BookingResult{
			Appointment: application.Appointment{
				ID:             "apt-1709544600000",
				UserID:         "user-1",
				ProfessionalID: "1",
				Date:           "2024-03-04",
				StartTime:      "09:00",
				EndTime:        "10:00",
				Status:         application.StatusConfirmed,
				CreatedAt:      time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
			},
		}

		rec := do(t, deps.router(), http.MethodPost, "/professionals/1/bookings", "user-token", `{"slot_id":"1-0-0"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp bookingResponse
		decodeBody(t, rec, &resp)
		if resp.Appointment.Status != "confirmed" || resp.SlotPersisted {
			t.Fatalf("unexpected response %+v", resp)
		}
		if deps.bookings.last.ProfessionalID != "1" || deps.bookings.last.SlotID != "1-0-0" || deps.bookings.last.Principal.UserID != "user-1" {
			t.Fatalf("unexpected book params %+v", deps.bookings.last)
		}
	})

	errorCases := []struct {
		err  error
		want int
	}{
		{err: &application.ValidationError{FieldErrors: map[string]string{"slot_id": "required"}}, want: http.StatusUnprocessableEntity},
		{err: application.ErrUnauthorized, want: http.StatusForbidden},
		{err: fmt.Errorf("lookup: %w", application.ErrNotFound), want: http.StatusNotFound},
		{err: application.ErrSlotUnavailable, want: http.StatusConflict},
		{err: application.ErrBookingIncomplete, want: http.StatusBadRequest},
		{err: fmt.Errorf("wait: %w", application.ErrOperationTimeout), want: http.StatusGatewayTimeout},
		{err: unexpectedError{}, want: http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		tc := tc
		t.Run(fmt.Sprintf("maps %v", tc.err), func(t *testing.T) {
			t.Parallel()
			deps := newTestDeps()
			deps.bookings.err = tc.err
			rec := do(t, deps.router(), http.MethodPost, "/professionals/1/bookings", "user-token", `{"slot_id":"1-0-0"}`)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusInternalServerError {
				var resp errorResponse
				decodeBody(t, rec, &resp)
				if resp.Message != "operation failed" {
					t.Fatalf("expected generic message, got %q", resp.Message)
				}
			}
		})
	}
}

func TestProfessionalRoutes(t *testing.T) {
	t.Parallel()

	deps := newTestDeps()
	router := deps.router()

	rec := do(t, router, http.MethodGet, "/professionals?q=CARDIO", "user-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list listProfessionalsResponse
	decodeBody(t, rec, &list)
	if len(list.Professionals) != 1 || list.Professionals[0].ID != "1" {
		t.Fatalf("unexpected listing %+v", list.Professionals)
	}

	rec = do(t, router, http.MethodGet, "/professionals/1/availability", "user-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var avail availabilityResponse
	decodeBody(t, rec, &avail)
	if avail.OpenSlots != 2 || len(avail.Dates) != 2 || avail.Dates[0].Date != "2024-03-04" {
		t.Fatalf("unexpected availability %+v", avail)
	}

	rec = do(t, router, http.MethodGet, "/professionals/missing", "user-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	t.Run("set active requires is_active", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		rec := do(t, deps.router(), http.MethodPut, "/admin/professionals/1/active", "admin-token", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("set active forwards the flag", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		rec := do(t, deps.router(), http.MethodPut, "/admin/professionals/1/active", "admin-token", `{"is_active":false}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deps.admin.lastActive.ProfessionalID != "1" || deps.admin.lastActive.Active {
			t.Fatalf("unexpected params %+v", deps.admin.lastActive)
		}
		var resp professionalResponse
		decodeBody(t, rec, &resp)
		if resp.Professional.IsActive {
			t.Fatal("expected professional to be inactive")
		}
	})

	t.Run("toggle", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		rec := do(t, deps.router(), http.MethodPost, "/admin/professionals/1/toggle", "admin-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(deps.admin.toggled) != 1 || deps.admin.toggled[0] != "1" {
			t.Fatalf("unexpected toggles %v", deps.admin.toggled)
		}
	})

	t.Run("csv export", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.admin.csv = "id,user_id\napt-1,user-1\n"
		rec := do(t, deps.router(), http.MethodGet, "/admin/appointments.csv", "admin-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Fatalf("unexpected content type %q", ct)
		}
		if rec.Body.String() != deps.admin.csv {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("csv export failure is json", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.admin.err = unexpectedError{}
		rec := do(t, deps.router(), http.MethodGet, "/admin/appointments.csv", "admin-token", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("unexpected content type %q", ct)
		}
	})

	t.Run("reconciliation", func(t *testing.T) {
		t.Parallel()
		deps := newTestDeps()
		deps.reconcile.report = application.ReconciliationReport{
			GeneratedAt:  time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
			Appointments: 1,
			Issues: []application.ReconciliationIssue{
				{Kind: "unmarked_booking", ProfessionalID: "1", SlotID: "1-0-0", AppointmentIDs: []string{"apt-1"}},
			},
		}
		rec := do(t, deps.router(), http.MethodGet, "/admin/reconciliation", "admin-token", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp reconciliationResponse
		decodeBody(t, rec, &resp)
		if resp.Counts["unmarked_booking"] != 1 || len(resp.Issues) != 1 || resp.GeneratedAt != "2024-03-04T09:30:00Z" {
			t.Fatalf("unexpected report %+v", resp)
		}
	})
}
