package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/booking-portal/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		cookieToken    *http.Cookie
		headerToken    string
		validatorErr   error
		expectedStatus int
		expectedUserID string
	}{
		{
			name:           "missing credentials",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non bearer header",
			headerToken:    "Basic dXNlcg==",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "revoked session",
			cookieToken:    &http.Cookie{Name: "session_token", Value: "revoked-token"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "validator failure",
			headerToken:    "Bearer user-token",
			validatorErr:   errors.New("keystore offline"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "bearer token",
			headerToken:    "Bearer user-token",
			expectedStatus: http.StatusOK,
			expectedUserID: "user-1",
		},
		{
			name:           "cookie token",
			cookieToken:    &http.Cookie{Name: "session_token", Value: "admin-token"},
			expectedStatus: http.StatusOK,
			expectedUserID: "user-3",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.cookieToken != nil {
				req.AddCookie(tc.cookieToken)
			}
			if tc.headerToken != "" {
				req.Header.Set("Authorization", tc.headerToken)
			}

			validator := defaultSessions()
			validator.err = tc.validatorErr

			var seen application.Principal
			handler := RequireSession(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			if recorder.Code != tc.expectedStatus {
				t.Fatalf("expected %d, got %d", tc.expectedStatus, recorder.Code)
			}
			if seen.UserID != tc.expectedUserID {
				t.Fatalf("expected principal %q, got %q", tc.expectedUserID, seen.UserID)
			}
		})
	}
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	t.Parallel()

	deps := newTestDeps()
	router := deps.router()

	rec := do(t, router, http.MethodGet, "/professionals/1", "user-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	deps.observer.mu.Lock()
	defer deps.observer.mu.Unlock()
	if len(deps.observer.routes) != 1 {
		t.Fatalf("expected one observation, got %d", len(deps.observer.routes))
	}
	if got := deps.observer.routes[0]; !strings.HasPrefix(got, "/professionals/{id}") {
		t.Fatalf("unexpected route pattern %q", got)
	}
	if deps.observer.status[0] != http.StatusOK {
		t.Fatalf("unexpected status %d", deps.observer.status[0])
	}
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(discardLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("expected request logger in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("expected request id to be echoed, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("limits per client address", func(t *testing.T) {
		t.Parallel()
		rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2}, discardLogger())
		t.Cleanup(rl.Stop)

		handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		send := func(addr string) int {
			req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		for i := 0; i < 2; i++ {
			if code := send("10.0.0.1:1234"); code != http.StatusNoContent {
				t.Fatalf("request %d: expected 204, got %d", i, code)
			}
		}
		if code := send("10.0.0.1:9999"); code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for same host, got %d", code)
		}
		if code := send("10.0.0.2:1234"); code != http.StatusNoContent {
			t.Fatalf("expected other client to pass, got %d", code)
		}
		if rl.ClientCount() != 2 {
			t.Fatalf("expected 2 tracked clients, got %d", rl.ClientCount())
		}
	})

	t.Run("cleanup drops idle clients", func(t *testing.T) {
		t.Parallel()
		rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute}, discardLogger())
		t.Cleanup(rl.Stop)

		rl.limiter("10.0.0.1")
		rl.cleanup(time.Now().Add(time.Minute))
		if rl.ClientCount() != 1 {
			t.Fatalf("expected recent client to be kept, got %d", rl.ClientCount())
		}
		rl.cleanup(time.Now().Add(3 * time.Minute))
		if rl.ClientCount() != 0 {
			t.Fatalf("expected idle client to be dropped, got %d", rl.ClientCount())
		}
	})
}
