package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_NilAndEmpty(t *testing.T) {
	t.Parallel()

	var nilErr *ValidationError
	if nilErr.Error() != "" || nilErr.HasErrors() {
		t.Fatalf("nil validation error should be empty")
	}
	if (&ValidationError{}).HasErrors() {
		t.Fatalf("empty validation error should report no fields")
	}
}

func TestValidationError_MergeKeepsBothSides(t *testing.T) {
	t.Parallel()

	_, creds := validateCredentials("not-an-email", "pw", "guest")
	creds.merge(validateProfile("", "pw", "other"))
	creds.merge(nil)

	want := map[string]string{
		"email":            "email is invalid",
		"role":             "role must be user, professional, or admin",
		"name":             "name is required",
		"confirm_password": "passwords do not match",
	}
	if len(creds.FieldErrors) != len(want) {
		t.Fatalf("field errors = %v", creds.FieldErrors)
	}
	for field, msg := range want {
		if got := creds.FieldErrors[field]; got != msg {
			t.Errorf("%s: expected %q, got %q", field, msg, got)
		}
	}
}

func TestSignupReportsEveryFieldError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params SignupParams
		fields []string
	}{
		{
			name:   "confirmation mismatch",
			params: SignupParams{Name: "Jane", Email: "jane@example.com", Password: "pw", ConfirmPassword: "wp", Role: "user"},
			fields: []string{"confirm_password"},
		},
		{
			name:   "unknown role",
			params: SignupParams{Name: "Jane", Email: "jane@example.com", Password: "pw", ConfirmPassword: "pw", Role: "owner"},
			fields: []string{"role"},
		},
		{
			name:   "credentials and profile together",
			params: SignupParams{Email: "", Password: "", ConfirmPassword: "", Role: ""},
			fields: []string{"name", "email", "password", "confirm_password", "role"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			users := &authUserStoreStub{}
			svc := NewAuthService(users, newTestIssuer(t, fixedNow), nil, fixedNow, Latency{})
			_, err := svc.Signup(context.Background(), tc.params)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(vErr.FieldErrors) != len(tc.fields) {
				t.Fatalf("expected fields %v, got %v", tc.fields, vErr.FieldErrors)
			}
			for _, field := range tc.fields {
				if _, ok := vErr.FieldErrors[field]; !ok {
					t.Errorf("missing field error %q in %v", field, vErr.FieldErrors)
				}
			}
			if ErrorKind(fmt.Errorf("signup: %w", err)) != "validation" {
				t.Errorf("wrapped validation error should keep its kind")
			}
			if users.user != nil {
				t.Errorf("invalid signup must not persist an auth user")
			}
		})
	}
}
