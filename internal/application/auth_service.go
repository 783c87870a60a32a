package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// AuthService signs users in and out. Accounts are not checked against a
// credential store: any well-formed login produces a user of the chosen role.
type AuthService struct {
	users   AuthUserStore
	tokens  *TokenIssuer
	events  EventPublisher
	latency Latency
	now     func() time.Time
	logger  *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users AuthUserStore, tokens *TokenIssuer, events EventPublisher, now func() time.Time, latency Latency) *AuthService {
	return NewAuthServiceWithLogger(users, tokens, events, now, latency, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users AuthUserStore, tokens *TokenIssuer, events EventPublisher, now func() time.Time, latency Latency, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		events:  defaultPublisher(events),
		latency: latency,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login signs in with the given email and role. The display name is the
// local part of the email address.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result AuthResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Login", "role", params.Role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "login succeeded")
	}()

	role, vErr := validateCredentials(email, params.Password, params.Role)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	result, err = s.signIn(ctx, emailLocalPart(email), email, role)
	return
}

// Signup registers a new user with the given name and signs them in.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (result AuthResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	name := strings.TrimSpace(params.Name)
	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Signup", "role", params.Role)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "signup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "signup succeeded")
	}()

	role, vErr := validateCredentials(email, params.Password, params.Role)
	vErr.merge(validateProfile(name, params.Password, params.ConfirmPassword))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	result, err = s.signIn(ctx, name, email, role)
	return
}

// validateCredentials checks the fields login and signup share.
func validateCredentials(email, password, rawRole string) (Role, *ValidationError) {
	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	} else if !validEmail(email) {
		vErr.add("email", "email is invalid")
	}
	if password == "" {
		vErr.add("password", "password is required")
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		vErr.add("role", "role must be user, professional, or admin")
	}
	return role, vErr
}

// validateProfile checks the signup-only fields.
func validateProfile(name, password, confirmPassword string) *ValidationError {
	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if confirmPassword == "" {
		vErr.add("confirm_password", "password confirmation is required")
	} else if password != confirmPassword {
		vErr.add("confirm_password", "passwords do not match")
	}
	return vErr
}

func (s *AuthService) signIn(ctx context.Context, name, email string, role Role) (AuthResult, error) {
	if s.users == nil {
		return AuthResult{}, fmt.Errorf("auth user store not configured")
	}
	if s.tokens == nil {
		return AuthResult{}, fmt.Errorf("token issuer not configured")
	}

	if err := s.latency.Wait(ctx); err != nil {
		return AuthResult{}, err
	}

	user := User{
		ID:    fmt.Sprintf("user-%d", s.now().UnixMilli()),
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err := s.users.SetAuthUser(ctx, user); err != nil {
		return AuthResult{}, fmt.Errorf("store auth user: %w", err)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}

	s.events.UserSignedIn(ctx, user)
	return AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout clears the signed-in user and revokes token when one is given.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("auth user store not configured")
	}

	logger := s.loggerWith(ctx, "Logout")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "logout succeeded")
	}()

	if s.tokens != nil && token != "" {
		s.tokens.Revoke(token)
	}
	if err = s.users.ClearAuthUser(ctx); err != nil {
		err = fmt.Errorf("clear auth user: %w", err)
	}
	return
}

// CurrentUser restores the persisted signed-in user. It returns ErrNotFound
// after logout.
func (s *AuthService) CurrentUser(ctx context.Context) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AuthService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("auth user store not configured")
	}
	user, err := s.users.GetAuthUser(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("load auth user: %w", err)
	}
	return user, nil
}

// ValidateSession verifies a session token and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.tokens == nil {
		err = fmt.Errorf("token issuer not configured")
		return
	}

	principal, err = s.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		s.loggerWith(ctx, "ValidateSession").DebugContext(ctx, "session rejected", "error", err)
	}
	return
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t<>")
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}
