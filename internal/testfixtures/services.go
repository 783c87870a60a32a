package testfixtures

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/example/booking-portal/internal/application"
)

// SessionSecret signs tokens issued by factory-built services.
const SessionSecret = "testfixtures-session-secret"

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	// WriteLock is handed to every service that rewrites the professionals
	// collection, the way cmd/booking wires them.
	WriteLock *sync.Mutex
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("jti"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("jti")
	}
	if factory.WriteLock == nil {
		factory.WriteLock = &sync.Mutex{}
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// NewTokenIssuer returns an issuer on the factory clock whose token ids come
// from the factory generator.
func (f *ServiceFactory) NewTokenIssuer(tb testing.TB, ttl time.Duration) *application.TokenIssuer {
	tb.Helper()
	issuer, err := application.NewTokenIssuer([]byte(SessionSecret), ttl, f.Clock.NowFunc())
	if err != nil {
		tb.Fatalf("failed to create token issuer: %v", err)
	}
	issuer.SetIDGenerator(f.IDGenerator.NextFunc())
	return issuer
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Store   application.EntityStore
	Events  application.EventPublisher
	Options application.BookingOptions
	Logger  *slog.Logger
}

// NewBookingService builds a booking service on the factory clock. Unless
// deps.Options names its own lock, the factory WriteLock is used.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	opts := deps.Options
	if opts.WriteLock == nil {
		opts.WriteLock = f.WriteLock
	}
	return application.NewBookingServiceWithLogger(
		deps.Store,
		deps.Events,
		f.Clock.NowFunc(),
		opts,
		deps.Logger,
	)
}

// ProfessionalServiceDeps captures dependencies for constructing a professional service.
type ProfessionalServiceDeps struct {
	Store  application.EntityStore
	Logger *slog.Logger
}

// NewProfessionalService builds a professional service holding the factory WriteLock.
func (f *ServiceFactory) NewProfessionalService(deps ProfessionalServiceDeps) *application.ProfessionalService {
	return application.NewProfessionalServiceWithLock(deps.Store, f.WriteLock, deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Users   application.AuthUserStore
	Tokens  *application.TokenIssuer
	Events  application.EventPublisher
	Latency application.Latency
	Logger  *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
// Without Tokens, an issuer with a one hour TTL is created.
func (f *ServiceFactory) NewAuthService(tb testing.TB, deps AuthServiceDeps) *application.AuthService {
	tb.Helper()
	tokens := deps.Tokens
	if tokens == nil {
		tokens = f.NewTokenIssuer(tb, time.Hour)
	}
	return application.NewAuthServiceWithLogger(
		deps.Users,
		tokens,
		deps.Events,
		f.Clock.NowFunc(),
		deps.Latency,
		deps.Logger,
	)
}

// ReconcileServiceDeps captures dependencies for constructing a reconcile service.
type ReconcileServiceDeps struct {
	Store    application.EntityStore
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewReconcileService builds a reconcile service on the factory clock.
func (f *ServiceFactory) NewReconcileService(deps ReconcileServiceDeps) *application.ReconcileService {
	return application.NewReconcileServiceWithLogger(deps.Store, f.Clock.NowFunc(), deps.CacheTTL, deps.Logger)
}
