package persistence

import "context"

// Storage keys. The prefix matches the browser storage layout the records were
// first written with so exported data stays interchangeable.
const (
	KeyPrefix        = "appointmentSystem_"
	KeyAuthUser      = KeyPrefix + "authUser"
	KeyProfessionals = KeyPrefix + "professionals"
	KeyAppointments  = KeyPrefix + "appointments"
)

// KeyValueStore is the byte-oriented backend the entity store persists into.
// Get reports ok=false when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ProfessionalRepository reads and overwrites the professional collection.
type ProfessionalRepository interface {
	ReadProfessionals(ctx context.Context) ([]Professional, error)
	WriteProfessionals(ctx context.Context, professionals []Professional) error
}

// AppointmentRepository reads and overwrites the appointment collection.
type AppointmentRepository interface {
	ReadAppointments(ctx context.Context) ([]Appointment, error)
	WriteAppointments(ctx context.Context, appointments []Appointment) error
}

// AuthUserRepository stores the single signed-in user record.
type AuthUserRepository interface {
	GetAuthUser(ctx context.Context) (User, error)
	SetAuthUser(ctx context.Context, user User) error
	ClearAuthUser(ctx context.Context) error
}
