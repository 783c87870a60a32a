package application

import (
	"context"
)

// EntityStore exposes the persisted collections. Reads return fresh copies and
// writes overwrite the whole collection.
type EntityStore interface {
	ReadProfessionals(ctx context.Context) ([]Professional, error)
	WriteProfessionals(ctx context.Context, professionals []Professional) error
	ReadAppointments(ctx context.Context) ([]Appointment, error)
	WriteAppointments(ctx context.Context, appointments []Appointment) error
}

// AuthUserStore keeps the signed-in user record. GetAuthUser returns
// ErrNotFound when nobody is signed in.
type AuthUserStore interface {
	GetAuthUser(ctx context.Context) (User, error)
	SetAuthUser(ctx context.Context, user User) error
	ClearAuthUser(ctx context.Context) error
}

// EventPublisher receives domain notifications. Implementations must not block.
type EventPublisher interface {
	AppointmentBooked(ctx context.Context, result BookingResult)
	BookingFailed(ctx context.Context, kind string)
	UserSignedIn(ctx context.Context, user User)
}

type noopPublisher struct{}

func (noopPublisher) AppointmentBooked(context.Context, BookingResult) {}
func (noopPublisher) BookingFailed(context.Context, string)            {}
func (noopPublisher) UserSignedIn(context.Context, User)                {}

func defaultPublisher(events EventPublisher) EventPublisher {
	if events == nil {
		return noopPublisher{}
	}
	return events
}

func cloneProfessional(p Professional) Professional {
	clone := p
	if p.AvailableSlots != nil {
		clone.AvailableSlots = make([]TimeSlot, len(p.AvailableSlots))
		copy(clone.AvailableSlots, p.AvailableSlots)
	}
	return clone
}

func cloneProfessionals(in []Professional) []Professional {
	if in == nil {
		return nil
	}
	out := make([]Professional, len(in))
	for i, p := range in {
		out[i] = cloneProfessional(p)
	}
	return out
}

func findProfessional(professionals []Professional, id string) int {
	for i, p := range professionals {
		if p.ID == id {
			return i
		}
	}
	return -1
}
