// Package events fans domain notifications out to in-process subscribers.
package events

import (
	"context"
	"fmt"

	EventBus "github.com/asaskevich/EventBus"

	"github.com/example/booking-portal/internal/application"
)

// Topics published on the bus.
const (
	TopicAppointmentBooked = "appointment.booked"
	TopicBookingFailed     = "booking.failed"
	TopicUserSignedIn      = "user.signed_in"
)

// Bus implements application.EventPublisher over an EventBus instance.
type Bus struct {
	bus EventBus.Bus
}

var _ application.EventPublisher = (*Bus)(nil)

// New returns an empty bus.
func New() *Bus {
	return &Bus{bus: EventBus.New()}
}

// AppointmentBooked publishes TopicAppointmentBooked.
func (b *Bus) AppointmentBooked(ctx context.Context, result application.BookingResult) {
	b.bus.Publish(TopicAppointmentBooked, ctx, result)
}

// BookingFailed publishes TopicBookingFailed with the error kind.
func (b *Bus) BookingFailed(ctx context.Context, kind string) {
	b.bus.Publish(TopicBookingFailed, ctx, kind)
}

// UserSignedIn publishes TopicUserSignedIn.
func (b *Bus) UserSignedIn(ctx context.Context, user application.User) {
	b.bus.Publish(TopicUserSignedIn, ctx, user)
}

// OnAppointmentBooked registers a synchronous subscriber.
func (b *Bus) OnAppointmentBooked(fn func(context.Context, application.BookingResult)) error {
	return subscribe(b.bus.Subscribe(TopicAppointmentBooked, fn), TopicAppointmentBooked)
}

// OnAppointmentBookedAsync registers a subscriber that runs on its own goroutine.
func (b *Bus) OnAppointmentBookedAsync(fn func(context.Context, application.BookingResult)) error {
	return subscribe(b.bus.SubscribeAsync(TopicAppointmentBooked, fn, false), TopicAppointmentBooked)
}

// OnBookingFailed registers a synchronous subscriber.
func (b *Bus) OnBookingFailed(fn func(context.Context, string)) error {
	return subscribe(b.bus.Subscribe(TopicBookingFailed, fn), TopicBookingFailed)
}

// OnUserSignedIn registers a synchronous subscriber.
func (b *Bus) OnUserSignedIn(fn func(context.Context, application.User)) error {
	return subscribe(b.bus.Subscribe(TopicUserSignedIn, fn), TopicUserSignedIn)
}

// Wait blocks until async subscribers finish.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

func subscribe(err error, topic string) error {
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}
