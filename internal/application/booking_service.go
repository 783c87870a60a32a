package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SlotPolicy decides whether booking writes the slot's booked flag back.
type SlotPolicy int

const (
	// SlotPolicyObserved computes the updated roster but never persists it.
	// Booked slots stay open and may be booked again.
	SlotPolicyObserved SlotPolicy = iota
	// SlotPolicyPersist writes the roster back and rejects booked slots.
	SlotPolicyPersist
)

func (p SlotPolicy) String() string {
	switch p {
	case SlotPolicyObserved:
		return "observed"
	case SlotPolicyPersist:
		return "persist"
	default:
		return fmt.Sprintf("SlotPolicy(%d)", int(p))
	}
}

// BookingOptions tunes the booking flow.
type BookingOptions struct {
	Latency    Latency
	SlotPolicy SlotPolicy
	// WriteLock is shared with every other writer of the professionals
	// collection. Nil gives the service a private lock.
	WriteLock *sync.Mutex
}

// BookingService turns a selected slot into a confirmed appointment.
type BookingService struct {
	store   EntityStore
	events  EventPublisher
	latency Latency
	policy  SlotPolicy
	now     func() time.Time
	logger  *slog.Logger

	// serializes the read-modify-write of both collections
	mu *sync.Mutex
}

// NewBookingService constructs a BookingService with the provided dependencies.
func NewBookingService(store EntityStore, events EventPublisher, now func() time.Time, opts BookingOptions) *BookingService {
	return NewBookingServiceWithLogger(store, events, now, opts, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified logger.
func NewBookingServiceWithLogger(store EntityStore, events EventPublisher, now func() time.Time, opts BookingOptions, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	mu := opts.WriteLock
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &BookingService{
		mu:      mu,
		store:   store,
		events:  defaultPublisher(events),
		latency: opts.Latency,
		policy:  opts.SlotPolicy,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Policy reports the configured slot write-back policy.
func (s *BookingService) Policy() SlotPolicy {
	if s == nil {
		return SlotPolicyObserved
	}
	return s.policy
}

// Book creates a confirmed appointment for the selected slot. A request
// missing the slot, professional, or user returns ErrBookingIncomplete
// without touching the store.
func (s *BookingService) Book(ctx context.Context, params BookParams) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("entity store not configured")
		return
	}

	professionalID := strings.TrimSpace(params.ProfessionalID)
	slotID := strings.TrimSpace(params.SlotID)

	logger := s.loggerWith(ctx, "Book",
		"principal_id", params.Principal.UserID,
		"professional_id", professionalID,
		"slot_id", slotID,
		"slot_policy", s.policy.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", ErrorKind(err))
			s.events.BookingFailed(ctx, ErrorKind(err))
			return
		}
		logger.With(
			"appointment_id", result.Appointment.ID,
			"slot_persisted", result.SlotPersisted,
		).InfoContext(ctx, "appointment booked")
	}()

	if slotID == "" || professionalID == "" || strings.TrimSpace(params.Principal.UserID) == "" {
		err = ErrBookingIncomplete
		return
	}
	if err = requireView(params.Principal, ViewProfessionalProfile); err != nil {
		return
	}

	if err = s.latency.Wait(ctx); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var professionals []Professional
	professionals, err = s.store.ReadProfessionals(ctx)
	if err != nil {
		err = fmt.Errorf("read professionals: %w", err)
		return
	}

	proIdx := findProfessional(professionals, professionalID)
	if proIdx < 0 {
		err = fmt.Errorf("professional %s: %w", professionalID, ErrNotFound)
		return
	}
	professional := professionals[proIdx]

	slotIdx := -1
	for i, slot := range professional.AvailableSlots {
		if slot.ID == slotID {
			slotIdx = i
			break
		}
	}
	if slotIdx < 0 {
		err = fmt.Errorf("slot %s: %w", slotID, ErrNotFound)
		return
	}
	slot := professional.AvailableSlots[slotIdx]

	if s.policy == SlotPolicyPersist && slot.IsBooked {
		err = ErrSlotUnavailable
		return
	}

	var appointments []Appointment
	appointments, err = s.store.ReadAppointments(ctx)
	if err != nil {
		err = fmt.Errorf("read appointments: %w", err)
		return
	}

	now := s.now()
	appointment := Appointment{
		ID:                     nextAppointmentID(appointments, now),
		UserID:                 params.Principal.UserID,
		ProfessionalID:         professional.ID,
		ProfessionalName:       professional.Name,
		ProfessionalProfession: professional.Profession,
		Date:                   slot.Date,
		StartTime:              slot.StartTime,
		EndTime:                slot.EndTime,
		Status:                 StatusConfirmed,
		CreatedAt:              now.UTC(),
	}

	updated := cloneProfessionals(professionals)
	updated[proIdx].AvailableSlots[slotIdx].IsBooked = true

	// The slot is claimed before the appointment is written. A failed
	// appointment write releases it again.
	persisted := false
	switch s.policy {
	case SlotPolicyPersist:
		if err = s.store.WriteProfessionals(ctx, updated); err != nil {
			err = fmt.Errorf("write professionals: %w", err)
			return
		}
		persisted = true
	case SlotPolicyObserved:
		logger.WarnContext(ctx, "slot booked flag computed but not persisted")
	}

	if err = s.store.WriteAppointments(ctx, append(appointments, appointment)); err != nil {
		err = fmt.Errorf("write appointments: %w", err)
		if persisted {
			if rbErr := s.store.WriteProfessionals(ctx, professionals); rbErr != nil {
				logger.ErrorContext(ctx, "failed to release claimed slot", "error", rbErr)
			}
		}
		return
	}

	result = BookingResult{
		Appointment:   appointment,
		Professionals: updated,
		SlotPersisted: persisted,
	}
	s.events.AppointmentBooked(ctx, result)
	return
}

// nextAppointmentID returns apt-<unix millis>, stepping forward past ids
// already present in the collection.
func nextAppointmentID(existing []Appointment, now time.Time) string {
	taken := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		taken[a.ID] = struct{}{}
	}
	for millis := now.UnixMilli(); ; millis++ {
		id := fmt.Sprintf("apt-%d", millis)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}
