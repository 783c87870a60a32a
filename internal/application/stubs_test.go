package application

import (
	"context"
	"sync"
	"time"
)

var referenceTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return referenceTime }

type entityStoreStub struct {
	mu            sync.Mutex
	professionals []Professional
	appointments  []Appointment

	readProfessionalsErr  error
	writeProfessionalsErr error
	readAppointmentsErr   error
	writeAppointmentsErr  error

	professionalWrites int
	appointmentWrites  int
	reads              int
}

func (s *entityStoreStub) ReadProfessionals(context.Context) ([]Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readProfessionalsErr != nil {
		return nil, s.readProfessionalsErr
	}
	return cloneProfessionals(s.professionals), nil
}

func (s *entityStoreStub) WriteProfessionals(_ context.Context, professionals []Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeProfessionalsErr != nil {
		return s.writeProfessionalsErr
	}
	s.professionalWrites++
	s.professionals = cloneProfessionals(professionals)
	return nil
}

func (s *entityStoreStub) ReadAppointments(context.Context) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.readAppointmentsErr != nil {
		return nil, s.readAppointmentsErr
	}
	return append([]Appointment(nil), s.appointments...), nil
}

func (s *entityStoreStub) WriteAppointments(_ context.Context, appointments []Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeAppointmentsErr != nil {
		return s.writeAppointmentsErr
	}
	s.appointmentWrites++
	s.appointments = append([]Appointment(nil), appointments...)
	return nil
}

type authUserStoreStub struct {
	mu     sync.Mutex
	user   *User
	setErr error
}

func (s *authUserStoreStub) GetAuthUser(context.Context) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, ErrNotFound
	}
	return *s.user, nil
}

func (s *authUserStoreStub) SetAuthUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.user = &user
	return nil
}

func (s *authUserStoreStub) ClearAuthUser(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

type publisherStub struct {
	mu       sync.Mutex
	booked   []BookingResult
	failures []string
	signedIn []User
}

func (p *publisherStub) AppointmentBooked(_ context.Context, result BookingResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.booked = append(p.booked, result)
}

func (p *publisherStub) BookingFailed(_ context.Context, kind string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, kind)
}

func (p *publisherStub) UserSignedIn(_ context.Context, user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedIn = append(p.signedIn, user)
}

func sampleProfessionals() []Professional {
	return []Professional{
		{
			ID:         "1",
			Name:       "Sarah Mitchell",
			Email:      "sarah.mitchell@example.com",
			Profession: "Corporate Lawyer",
			IsActive:   true,
			AvailableSlots: []TimeSlot{
				{ID: "1-0-0", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00"},
				{ID: "1-0-1", Date: "2024-03-04", StartTime: "10:00", EndTime: "11:00", IsBooked: true},
				{ID: "1-1-0", Date: "2024-03-05", StartTime: "09:00", EndTime: "10:00"},
			},
		},
		{
			ID:         "2",
			Name:       "David Chen",
			Email:      "david.chen@example.com",
			Profession: "Business Consultant",
			IsActive:   true,
			AvailableSlots: []TimeSlot{
				{ID: "2-0-0", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00"},
			},
		},
	}
}

func sampleAppointments() []Appointment {
	return []Appointment{
		{ID: "apt-1", UserID: "user-1", ProfessionalID: "1", ProfessionalName: "Sarah Mitchell", Date: "2024-03-04", StartTime: "10:00", EndTime: "11:00", Status: StatusConfirmed},
		{ID: "apt-2", UserID: "user-1", ProfessionalID: "2", ProfessionalName: "David Chen", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00", Status: StatusPending},
	}
}

func userPrincipal(id string) Principal {
	return Principal{UserID: id, Name: "ann", Email: "ann@example.com", Role: RoleUser}
}

var adminPrincipal = Principal{UserID: "admin-1", Name: "root", Email: "root@example.com", Role: RoleAdmin}
