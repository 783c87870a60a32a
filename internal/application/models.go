package application

import "time"

// AppointmentStatus is the lifecycle label of an appointment.
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// User is the signed-in account. Users are synthesized at login and signup.
type User struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	Avatar string
}

// Principal converts the user into the identity passed to services.
func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// TimeSlot is one bookable unit of a professional's availability.
type TimeSlot struct {
	ID        string
	Date      string
	StartTime string
	EndTime   string
	IsBooked  bool
}

// Professional is a service provider and their slot roster.
type Professional struct {
	ID             string
	Name           string
	Email          string
	Profession     string
	Experience     int
	Rating         float64
	Description    string
	Avatar         string
	AvailableSlots []TimeSlot
	IsActive       bool
}

// Appointment links a user to a professional's time range.
type Appointment struct {
	ID                     string
	UserID                 string
	ProfessionalID         string
	ProfessionalName       string
	ProfessionalProfession string
	Date                   string
	StartTime              string
	EndTime                string
	Status                 AppointmentStatus
	CreatedAt              time.Time
}

// LoginParams wraps the data submitted by the login form.
type LoginParams struct {
	Email    string
	Password string
	Role     string
}

// SignupParams wraps the data submitted by the signup form.
type SignupParams struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// AuthResult is returned by successful login and signup calls.
type AuthResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// BookParams identifies the slot the principal wants to book.
type BookParams struct {
	Principal      Principal
	ProfessionalID string
	SlotID         string
}

// BookingResult is the outcome of a successful booking.
type BookingResult struct {
	Appointment Appointment
	// Professionals is the collection with the booked slot marked. It is
	// persisted only when SlotPersisted is true.
	Professionals []Professional
	SlotPersisted bool
}

// SetProfessionalActiveParams toggles a professional's listing state.
type SetProfessionalActiveParams struct {
	Principal      Principal
	ProfessionalID string
	Active         bool
}

// DashboardStats summarises an appointment list.
type DashboardStats struct {
	Total     int
	Upcoming  int
	Completed int
}

// UserDashboard is the read model for the user home view.
type UserDashboard struct {
	Appointments []Appointment
	Stats        DashboardStats
}

// ProfessionalDashboard is the read model for the professional home view.
type ProfessionalDashboard struct {
	Professional *Professional
	Appointments []Appointment
	Stats        DashboardStats
	OpenSlots    int
}

// ProfessionalBookings is one bar of the bookings-per-professional chart.
type ProfessionalBookings struct {
	ProfessionalID string
	Name           string
	Bookings       int
}

// AdminStats are the headline counters on the admin dashboard.
type AdminStats struct {
	TotalUsers         int
	TotalProfessionals int
	TotalAppointments  int
	ActiveAppointments int
}

// AdminDashboard is the read model for the admin home view.
type AdminDashboard struct {
	Stats              AdminStats
	BookingsByProvider []ProfessionalBookings
	RecentAppointments []Appointment
	Professionals      []Professional
}
