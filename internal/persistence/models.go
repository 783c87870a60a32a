package persistence

// User is the persisted auth-user record.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// TimeSlot is one bookable unit in a professional's roster. Date is a
// yyyy-MM-dd calendar day and the times are HH:MM strings.
type TimeSlot struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBooked  bool   `json:"isBooked"`
}

// Professional is the persisted professional record including its slot roster.
type Professional struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Profession     string     `json:"profession"`
	Experience     int        `json:"experience"`
	Rating         float64    `json:"rating"`
	Description    string     `json:"description"`
	Avatar         string     `json:"avatar"`
	AvailableSlots []TimeSlot `json:"availableSlots"`
	IsActive       bool       `json:"isActive"`
}

// Appointment is the persisted booking record. Professional name and profession
// are copied at creation time.
type Appointment struct {
	ID                     string `json:"id"`
	UserID                 string `json:"userId"`
	ProfessionalID         string `json:"professionalId"`
	ProfessionalName       string `json:"professionalName"`
	ProfessionalProfession string `json:"professionalProfession"`
	Date                   string `json:"date"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
	Status                 string `json:"status"`
	CreatedAt              string `json:"createdAt"`
}

// CloneProfessional returns a deep copy of the professional including its slots.
func CloneProfessional(p Professional) Professional {
	clone := p
	if p.AvailableSlots != nil {
		clone.AvailableSlots = make([]TimeSlot, len(p.AvailableSlots))
		copy(clone.AvailableSlots, p.AvailableSlots)
	}
	return clone
}

// CloneProfessionals deep copies a professional collection.
func CloneProfessionals(in []Professional) []Professional {
	if in == nil {
		return nil
	}
	out := make([]Professional, len(in))
	for i, p := range in {
		out[i] = CloneProfessional(p)
	}
	return out
}

// CloneAppointments copies an appointment collection.
func CloneAppointments(in []Appointment) []Appointment {
	if in == nil {
		return nil
	}
	out := make([]Appointment, len(in))
	copy(out, in)
	return out
}
