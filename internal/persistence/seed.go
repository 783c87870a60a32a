package persistence

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/example/booking-portal/internal/recurrence"
)

// seedBookedThreshold marks a generated slot as already booked when the
// sampled value exceeds it, leaving roughly seventy percent of slots open.
const seedBookedThreshold = 0.7

// SeedRosterDays is the number of calendar days covered by seeded slots.
const SeedRosterDays = 7

type seedProfessional struct {
	id          string
	name        string
	email       string
	profession  string
	experience  int
	rating      float64
	description string
	avatar      string
}

var seedProfessionals = []seedProfessional{
	{
		id:          "1",
		name:        "Sarah Mitchell",
		email:       "sarah.mitchell@example.com",
		profession:  "Corporate Lawyer",
		experience:  12,
		rating:      4.9,
		description: "Specializing in corporate law, mergers & acquisitions, and contract negotiations. Over a decade of experience helping businesses navigate complex legal landscapes.",
		avatar:      "https://images.unsplash.com/photo-1736939678218-bd648b5ef3bb?w=400",
	},
	{
		id:          "2",
		name:        "David Chen",
		email:       "david.chen@example.com",
		profession:  "Business Consultant",
		experience:  8,
		rating:      4.7,
		description: "Strategic business consultant with expertise in digital transformation, process optimization, and organizational development.",
		avatar:      "https://images.unsplash.com/photo-1758691463198-dc663b8a64e4?w=400",
	},
	{
		id:          "3",
		name:        "Emma Rodriguez",
		email:       "emma.rodriguez@example.com",
		profession:  "Personal Fitness Trainer",
		experience:  6,
		rating:      4.8,
		description: "Certified personal trainer specializing in strength training, weight loss, and athletic performance. Customized programs for all fitness levels.",
		avatar:      "https://images.unsplash.com/photo-1540205453279-389ebbc43b5b?w=400",
	},
	{
		id:          "4",
		name:        "Michael Thompson",
		email:       "michael.thompson@example.com",
		profession:  "Life Coach",
		experience:  10,
		rating:      4.9,
		description: "Empowering individuals to achieve their personal and professional goals through proven coaching methodologies and mindfulness techniques.",
		avatar:      "https://images.unsplash.com/photo-1589114207353-1fc98a11070b?w=400",
	},
}

// Seeder builds the fixed sample data set relative to a reference day.
type Seeder struct {
	engine *recurrence.Engine
}

// NewSeeder returns a seeder resolving calendar days in loc (UTC when nil).
func NewSeeder(loc *time.Location) *Seeder {
	return &Seeder{engine: recurrence.NewEngine(loc)}
}

// Professionals returns the four sample professionals with a seven day roster
// starting at the reference day. Pre-booked slots are drawn from a source
// seeded by the reference day, so the same day always yields the same roster.
func (s *Seeder) Professionals(reference time.Time) []Professional {
	day := s.engine.DayAfter(reference, 0)
	rng := rand.New(rand.NewPCG(daySeed(day), uint64(len(seedProfessionals))))

	out := make([]Professional, 0, len(seedProfessionals))
	for _, p := range seedProfessionals {
		occurrences, err := s.engine.GenerateOccurrences(recurrence.Rule{
			OwnerID:   p.id,
			Frequency: recurrence.FrequencyDaily,
			StartsOn:  reference,
			Days:      SeedRosterDays,
		})
		if err != nil {
			// the seed rule is static; a failure here is a programming error
			panic(err)
		}

		slots := make([]TimeSlot, 0, len(occurrences))
		for _, occ := range occurrences {
			slots = append(slots, TimeSlot{
				ID:        occ.ID,
				Date:      occ.Date,
				StartTime: occ.StartTime,
				EndTime:   occ.EndTime,
				IsBooked:  rng.Float64() > seedBookedThreshold,
			})
		}

		out = append(out, Professional{
			ID:             p.id,
			Name:           p.name,
			Email:          p.email,
			Profession:     p.profession,
			Experience:     p.experience,
			Rating:         p.rating,
			Description:    p.description,
			Avatar:         p.avatar,
			AvailableSlots: slots,
			IsActive:       true,
		})
	}
	return out
}

// Appointments returns the two sample appointments owned by the demo user.
func (s *Seeder) Appointments(reference time.Time) []Appointment {
	createdAt := reference.UTC().Format(time.RFC3339Nano)
	return []Appointment{
		{
			ID:                     "apt-1",
			UserID:                 "user-1",
			ProfessionalID:         "1",
			ProfessionalName:       "Sarah Mitchell",
			ProfessionalProfession: "Corporate Lawyer",
			Date:                   s.engine.DayAfter(reference, 2),
			StartTime:              "10:00",
			EndTime:                "11:00",
			Status:                 "confirmed",
			CreatedAt:              createdAt,
		},
		{
			ID:                     "apt-2",
			UserID:                 "user-1",
			ProfessionalID:         "3",
			ProfessionalName:       "Emma Rodriguez",
			ProfessionalProfession: "Personal Fitness Trainer",
			Date:                   s.engine.DayAfter(reference, 5),
			StartTime:              "09:00",
			EndTime:                "10:00",
			Status:                 "pending",
			CreatedAt:              createdAt,
		},
	}
}

func daySeed(day string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(day))
	return h.Sum64()
}
