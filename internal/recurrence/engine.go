package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for slot dates.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used for slot boundaries.
const ClockLayout = "15:04"

// Frequency represents supported roster intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily generates slots for each day within the range.
	FrequencyDaily
	// FrequencyWeekly generates slots for the selected weekdays only.
	FrequencyWeekly
)

// Window is a time-of-day range repeated on every generated day.
type Window struct {
	Start string
	End   string
}

// DefaultWindows is the standard working-day roster: three morning and three
// afternoon one-hour sessions.
var DefaultWindows = []Window{
	{Start: "09:00", End: "10:00"},
	{Start: "10:00", End: "11:00"},
	{Start: "11:00", End: "12:00"},
	{Start: "14:00", End: "15:00"},
	{Start: "15:00", End: "16:00"},
	{Start: "16:00", End: "17:00"},
}

// Rule describes the slot roster of one owner over a run of calendar days.
type Rule struct {
	OwnerID   string
	Frequency Frequency
	Weekdays  []time.Weekday
	StartsOn  time.Time
	Days      int
	Windows   []Window
}

// Occurrence is one generated slot. ID is "<owner>-<day offset>-<window index>".
type Occurrence struct {
	ID          string
	OwnerID     string
	Date        string
	StartTime   string
	EndTime     string
	DayOffset   int
	WindowIndex int
}

// Engine expands roster rules into slot occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that resolves calendar days in loc.
// If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// ErrInvalidFrequency indicates the roster frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidWindow indicates the generation range is empty.
var ErrInvalidWindow = errors.New("recurrence: generation range requires at least one day")

// ErrInvalidDuration indicates a window does not end after it starts.
var ErrInvalidDuration = errors.New("recurrence: window duration must be positive")

// GenerateOccurrences produces slots for every included day in the range.
//
// Days are counted from the calendar day of StartsOn in the engine location.
// Windows keep their declaration order within a day, and days are emitted in
// ascending order.
func (e *Engine) GenerateOccurrences(rule Rule) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}
	if rule.Days <= 0 {
		return nil, ErrInvalidWindow
	}

	windows := rule.Windows
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	for _, w := range windows {
		if err := validateWindow(w); err != nil {
			return nil, err
		}
	}

	weekdaySet := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		weekdaySet[day] = struct{}{}
	}

	y, m, d := rule.StartsOn.In(loc).Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, loc)

	occurrences := make([]Occurrence, 0, rule.Days*len(windows))
	for offset := 0; offset < rule.Days; offset++ {
		day := first.AddDate(0, 0, offset)
		include, err := shouldInclude(rule.Frequency, weekdaySet, day.Weekday())
		if err != nil {
			return nil, err
		}
		if !include {
			continue
		}

		date := day.Format(DateLayout)
		for idx, w := range windows {
			occurrences = append(occurrences, Occurrence{
				ID:          fmt.Sprintf("%s-%d-%d", rule.OwnerID, offset, idx),
				OwnerID:     rule.OwnerID,
				Date:        date,
				StartTime:   w.Start,
				EndTime:     w.End,
				DayOffset:   offset,
				WindowIndex: idx,
			})
		}
	}

	return occurrences, nil
}

// DayAfter returns the calendar day offset days after reference, formatted as a slot date.
func (e *Engine) DayAfter(reference time.Time, offset int) string {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := reference.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, offset).Format(DateLayout)
}

func validateWindow(w Window) error {
	start, err := time.Parse(ClockLayout, w.Start)
	if err != nil {
		return fmt.Errorf("recurrence: window start %q: %w", w.Start, err)
	}
	end, err := time.Parse(ClockLayout, w.End)
	if err != nil {
		return fmt.Errorf("recurrence: window end %q: %w", w.End, err)
	}
	if !end.After(start) {
		return ErrInvalidDuration
	}
	return nil
}

func shouldInclude(freq Frequency, weekdaySet map[time.Weekday]struct{}, day time.Weekday) (bool, error) {
	switch freq {
	case FrequencyDaily:
		if len(weekdaySet) == 0 {
			return true, nil
		}
		_, ok := weekdaySet[day]
		return ok, nil
	case FrequencyWeekly:
		if len(weekdaySet) == 0 {
			return false, nil
		}
		_, ok := weekdaySet[day]
		return ok, nil
	case FrequencyUnspecified:
		fallthrough
	default:
		return false, ErrInvalidFrequency
	}
}
