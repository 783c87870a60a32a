package application

// DateGroup holds the open slots of one calendar day.
type DateGroup struct {
	Date  string
	Slots []TimeSlot
}

// AvailabilityIndex is the open-slot view of a roster, grouped by date in
// first-seen order.
type AvailabilityIndex struct {
	Groups []DateGroup
}

// OpenSlotsByDate keeps unbooked slots in declaration order and groups them by
// their date string. Dates with no open slot are omitted.
func OpenSlotsByDate(slots []TimeSlot) AvailabilityIndex {
	var groups []DateGroup
	position := make(map[string]int)

	for _, slot := range slots {
		if slot.IsBooked {
			continue
		}
		idx, ok := position[slot.Date]
		if !ok {
			idx = len(groups)
			position[slot.Date] = idx
			groups = append(groups, DateGroup{Date: slot.Date})
		}
		groups[idx].Slots = append(groups[idx].Slots, slot)
	}

	return AvailabilityIndex{Groups: groups}
}

// ByDate returns the groups keyed by date.
func (a AvailabilityIndex) ByDate() map[string][]TimeSlot {
	out := make(map[string][]TimeSlot, len(a.Groups))
	for _, g := range a.Groups {
		slots := make([]TimeSlot, len(g.Slots))
		copy(slots, g.Slots)
		out[g.Date] = slots
	}
	return out
}

// Dates lists the dates with at least one open slot.
func (a AvailabilityIndex) Dates() []string {
	out := make([]string, 0, len(a.Groups))
	for _, g := range a.Groups {
		out = append(out, g.Date)
	}
	return out
}

// OpenSlotCount returns the number of unbooked slots.
func (a AvailabilityIndex) OpenSlotCount() int {
	total := 0
	for _, g := range a.Groups {
		total += len(g.Slots)
	}
	return total
}
