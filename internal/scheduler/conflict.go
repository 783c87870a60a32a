// Package scheduler cross-checks slot rosters against booking records.
package scheduler

// SlotKey identifies one owner's time range on a calendar day. Dates and times
// are compared as plain strings.
type SlotKey struct {
	OwnerID string
	Date    string
	Start   string
	End     string
}

// Slot is a roster entry and its booked flag.
type Slot struct {
	ID     string
	Key    SlotKey
	Booked bool
}

// Booking is a record claiming a slot's time range.
type Booking struct {
	ID  string
	Key SlotKey
}

// ConflictType describes the type of mismatch between roster and bookings.
type ConflictType string

const (
	// ConflictOrphanBookedSlot is a booked slot that no booking claims.
	ConflictOrphanBookedSlot ConflictType = "orphan_booked_slot"
	// ConflictUnmarkedBooking is a booking whose slot is still open.
	ConflictUnmarkedBooking ConflictType = "unmarked_booking"
	// ConflictDoubleBooked is a slot claimed by more than one booking.
	ConflictDoubleBooked ConflictType = "double_booked"
	// ConflictUnknownSlot is a booking with no matching roster entry.
	ConflictUnknownSlot ConflictType = "unknown_slot"
)

// Conflict details a mismatch that callers can present to operators.
type Conflict struct {
	Type       ConflictType
	Key        SlotKey
	SlotID     string
	BookingIDs []string
}

// DetectConflicts compares every slot with the bookings that share its key.
// Slot conflicts come first in roster order, then unknown-slot bookings in
// booking order. A double-booked open slot yields both an unmarked and a
// double-booked conflict.
func DetectConflicts(slots []Slot, bookings []Booking) []Conflict {
	claims := make(map[SlotKey][]string, len(bookings))
	for _, b := range bookings {
		claims[b.Key] = append(claims[b.Key], b.ID)
	}

	var conflicts []Conflict
	known := make(map[SlotKey]struct{}, len(slots))
	for _, slot := range slots {
		known[slot.Key] = struct{}{}
		ids := claims[slot.Key]

		switch {
		case slot.Booked && len(ids) == 0:
			conflicts = append(conflicts, Conflict{Type: ConflictOrphanBookedSlot, Key: slot.Key, SlotID: slot.ID})
		case !slot.Booked && len(ids) > 0:
			conflicts = append(conflicts, Conflict{Type: ConflictUnmarkedBooking, Key: slot.Key, SlotID: slot.ID, BookingIDs: copyIDs(ids)})
		}
		if len(ids) > 1 {
			conflicts = append(conflicts, Conflict{Type: ConflictDoubleBooked, Key: slot.Key, SlotID: slot.ID, BookingIDs: copyIDs(ids)})
		}
	}

	for _, b := range bookings {
		if _, ok := known[b.Key]; !ok {
			conflicts = append(conflicts, Conflict{Type: ConflictUnknownSlot, Key: b.Key, BookingIDs: []string{b.ID}})
		}
	}

	return conflicts
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
