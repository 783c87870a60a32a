package application

import (
	"reflect"
	"testing"
)

func TestOpenSlotsByDate(t *testing.T) {
	t.Parallel()

	slots := []TimeSlot{
		{ID: "a", Date: "2024-03-05", StartTime: "09:00"},
		{ID: "b", Date: "2024-03-04", StartTime: "09:00"},
		{ID: "c", Date: "2024-03-05", StartTime: "10:00", IsBooked: true},
		{ID: "d", Date: "2024-03-05", StartTime: "11:00"},
		{ID: "e", Date: "2024-03-06", StartTime: "09:00", IsBooked: true},
	}

	index := OpenSlotsByDate(slots)
	if got, want := index.Dates(), []string{"2024-03-05", "2024-03-04"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected first-seen date order %v, got %v", want, got)
	}
	if ids := []string{index.Groups[0].Slots[0].ID, index.Groups[0].Slots[1].ID}; ids[0] != "a" || ids[1] != "d" {
		t.Fatalf("expected declaration order within a date, got %v", ids)
	}
	if index.OpenSlotCount() != 3 {
		t.Fatalf("expected 3 open slots, got %d", index.OpenSlotCount())
	}

	byDate := index.ByDate()
	if _, ok := byDate["2024-03-06"]; ok {
		t.Fatal("fully booked dates must be omitted")
	}
	byDate["2024-03-04"][0].ID = "mutated"
	if index.Groups[1].Slots[0].ID != "b" {
		t.Fatal("ByDate must return copies")
	}

	if empty := OpenSlotsByDate(nil); len(empty.Groups) != 0 || len(empty.ByDate()) != 0 {
		t.Fatal("expected empty index for no slots")
	}
}
