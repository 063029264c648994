package assignment

import (
	"testing"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

func interval(startDay, endDay int) models.Interval {
	return models.Interval{Start: day(startDay), End: day(endDay)}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b models.Interval
		want bool
	}{
		{"disjoint before", interval(1, 5), interval(6, 10), false},
		{"disjoint after", interval(6, 10), interval(1, 5), false},
		{"contained", interval(1, 10), interval(3, 7), true},
		{"containing", interval(3, 7), interval(1, 10), true},
		{"partial", interval(1, 7), interval(5, 10), true},
		{"identical", interval(1, 5), interval(1, 5), true},
		{"single day inside", interval(3, 3), interval(1, 5), true},
		// Boundaries are inclusive: an occupant leaving on the 20th
		// still holds the bed on the 20th.
		{"shared end/start day", interval(10, 20), interval(20, 25), true},
		{"shared start/end day", interval(20, 25), interval(10, 20), true},
	}
	for _, c := range cases {
		if got := Overlaps(c.a, c.b); got != c.want {
			t.Errorf("%s: Overlaps(%v, %v) = %v, want %v", c.name, c.a, c.b, got, c.want)
		}
	}
}

func TestCheckBedAvailable(t *testing.T) {
	candidate := interval(18, 22)

	empty := &models.Bed{ID: "A1-1", Type: models.BedTypeSingle}
	if got := CheckBedAvailable(empty, candidate); !got.Available || got.Conflicting != nil {
		t.Errorf("Expected an empty bed to be available, got %+v", got)
	}

	occupied := &models.Bed{
		ID:   "A1-1",
		Type: models.BedTypeSingle,
		Occupant: &models.Occupant{
			RegistrationID: "r1",
			Name:           "Alice",
			Arrival:        day(10),
			Departure:      day(20),
		},
	}
	got := CheckBedAvailable(occupied, candidate)
	if got.Available {
		t.Error("Expected an overlapping occupant to block the bed")
	}
	if got.Conflicting == nil || got.Conflicting.Name != "Alice" {
		t.Errorf("Expected the blocking occupant to be reported, got %+v", got.Conflicting)
	}

	// A non-overlapping occupant does not block: the bed can be handed
	// over to a later interval.
	if got := CheckBedAvailable(occupied, interval(21, 25)); !got.Available {
		t.Errorf("Expected a non-overlapping occupant not to block, got %+v", got)
	}
}

func TestCheckCapacity(t *testing.T) {
	occ := &models.Occupant{RegistrationID: "r1", Arrival: day(1), Departure: day(5)}

	bg := &models.Bungalow{
		ID:   "B1",
		Type: models.BungalowTypeB,
		Beds: []models.Bed{
			{ID: "B1-1", Type: models.BedTypeSingle, Occupant: occ},
			{ID: "B1-2", Type: models.BedTypeDouble},
		},
	}

	status := CheckCapacity(bg)
	if status.Full || status.OccupantCount != 1 || status.Capacity != 2 {
		t.Errorf("Expected 1/2 not full for a half-occupied type B, got %+v", status)
	}

	bg.Beds[1].Occupant = occ
	status = CheckCapacity(bg)
	if !status.Full || status.OccupantCount != 2 {
		t.Errorf("Expected a fully occupied type B to be full, got %+v", status)
	}

	// Capacity counts occupied beds regardless of dates: an occupant
	// outside any window of interest still consumes the slot.
	typeA := &models.Bungalow{
		ID:   "A1",
		Type: models.BungalowTypeA,
		Beds: []models.Bed{
			{ID: "A1-1", Occupant: occ},
			{ID: "A1-2", Occupant: occ},
			{ID: "A1-3", Occupant: occ},
		},
	}
	if status := CheckCapacity(typeA); !status.Full || status.Capacity != 3 {
		t.Errorf("Expected a fully occupied type A to be full at 3, got %+v", status)
	}
}
