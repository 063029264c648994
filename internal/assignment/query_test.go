package assignment

import (
	"context"
	"testing"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

func TestUnassignedRegistrations(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	mustCreateStage(t, store, "s1", day(10), day(20))
	mustCreateStage(t, store, "s2", day(25), day(30))
	mustCreateRegistration(t, store, "r1", "s1", "Alice")
	mustCreateRegistration(t, store, "r2", "s1", "Bob")
	mustCreateRegistration(t, store, "r3", "s2", "Carol")

	if _, err := engine.Assign(ctx, "r1", "A1", "A1-1", false); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	regs, err := engine.UnassignedRegistrations(ctx, "", nil)
	if err != nil {
		t.Fatalf("UnassignedRegistrations: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("Expected 2 unassigned registrations, got %d", len(regs))
	}

	regs, _ = engine.UnassignedRegistrations(ctx, "s1", nil)
	if len(regs) != 1 || regs[0].ID != "r2" {
		t.Errorf("Expected only r2 unassigned in s1, got %+v", regs)
	}

	// The window filter works at the stage level: s2 (25th-30th) is out
	// of a window ending on the 22nd, s1 overlaps it.
	window := interval(15, 22)
	regs, _ = engine.UnassignedRegistrations(ctx, "", &window)
	if len(regs) != 1 || regs[0].ID != "r2" {
		t.Errorf("Expected the window to keep only s1's registration, got %+v", regs)
	}
}

func TestBungalowOccupants(t *testing.T) {
	bg := &models.Bungalow{
		ID:   "A1",
		Type: models.BungalowTypeA,
		Beds: []models.Bed{
			{ID: "A1-1", Occupant: &models.Occupant{Name: "Alice", Arrival: day(10), Departure: day(20)}},
			{ID: "A1-2", Occupant: &models.Occupant{Name: "Bob", Arrival: day(25), Departure: day(30)}},
			{ID: "A1-3"},
		},
	}

	all := BungalowOccupants(bg, nil)
	if len(all) != 2 {
		t.Fatalf("Expected 2 occupants without a window, got %d", len(all))
	}

	window := interval(20, 24)
	windowed := BungalowOccupants(bg, &window)
	if len(windowed) != 1 || windowed[0].Name != "Alice" {
		t.Errorf("Expected only Alice inside the window, got %+v", windowed)
	}
}

func TestConflictBungalows(t *testing.T) {
	bungalows := []models.Bungalow{
		{ID: "A1", Beds: []models.Bed{{ID: "A1-1", Occupant: &models.Occupant{Name: "Alice"}}}},
		{ID: "A2", Beds: []models.Bed{{ID: "A2-1", Occupant: &models.Occupant{Name: "Bob", WasForced: true}}}},
		{ID: "A3", Beds: []models.Bed{{ID: "A3-1"}}},
	}

	conflicted := ConflictBungalows(bungalows)
	if len(conflicted) != 1 || conflicted[0].ID != "A2" {
		t.Errorf("Expected only the bungalow with a forced occupant, got %+v", conflicted)
	}
}

func TestOccupancy(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	mustCreateStage(t, store, "s1", day(10), day(20))
	mustCreateStage(t, store, "s2", day(18), day(22))
	mustCreateRegistration(t, store, "r1", "s1", "Alice")
	mustCreateRegistration(t, store, "r2", "s2", "Bob")

	if _, err := engine.Assign(ctx, "r1", "A1", "A1-1", false); err != nil {
		t.Fatalf("Assign r1: %v", err)
	}
	if _, err := engine.Assign(ctx, "r2", "A1", "A1-2", false); err != nil {
		t.Fatalf("Assign r2: %v", err)
	}

	summary, err := engine.Occupancy(ctx, nil)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}

	// Default topology: three villages of six bungalows, type A holds
	// three beds and type B two.
	if summary.TotalBungalows != 18 {
		t.Errorf("Expected 18 bungalows, got %d", summary.TotalBungalows)
	}
	if summary.TotalBeds != 48 {
		t.Errorf("Expected 48 beds, got %d", summary.TotalBeds)
	}
	if summary.OccupiedBeds != 2 || summary.AvailableBeds != 46 {
		t.Errorf("Expected 2 occupied / 46 available, got %d / %d",
			summary.OccupiedBeds, summary.AvailableBeds)
	}
	if summary.AvailableBungalows != 18 {
		t.Errorf("Expected no full bungalows, got %d available", summary.AvailableBungalows)
	}
	if summary.ConflictBungalows != 0 {
		t.Errorf("Expected no forced occupants, got %d conflict bungalows", summary.ConflictBungalows)
	}

	// A window excluding both occupants empties the occupied count.
	window := interval(1, 5)
	summary, err = engine.Occupancy(ctx, &window)
	if err != nil {
		t.Fatalf("Occupancy with window: %v", err)
	}
	if summary.OccupiedBeds != 0 || summary.AvailableBeds != 48 {
		t.Errorf("Expected the window to exclude both occupants, got %d occupied", summary.OccupiedBeds)
	}
}
