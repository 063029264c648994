package memory

import (
	"context"
	"testing"
	"time"

	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func seedStage(t *testing.T, s *Store, id string, start, end time.Time) {
	t.Helper()
	err := s.CreateStage(context.Background(), &models.Stage{
		ID:        id,
		Name:      "Stage " + id,
		Type:      models.StageTypeStage,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("CreateStage(%s): %v", id, err)
	}
}

func TestSeededTopology(t *testing.T) {
	s := NewStore()

	bungalows, err := s.ListBungalows(context.Background())
	if err != nil {
		t.Fatalf("ListBungalows: %v", err)
	}
	if len(bungalows) != 18 {
		t.Fatalf("Expected 18 bungalows, got %d", len(bungalows))
	}

	// Village order A, B, C with names sorted inside each village.
	if bungalows[0].ID != "A1" || bungalows[6].ID != "B1" || bungalows[12].ID != "C1" {
		t.Errorf("Unexpected bungalow ordering: %s, %s, %s",
			bungalows[0].ID, bungalows[6].ID, bungalows[12].ID)
	}
	if got := bungalows[6].Capacity(); got != 2 {
		t.Errorf("Expected village B bungalows to hold 2, got %d", got)
	}
}

func TestRegistrationDenormalizesStage(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seedStage(t, s, "s1", day(10), day(20))
	err := s.CreateRegistration(ctx, &models.Registration{
		ID: "r1", StageID: "s1", ParticipantName: "Alice",
	})
	if err != nil {
		t.Fatalf("CreateRegistration: %v", err)
	}

	reg, err := s.GetRegistration(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRegistration: %v", err)
	}
	if reg.StageName != "Stage s1" || !reg.StageStart.Equal(day(10)) || !reg.StageEnd.Equal(day(20)) {
		t.Errorf("Expected stage fields denormalized, got %+v", reg)
	}
	if !reg.EffectiveInterval().Start.Equal(day(10)) {
		t.Errorf("Expected effective interval from stage dates, got %+v", reg.EffectiveInterval())
	}

	if err := s.CreateRegistration(ctx, &models.Registration{StageID: "missing", ParticipantName: "Bob"}); err == nil {
		t.Error("Expected creating a registration for an unknown stage to fail")
	}
}

func TestListRegistrationsFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seedStage(t, s, "s1", day(10), day(20))
	seedStage(t, s, "s2", day(25), day(30))
	s.CreateRegistration(ctx, &models.Registration{ID: "r1", StageID: "s1", ParticipantName: "Alice"})
	s.CreateRegistration(ctx, &models.Registration{ID: "r2", StageID: "s1", ParticipantName: "Bob"})
	s.CreateRegistration(ctx, &models.Registration{ID: "r3", StageID: "s2", ParticipantName: "Carol"})

	if err := s.AssignBed(ctx, "r1", "A1", "A1-1", false); err != nil {
		t.Fatalf("AssignBed: %v", err)
	}

	regs, _ := s.ListRegistrations(ctx, storage.RegistrationFilter{StageID: "s1"})
	if len(regs) != 2 {
		t.Errorf("Expected 2 registrations in s1, got %d", len(regs))
	}

	regs, _ = s.ListRegistrations(ctx, storage.RegistrationFilter{UnassignedOnly: true})
	if len(regs) != 2 {
		t.Errorf("Expected 2 unassigned registrations, got %d", len(regs))
	}
	// ID ordering is stable.
	if regs[0].ID != "r2" || regs[1].ID != "r3" {
		t.Errorf("Expected ID-ordered output, got %s, %s", regs[0].ID, regs[1].ID)
	}
}

func TestUpdateRegistrationPreservesAssignment(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seedStage(t, s, "s1", day(10), day(20))
	s.CreateRegistration(ctx, &models.Registration{ID: "r1", StageID: "s1", ParticipantName: "Alice"})
	s.AssignBed(ctx, "r1", "A1", "A1-1", true)

	err := s.UpdateRegistration(ctx, &models.Registration{
		ID: "r1", StageID: "s1", ParticipantName: "Alice Renamed",
	})
	if err != nil {
		t.Fatalf("UpdateRegistration: %v", err)
	}

	reg, _ := s.GetRegistration(ctx, "r1")
	if reg.ParticipantName != "Alice Renamed" {
		t.Errorf("Expected the rename to stick, got %q", reg.ParticipantName)
	}
	if !reg.Assigned() || !reg.WasForced {
		t.Errorf("Expected assignment state preserved across update, got %+v", reg)
	}
}

func TestClearAssignmentIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.ClearAssignment(ctx, "missing"); err != nil {
		t.Errorf("Expected clearing an unknown registration to be a no-op, got %v", err)
	}
}

func TestPlaceAndRemoveOccupant(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	occ := models.Occupant{RegistrationID: "r1", Name: "Alice", Arrival: day(10), Departure: day(20)}
	if err := s.PlaceOccupant(ctx, "A1", "A1-2", occ); err != nil {
		t.Fatalf("PlaceOccupant: %v", err)
	}

	bg, _ := s.GetBungalow(ctx, "A1")
	bed := bg.FindBed("A1-2")
	if bed.Occupant == nil || bed.Occupant.Name != "Alice" {
		t.Fatalf("Expected occupant on A1-2, got %+v", bed.Occupant)
	}

	// Reads return copies: mutating the returned bungalow must not leak
	// back into the store.
	bed.Occupant.Name = "Mallory"
	again, _ := s.GetBungalow(ctx, "A1")
	if again.FindBed("A1-2").Occupant.Name != "Alice" {
		t.Error("Expected store state isolated from returned copies")
	}

	if err := s.RemoveOccupant(ctx, "A1", "A1-2"); err != nil {
		t.Fatalf("RemoveOccupant: %v", err)
	}
	bg, _ = s.GetBungalow(ctx, "A1")
	if bg.FindBed("A1-2").Occupant != nil {
		t.Error("Expected A1-2 freed")
	}

	if err := s.PlaceOccupant(ctx, "Z9", "Z9-1", occ); err == nil {
		t.Error("Expected placing into an unknown bungalow to fail")
	}
}

func TestListUpcomingStages(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seedStage(t, s, "past", day(-20), day(-10))
	seedStage(t, s, "running", day(-2), day(5))
	seedStage(t, s, "future", day(10), day(20))

	stages, err := s.ListUpcomingStages(ctx, day(1))
	if err != nil {
		t.Fatalf("ListUpcomingStages: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("Expected 2 upcoming stages, got %d", len(stages))
	}
	// A stage already running still counts as upcoming until it ends.
	if stages[0].ID != "running" || stages[1].ID != "future" {
		t.Errorf("Unexpected ordering: %s, %s", stages[0].ID, stages[1].ID)
	}
}
