package assignment

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
	"github.com/camp-lodging-manager/backend/internal/websocket"
)

// Engine orchestrates manual and bulk bed assignment. All mutating
// operations are serialized behind a single mutex: the stores have no
// locking of their own, and two assignments racing for one bed must
// never both commit.
type Engine struct {
	store       storage.Store
	broadcaster *websocket.EventBroadcaster
	mu          sync.Mutex
	now         func() time.Time
}

// NewEngine creates an assignment engine over a store. The broadcaster
// may be nil; events are then skipped.
func NewEngine(store storage.Store, broadcaster *websocket.EventBroadcaster) *Engine {
	return &Engine{
		store:       store,
		broadcaster: broadcaster,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AssignmentResult describes a committed assignment.
type AssignmentResult struct {
	Registration *models.Registration `json:"registration"`
	BungalowID   string               `json:"bungalow_id"`
	BedID        string               `json:"bed_id"`
	WasForced    bool                 `json:"was_forced"`
}

// Assign places a registration into a specific bed.
//
// Without force, a bed whose occupant overlaps the registration's
// effective interval is refused with a ConflictError; the caller may
// repeat the call with force=true to commit anyway, which flags the
// assignment as forced on both the registration and the bed snapshot.
// Re-assigning an already-assigned registration first frees its old bed.
func (e *Engine) Assign(ctx context.Context, regID, bungalowID, bedID string, force bool) (*AssignmentResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.store.GetRegistration(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, validationErrorf("registration not found: %s", regID)
	}

	bungalow, err := e.store.GetBungalow(ctx, bungalowID)
	if err != nil {
		return nil, err
	}
	if bungalow == nil {
		return nil, validationErrorf("bungalow not found: %s", bungalowID)
	}
	if bungalow.FindBed(bedID) == nil {
		return nil, validationErrorf("bed %s does not belong to bungalow %s", bedID, bungalowID)
	}

	// Re-assignment implicitly frees the old bed before the target is
	// evaluated, so moving within one bungalow does not trip capacity.
	if reg.Assigned() {
		if err := e.release(ctx, reg); err != nil {
			return nil, err
		}
		bungalow, err = e.store.GetBungalow(ctx, bungalowID)
		if err != nil {
			return nil, err
		}
		if bungalow == nil {
			return nil, validationErrorf("bungalow not found: %s", bungalowID)
		}
	}

	bed := bungalow.FindBed(bedID)
	if bed == nil {
		return nil, validationErrorf("bed %s does not belong to bungalow %s", bedID, bungalowID)
	}

	if status := CheckCapacity(bungalow); status.Full && bed.Occupant == nil {
		return nil, &CapacityError{
			BungalowID:    bungalowID,
			Capacity:      status.Capacity,
			OccupantCount: status.OccupantCount,
		}
	}

	interval := reg.EffectiveInterval()
	availability := CheckBedAvailable(bed, interval)
	if !availability.Available && !force {
		occ := availability.Conflicting
		return nil, &ConflictError{
			BungalowID:         bungalowID,
			BedID:              bedID,
			OccupantName:       occ.Name,
			OccupantStage:      occ.StageName,
			OccupantArrival:    occ.Arrival,
			OccupantDeparture:  occ.Departure,
			CandidateArrival:   interval.Start,
			CandidateDeparture: interval.End,
		}
	}

	forced := !availability.Available && force
	return e.commit(ctx, reg, bungalow, bed, forced)
}

// commit writes both sides of an assignment: the occupant snapshot on
// the bed and the assignment fields on the registration. A bed holds a
// single snapshot, so a displaced occupant's registration is reset to
// unassigned to keep the two sides symmetric.
func (e *Engine) commit(ctx context.Context, reg *models.Registration, bungalow *models.Bungalow, bed *models.Bed, forced bool) (*AssignmentResult, error) {
	if prev := bed.Occupant; prev != nil && prev.RegistrationID != reg.ID {
		if err := e.store.ClearAssignment(ctx, prev.RegistrationID); err != nil {
			return nil, err
		}
	}

	occ := models.OccupantFromRegistration(reg, forced)
	if err := e.store.PlaceOccupant(ctx, bungalow.ID, bed.ID, occ); err != nil {
		return nil, err
	}
	if err := e.store.AssignBed(ctx, reg.ID, bungalow.ID, bed.ID, forced); err != nil {
		return nil, err
	}

	reg.AssignedBungalowID = &bungalow.ID
	bedID := bed.ID
	reg.AssignedBedID = &bedID
	reg.WasForced = forced

	if e.broadcaster != nil {
		e.broadcaster.BroadcastAssignmentCommitted(reg, bungalow.ID, bed.ID, forced)
	}

	return &AssignmentResult{
		Registration: reg,
		BungalowID:   bungalow.ID,
		BedID:        bed.ID,
		WasForced:    forced,
	}, nil
}

// Unassign frees a registration's bed and resets its assignment state.
// Unassigning an already-unassigned registration is a no-op success.
func (e *Engine) Unassign(ctx context.Context, regID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, err := e.store.GetRegistration(ctx, regID)
	if err != nil {
		return err
	}
	if reg == nil {
		return validationErrorf("registration not found: %s", regID)
	}
	if !reg.Assigned() {
		return nil
	}

	return e.release(ctx, reg)
}

// release frees the bed held by the registration. The bed is only
// cleared when its occupant actually points back at this registration.
func (e *Engine) release(ctx context.Context, reg *models.Registration) error {
	bungalowID := *reg.AssignedBungalowID
	bedID := *reg.AssignedBedID

	bungalow, err := e.store.GetBungalow(ctx, bungalowID)
	if err != nil {
		return err
	}
	if bungalow != nil {
		if bed := bungalow.FindBed(bedID); bed != nil &&
			bed.Occupant != nil && bed.Occupant.RegistrationID == reg.ID {
			if err := e.store.RemoveOccupant(ctx, bungalowID, bedID); err != nil {
				return err
			}
		}
	}

	if err := e.store.ClearAssignment(ctx, reg.ID); err != nil {
		return err
	}

	reg.AssignedBungalowID = nil
	reg.AssignedBedID = nil
	reg.WasForced = false

	if e.broadcaster != nil {
		e.broadcaster.BroadcastAssignmentReleased(reg.ID, bungalowID, bedID)
	}

	return nil
}

// Auto-assign failure reasons.
const (
	ReasonNoCapacity        = "no_capacity"
	ReasonNoConflictFreeBed = "no_conflict_free_bed"
)

// AutoAssignment records one successful placement in a bulk run.
type AutoAssignment struct {
	RegistrationID  string `json:"registration_id"`
	ParticipantName string `json:"participant_name"`
	BungalowID      string `json:"bungalow_id"`
	BedID           string `json:"bed_id"`
}

// AutoAssignFailure records one registration the bulk run could not place.
type AutoAssignFailure struct {
	RegistrationID  string `json:"registration_id"`
	ParticipantName string `json:"participant_name"`
	Reason          string `json:"reason"`
}

// AutoAssignSummary is the per-stage result of a bulk run.
type AutoAssignSummary struct {
	StageID       string              `json:"stage_id"`
	StageName     string              `json:"stage_name"`
	TotalAssigned int                 `json:"total_assigned"`
	TotalFailed   int                 `json:"total_failed"`
	SuccessRate   int                 `json:"success_rate"`
	Assignments   []AutoAssignment    `json:"assignments"`
	Failures      []AutoAssignFailure `json:"failures"`
}

// AutoAssignStage places every unassigned registration of a stage into
// the first free, conflict-free bed, scanning bungalows in village/name
// order and registrations in ID order so results are reproducible. Auto
// mode never forces and never displaces an existing occupant; a
// registration that cannot be placed is recorded as a failure and the
// run continues.
func (e *Engine) AutoAssignStage(ctx context.Context, stageID string) (*AutoAssignSummary, error) {
	stage, err := e.store.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, validationErrorf("stage not found: %s", stageID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	regs, err := e.store.ListRegistrations(ctx, storage.RegistrationFilter{
		StageID:        stageID,
		UnassignedOnly: true,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })

	summary := &AutoAssignSummary{
		StageID:     stageID,
		StageName:   stage.Name,
		Assignments: []AutoAssignment{},
		Failures:    []AutoAssignFailure{},
	}

	for i := range regs {
		reg := &regs[i]
		placed, reason, err := e.placeFirstFit(ctx, reg)
		if err != nil {
			return nil, err
		}
		if placed != nil {
			summary.TotalAssigned++
			summary.Assignments = append(summary.Assignments, AutoAssignment{
				RegistrationID:  reg.ID,
				ParticipantName: reg.ParticipantName,
				BungalowID:      placed.BungalowID,
				BedID:           placed.BedID,
			})
		} else {
			summary.TotalFailed++
			summary.Failures = append(summary.Failures, AutoAssignFailure{
				RegistrationID:  reg.ID,
				ParticipantName: reg.ParticipantName,
				Reason:          reason,
			})
		}
	}

	summary.SuccessRate = successRate(summary.TotalAssigned, summary.TotalFailed)

	if e.broadcaster != nil {
		e.broadcaster.BroadcastAutoAssignCompleted(
			stageID, stage.Name,
			summary.TotalAssigned, summary.TotalFailed, summary.SuccessRate,
		)
	}

	return summary, nil
}

// placeFirstFit scans the bungalow pool for the first bed that can take
// the registration without a conflict. The pool is re-read from the
// store for every registration so each commit is validated against
// fresh occupancy, never a stale batch snapshot.
func (e *Engine) placeFirstFit(ctx context.Context, reg *models.Registration) (*AssignmentResult, string, error) {
	bungalows, err := e.store.ListBungalows(ctx)
	if err != nil {
		return nil, "", err
	}

	interval := reg.EffectiveInterval()
	sawRoom := false

	for i := range bungalows {
		bungalow := &bungalows[i]
		if CheckCapacity(bungalow).Full {
			continue
		}
		sawRoom = true

		for j := range bungalow.Beds {
			bed := &bungalow.Beds[j]
			if bed.Occupant != nil {
				continue
			}
			if !CheckBedAvailable(bed, interval).Available {
				continue
			}

			result, err := e.commit(ctx, reg, bungalow, bed, false)
			if err != nil {
				return nil, "", err
			}
			return result, "", nil
		}
	}

	if sawRoom {
		return nil, ReasonNoConflictFreeBed, nil
	}
	return nil, ReasonNoCapacity, nil
}

// StageAutoAssignResult is one stage's outcome in an all-stages run.
type StageAutoAssignResult struct {
	StageID   string             `json:"stage_id"`
	StageName string             `json:"stage_name"`
	Success   bool               `json:"success"`
	Summary   *AutoAssignSummary `json:"summary,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// AutoAssignAllUpcoming runs the bulk assignment for every upcoming
// stage independently. One stage's failure is recorded and never aborts
// the remaining stages.
func (e *Engine) AutoAssignAllUpcoming(ctx context.Context) ([]StageAutoAssignResult, error) {
	stages, err := e.store.ListUpcomingStages(ctx, e.now())
	if err != nil {
		return nil, err
	}

	results := make([]StageAutoAssignResult, 0, len(stages))
	for _, stage := range stages {
		summary, err := e.AutoAssignStage(ctx, stage.ID)
		if err != nil {
			log.Printf("Auto-assign failed for stage %s (%s): %v", stage.ID, stage.Name, err)
			if e.broadcaster != nil {
				e.broadcaster.BroadcastAutoAssignError(stage.ID, stage.Name, err)
			}
			results = append(results, StageAutoAssignResult{
				StageID:   stage.ID,
				StageName: stage.Name,
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}

		results = append(results, StageAutoAssignResult{
			StageID:   stage.ID,
			StageName: stage.Name,
			Success:   true,
			Summary:   summary,
		})
	}

	return results, nil
}

// successRate returns round(100 * assigned / (assigned + failed)),
// and 0 when there were no candidates at all.
func successRate(assigned, failed int) int {
	total := assigned + failed
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(assigned) / float64(total)))
}
