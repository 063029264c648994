// Package memory provides an in-memory fixture store implementing the
// same data-access surface as the SQLite-backed store. It backs tests
// and the demo configuration; it is never the production store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// Store holds all data in maps guarded by a single RWMutex. Reads
// return copies so callers can never alias internal state.
type Store struct {
	mu            sync.RWMutex
	stages        map[string]models.Stage
	registrations map[string]models.Registration
	bungalows     map[string]models.Bungalow
}

var _ storage.Store = (*Store)(nil)

// NewStore creates an empty in-memory store seeded with the default
// bungalow topology.
func NewStore() *Store {
	s := &Store{
		stages:        make(map[string]models.Stage),
		registrations: make(map[string]models.Registration),
		bungalows:     make(map[string]models.Bungalow),
	}
	for _, bg := range models.DefaultTopology() {
		s.bungalows[bg.ID] = bg
	}
	return s
}

// ── Stages ───────────────────────────────────────────────────────────

// CreateStage inserts a new stage.
func (s *Store) CreateStage(_ context.Context, stage *models.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	stage.CreatedAt = time.Now().UTC()
	stage.UpdatedAt = stage.CreatedAt
	s.stages[stage.ID] = *stage
	return nil
}

// GetStage retrieves a stage by ID. Returns nil when not found.
func (s *Store) GetStage(_ context.Context, id string) (*models.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stage, ok := s.stages[id]
	if !ok {
		return nil, nil
	}
	stage.ParticipantCount = s.countRegistrationsLocked(id)
	return &stage, nil
}

// ListStages retrieves all stages ordered by start date.
func (s *Store) ListStages(_ context.Context) ([]models.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listStagesLocked(func(models.Stage) bool { return true }), nil
}

// ListUpcomingStages retrieves stages that have not ended before the
// given time.
func (s *Store) ListUpcomingStages(_ context.Context, from time.Time) ([]models.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listStagesLocked(func(st models.Stage) bool {
		return !st.EndDate.Before(from)
	}), nil
}

// UpdateStage updates an existing stage.
func (s *Store) UpdateStage(_ context.Context, stage *models.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.stages[stage.ID]
	if !ok {
		return fmt.Errorf("stage not found: %s", stage.ID)
	}
	stage.CreatedAt = existing.CreatedAt
	stage.UpdatedAt = time.Now().UTC()
	s.stages[stage.ID] = *stage
	return nil
}

// DeleteStage removes a stage and its registrations.
func (s *Store) DeleteStage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stages[id]; !ok {
		return fmt.Errorf("stage not found: %s", id)
	}
	delete(s.stages, id)
	for regID, reg := range s.registrations {
		if reg.StageID == id {
			delete(s.registrations, regID)
		}
	}
	return nil
}

func (s *Store) listStagesLocked(keep func(models.Stage) bool) []models.Stage {
	var stages []models.Stage
	for _, stage := range s.stages {
		if keep(stage) {
			stage.ParticipantCount = s.countRegistrationsLocked(stage.ID)
			stages = append(stages, stage)
		}
	}
	sort.Slice(stages, func(i, j int) bool {
		if !stages[i].StartDate.Equal(stages[j].StartDate) {
			return stages[i].StartDate.Before(stages[j].StartDate)
		}
		return stages[i].ID < stages[j].ID
	})
	return stages
}

func (s *Store) countRegistrationsLocked(stageID string) int {
	n := 0
	for _, reg := range s.registrations {
		if reg.StageID == stageID {
			n++
		}
	}
	return n
}

// ── Registrations ────────────────────────────────────────────────────

// CreateRegistration inserts a new registration. The parent stage must
// exist so the effective interval can be resolved.
func (s *Store) CreateRegistration(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage, ok := s.stages[reg.StageID]
	if !ok {
		return fmt.Errorf("stage not found: %s", reg.StageID)
	}

	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.StageName = stage.Name
	reg.StageStart = stage.StartDate
	reg.StageEnd = stage.EndDate
	reg.CreatedAt = time.Now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	s.registrations[reg.ID] = *reg
	return nil
}

// GetRegistration retrieves a registration by ID. Returns nil when not
// found.
func (s *Store) GetRegistration(_ context.Context, id string) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[id]
	if !ok {
		return nil, nil
	}
	s.fillStageLocked(&reg)
	return &reg, nil
}

// ListRegistrations retrieves registrations matching the filter,
// ordered by registration ID.
func (s *Store) ListRegistrations(_ context.Context, filter storage.RegistrationFilter) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var regs []models.Registration
	for _, reg := range s.registrations {
		if filter.StageID != "" && reg.StageID != filter.StageID {
			continue
		}
		if filter.UnassignedOnly && reg.Assigned() {
			continue
		}
		s.fillStageLocked(&reg)
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs, nil
}

// UpdateRegistration updates participant and presence fields.
func (s *Store) UpdateRegistration(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.registrations[reg.ID]
	if !ok {
		return fmt.Errorf("registration not found: %s", reg.ID)
	}
	reg.AssignedBungalowID = existing.AssignedBungalowID
	reg.AssignedBedID = existing.AssignedBedID
	reg.WasForced = existing.WasForced
	reg.CreatedAt = existing.CreatedAt
	reg.UpdatedAt = time.Now().UTC()
	s.registrations[reg.ID] = *reg
	return nil
}

// DeleteRegistration removes a registration by ID.
func (s *Store) DeleteRegistration(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registrations[id]; !ok {
		return fmt.Errorf("registration not found: %s", id)
	}
	delete(s.registrations, id)
	return nil
}

// AssignBed records the registration's side of a committed assignment.
func (s *Store) AssignBed(_ context.Context, regID, bungalowID, bedID string, forced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[regID]
	if !ok {
		return fmt.Errorf("registration not found: %s", regID)
	}
	reg.AssignedBungalowID = &bungalowID
	reg.AssignedBedID = &bedID
	reg.WasForced = forced
	reg.UpdatedAt = time.Now().UTC()
	s.registrations[regID] = reg
	return nil
}

// ClearAssignment resets the registration to unassigned. Idempotent.
func (s *Store) ClearAssignment(_ context.Context, regID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registrations[regID]
	if !ok {
		return nil
	}
	reg.AssignedBungalowID = nil
	reg.AssignedBedID = nil
	reg.WasForced = false
	reg.UpdatedAt = time.Now().UTC()
	s.registrations[regID] = reg
	return nil
}

func (s *Store) fillStageLocked(reg *models.Registration) {
	if stage, ok := s.stages[reg.StageID]; ok {
		reg.StageName = stage.Name
		reg.StageStart = stage.StartDate
		reg.StageEnd = stage.EndDate
	}
}

// ── Bungalows ────────────────────────────────────────────────────────

// ListBungalows retrieves all bungalows with their beds, ordered by
// village and name.
func (s *Store) ListBungalows(_ context.Context) ([]models.Bungalow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bungalows := make([]models.Bungalow, 0, len(s.bungalows))
	for _, bg := range s.bungalows {
		bungalows = append(bungalows, copyBungalow(bg))
	}
	sort.Slice(bungalows, func(i, j int) bool {
		if bungalows[i].Village != bungalows[j].Village {
			return bungalows[i].Village < bungalows[j].Village
		}
		if bungalows[i].Name != bungalows[j].Name {
			return bungalows[i].Name < bungalows[j].Name
		}
		return bungalows[i].ID < bungalows[j].ID
	})
	return bungalows, nil
}

// GetBungalow retrieves a single bungalow with its beds. Returns nil
// when not found.
func (s *Store) GetBungalow(_ context.Context, id string) (*models.Bungalow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bg, ok := s.bungalows[id]
	if !ok {
		return nil, nil
	}
	out := copyBungalow(bg)
	return &out, nil
}

// PlaceOccupant writes an occupant snapshot onto a bed.
func (s *Store) PlaceOccupant(_ context.Context, bungalowID, bedID string, occ models.Occupant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bg, ok := s.bungalows[bungalowID]
	if !ok {
		return fmt.Errorf("bungalow not found: %s", bungalowID)
	}
	for i := range bg.Beds {
		if bg.Beds[i].ID == bedID {
			snapshot := occ
			bg.Beds[i].Occupant = &snapshot
			s.bungalows[bungalowID] = bg
			return nil
		}
	}
	return fmt.Errorf("bed not found: %s/%s", bungalowID, bedID)
}

// RemoveOccupant frees a bed. Freeing an already-free bed is a no-op.
func (s *Store) RemoveOccupant(_ context.Context, bungalowID, bedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bg, ok := s.bungalows[bungalowID]
	if !ok {
		return fmt.Errorf("bungalow not found: %s", bungalowID)
	}
	for i := range bg.Beds {
		if bg.Beds[i].ID == bedID {
			bg.Beds[i].Occupant = nil
			s.bungalows[bungalowID] = bg
			return nil
		}
	}
	return fmt.Errorf("bed not found: %s/%s", bungalowID, bedID)
}

func copyBungalow(bg models.Bungalow) models.Bungalow {
	out := bg
	out.Beds = make([]models.Bed, len(bg.Beds))
	copy(out.Beds, bg.Beds)
	for i := range out.Beds {
		if out.Beds[i].Occupant != nil {
			occ := *out.Beds[i].Occupant
			out.Beds[i].Occupant = &occ
		}
	}
	if bg.Amenities != nil {
		out.Amenities = append([]string(nil), bg.Amenities...)
	}
	return out
}
