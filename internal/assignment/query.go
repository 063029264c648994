package assignment

import (
	"context"

	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// UnassignedRegistrations returns registrations with no bed assigned,
// optionally filtered by stage and by a date window. The window filter
// is applied at the stage level: a registration is kept when its
// stage's own dates overlap the window, not when its individual
// interval does.
func (e *Engine) UnassignedRegistrations(ctx context.Context, stageID string, window *models.Interval) ([]models.Registration, error) {
	regs, err := e.store.ListRegistrations(ctx, storage.RegistrationFilter{
		StageID:        stageID,
		UnassignedOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if window == nil {
		return regs, nil
	}

	filtered := regs[:0]
	for _, reg := range regs {
		stageWindow := models.Interval{Start: reg.StageStart, End: reg.StageEnd}
		if Overlaps(stageWindow, *window) {
			filtered = append(filtered, reg)
		}
	}
	return filtered, nil
}

// BungalowOccupants returns the bungalow's current bed occupants. When
// a window is supplied, an occupant is included only if its recorded
// interval overlaps the window, boundaries inclusive.
func BungalowOccupants(bungalow *models.Bungalow, window *models.Interval) []models.Occupant {
	var occupants []models.Occupant
	for i := range bungalow.Beds {
		occ := bungalow.Beds[i].Occupant
		if occ == nil {
			continue
		}
		if window != nil && !Overlaps(occ.Interval(), *window) {
			continue
		}
		occupants = append(occupants, *occ)
	}
	return occupants
}

// ConflictBungalows returns the bungalows where at least one bed holds
// a forced occupant.
func ConflictBungalows(bungalows []models.Bungalow) []models.Bungalow {
	var conflicted []models.Bungalow
	for i := range bungalows {
		if bungalows[i].HasForcedOccupant() {
			conflicted = append(conflicted, bungalows[i])
		}
	}
	return conflicted
}

// OccupancySummary aggregates the occupancy counters shown on the
// dashboard: bed totals, window-filtered occupancy, and the number of
// bungalows carrying a forced (conflicting) assignment.
type OccupancySummary struct {
	TotalBeds          int `json:"total_beds"`
	OccupiedBeds       int `json:"occupied_beds"`
	AvailableBeds      int `json:"available_beds"`
	TotalBungalows     int `json:"total_bungalows"`
	AvailableBungalows int `json:"available_bungalows"`
	ConflictBungalows  int `json:"conflict_bungalows"`
}

// Occupancy computes the occupancy summary over the whole bungalow
// pool, counting occupants inside the window when one is given.
func (e *Engine) Occupancy(ctx context.Context, window *models.Interval) (*OccupancySummary, error) {
	bungalows, err := e.store.ListBungalows(ctx)
	if err != nil {
		return nil, err
	}

	summary := &OccupancySummary{TotalBungalows: len(bungalows)}
	for i := range bungalows {
		bungalow := &bungalows[i]
		summary.TotalBeds += len(bungalow.Beds)
		summary.OccupiedBeds += len(BungalowOccupants(bungalow, window))
		if !bungalow.IsFull() {
			summary.AvailableBungalows++
		}
		if bungalow.HasForcedOccupant() {
			summary.ConflictBungalows++
		}
	}
	summary.AvailableBeds = summary.TotalBeds - summary.OccupiedBeds

	return summary, nil
}
