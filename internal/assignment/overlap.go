// Package assignment implements the bed assignment engine: conflict
// checking, manual and bulk assignment, and the derived occupancy views.
package assignment

import (
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// Overlaps reports whether two closed date intervals overlap. The test
// is inclusive on both boundaries: a participant departing on day X and
// another arriving on day X conflict. Same-day bed turnover is never
// assumed safe.
func Overlaps(a, b models.Interval) bool {
	return !a.End.Before(b.Start) && !a.Start.After(b.End)
}

// BedAvailability is the result of checking a bed against a candidate
// presence interval.
type BedAvailability struct {
	Available bool
	// Conflicting is the blocking occupant when Available is false.
	Conflicting *models.Occupant
}

// CheckBedAvailable decides whether a bed can take the candidate
// interval. A free bed is available. An occupied bed is available only
// if the occupant's recorded interval does not overlap the candidate's;
// committing then replaces the previous snapshot, since a bed holds a
// single occupant record at a time.
func CheckBedAvailable(bed *models.Bed, candidate models.Interval) BedAvailability {
	if bed.Occupant == nil {
		return BedAvailability{Available: true}
	}
	if Overlaps(bed.Occupant.Interval(), candidate) {
		return BedAvailability{Available: false, Conflicting: bed.Occupant}
	}
	return BedAvailability{Available: true}
}

// CapacityStatus is the result of checking a bungalow's occupancy
// against its declared capacity.
type CapacityStatus struct {
	Full          bool
	OccupantCount int
	Capacity      int
}

// CheckCapacity counts beds holding any occupant, regardless of dates,
// against the bungalow's type-derived capacity. A full bungalow rejects
// further assignment no matter how the intervals line up.
func CheckCapacity(bungalow *models.Bungalow) CapacityStatus {
	count := bungalow.OccupiedBeds()
	capacity := bungalow.Capacity()
	return CapacityStatus{
		Full:          count >= capacity,
		OccupantCount: count,
		Capacity:      capacity,
	}
}
