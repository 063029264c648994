package assignment

import (
	"fmt"
	"time"
)

// ValidationError reports a missing or invalid registration, bungalow
// or bed. It is a hard failure; the caller must not retry unchanged.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CapacityError reports that a bungalow is already at its declared
// capacity. It is a hard failure; force does not override it.
type CapacityError struct {
	BungalowID    string
	Capacity      int
	OccupantCount int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("bungalow %s is full (%d/%d beds occupied)", e.BungalowID, e.OccupantCount, e.Capacity)
}

// ConflictError reports that the target bed's occupant overlaps the
// candidate's presence interval. It is a soft failure: the caller may
// re-invoke the exact same assignment with force=true to commit anyway,
// which records the assignment as forced. The fields carry everything
// needed to render a confirmation prompt.
type ConflictError struct {
	BungalowID         string
	BedID              string
	OccupantName       string
	OccupantStage      string
	OccupantArrival    time.Time
	OccupantDeparture  time.Time
	CandidateArrival   time.Time
	CandidateDeparture time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"bed %s in bungalow %s is occupied by %s (%s) from %s to %s",
		e.BedID, e.BungalowID, e.OccupantName, e.OccupantStage,
		e.OccupantArrival.Format("2006-01-02"), e.OccupantDeparture.Format("2006-01-02"),
	)
}
