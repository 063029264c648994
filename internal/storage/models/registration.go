package models

import (
	"time"
)

// Registration represents one participant's enrollment in one stage.
// The participant's presence window defaults to the stage dates but can
// be overridden with an explicit arrival and/or departure.
type Registration struct {
	ID      string `json:"id"`
	StageID string `json:"stage_id"`

	// Stage fields denormalized by the store on read, used to resolve
	// the effective presence interval.
	StageName  string    `json:"stage_name"`
	StageStart time.Time `json:"stage_start"`
	StageEnd   time.Time `json:"stage_end"`

	ParticipantName string `json:"participant_name"`
	Gender          string `json:"gender,omitempty"`
	Age             int    `json:"age,omitempty"`
	Nationality     string `json:"nationality,omitempty"`
	Languages       string `json:"languages,omitempty"`
	Role            string `json:"role"`

	ArrivalDate   *time.Time `json:"arrival_date,omitempty"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`

	AssignedBungalowID *string `json:"assigned_bungalow_id,omitempty"`
	AssignedBedID      *string `json:"assigned_bed_id,omitempty"`
	WasForced          bool    `json:"was_forced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registration role constants
const (
	RoleParticipant = "participant"
	RoleEncadrant   = "encadrant"
	RoleMusician    = "musician"
	RoleStaff       = "staff"
)

// EffectiveArrival returns the explicit arrival date if set, else the
// stage's start date.
func (r *Registration) EffectiveArrival() time.Time {
	if r.ArrivalDate != nil {
		return *r.ArrivalDate
	}
	return r.StageStart
}

// EffectiveDeparture returns the explicit departure date if set, else
// the stage's end date.
func (r *Registration) EffectiveDeparture() time.Time {
	if r.DepartureDate != nil {
		return *r.DepartureDate
	}
	return r.StageEnd
}

// EffectiveInterval returns the presence window used for all occupancy
// and conflict decisions.
func (r *Registration) EffectiveInterval() Interval {
	return Interval{Start: r.EffectiveArrival(), End: r.EffectiveDeparture()}
}

// Assigned reports whether the registration currently holds a bed.
func (r *Registration) Assigned() bool {
	return r.AssignedBungalowID != nil && r.AssignedBedID != nil
}
