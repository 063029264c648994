// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Stage represents a camp event (a course session or a resident period)
// that participants register for.
type Stage struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Capacity         int       `json:"capacity"`
	ParticipantCount int       `json:"participant_count"`
	Encadrants       string    `json:"encadrants,omitempty"`
	MusicianCount    int       `json:"musician_count"`
	Constraints      string    `json:"constraints,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Stage type constants
const (
	StageTypeStage    = "stage"
	StageTypeResident = "resident"
	StageTypeOther    = "other"
)

// Interval returns the stage's own presence window.
func (s *Stage) Interval() Interval {
	return Interval{Start: s.StartDate, End: s.EndDate}
}

// IsUpcoming reports whether the stage has not yet ended at the given time.
func (s *Stage) IsUpcoming(now time.Time) bool {
	return !s.EndDate.Before(now)
}

// Interval is a closed date interval [Start, End].
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
