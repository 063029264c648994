package models

import (
	"time"
)

// Village identifies one of the three camp villages.
type Village string

const (
	VillageA Village = "A"
	VillageB Village = "B"
	VillageC Village = "C"
)

// Bungalow type constants. The type determines the bed layout:
// type A has 3 single beds, type B has 1 single and 1 double.
const (
	BungalowTypeA = "A"
	BungalowTypeB = "B"
)

// Bed type constants
const (
	BedTypeSingle = "single"
	BedTypeDouble = "double"
)

// Bungalow represents one bungalow and its fixed set of beds.
// Bungalows are static topology: the assignment engine only ever
// changes bed occupancy, never the bungalows themselves.
type Bungalow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Village   Village   `json:"village"`
	Type      string    `json:"type"`
	Amenities []string  `json:"amenities,omitempty"`
	Beds      []Bed     `json:"beds"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Capacity returns the number of occupant slots, derived from the type.
// A double bed still contributes a single slot.
func (b *Bungalow) Capacity() int {
	if b.Type == BungalowTypeB {
		return 2
	}
	return 3
}

// OccupiedBeds counts beds that currently hold an occupant, regardless
// of dates. This is the count used for the capacity decision.
func (b *Bungalow) OccupiedBeds() int {
	n := 0
	for i := range b.Beds {
		if b.Beds[i].Occupant != nil {
			n++
		}
	}
	return n
}

// IsFull reports whether the bungalow has reached its capacity.
func (b *Bungalow) IsFull() bool {
	return b.OccupiedBeds() >= b.Capacity()
}

// HasForcedOccupant reports whether any bed holds an occupant that was
// assigned over a conflict.
func (b *Bungalow) HasForcedOccupant() bool {
	for i := range b.Beds {
		if occ := b.Beds[i].Occupant; occ != nil && occ.WasForced {
			return true
		}
	}
	return false
}

// FindBed returns the bed with the given ID, or nil if the bungalow has
// no such bed.
func (b *Bungalow) FindBed(bedID string) *Bed {
	for i := range b.Beds {
		if b.Beds[i].ID == bedID {
			return &b.Beds[i]
		}
	}
	return nil
}

// Bed is the smallest assignable occupancy unit. A bed holds at most
// one occupant snapshot at a time.
type Bed struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Occupant *Occupant `json:"occupant,omitempty"`
}

// Occupant is the snapshot of a registration recorded on a bed at
// commit time. The snapshot does not own the registration; the
// registration's effective interval at commit time is what justifies
// the occupancy.
type Occupant struct {
	RegistrationID string    `json:"registration_id"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender,omitempty"`
	Age            int       `json:"age,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	Languages      string    `json:"languages,omitempty"`
	Role           string    `json:"role,omitempty"`
	StageName      string    `json:"stage_name"`
	Arrival        time.Time `json:"arrival"`
	Departure      time.Time `json:"departure"`
	WasForced      bool      `json:"was_forced"`
}

// Interval returns the occupant's recorded presence window.
func (o *Occupant) Interval() Interval {
	return Interval{Start: o.Arrival, End: o.Departure}
}

// OccupantFromRegistration builds the snapshot recorded on a bed when a
// registration is committed to it.
func OccupantFromRegistration(r *Registration, forced bool) Occupant {
	return Occupant{
		RegistrationID: r.ID,
		Name:           r.ParticipantName,
		Gender:         r.Gender,
		Age:            r.Age,
		Nationality:    r.Nationality,
		Languages:      r.Languages,
		Role:           r.Role,
		StageName:      r.StageName,
		Arrival:        r.EffectiveArrival(),
		Departure:      r.EffectiveDeparture(),
		WasForced:      forced,
	}
}
