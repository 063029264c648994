package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
)

// AssignRequest is the payload for placing a registration into a bed.
type AssignRequest struct {
	BungalowID string `json:"bungalow_id"`
	BedID      string `json:"bed_id"`
	Force      bool   `json:"force"`
}

// ConflictDetails is the structured payload returned with a
// conflict_requires_confirmation error. It carries everything the
// caller needs to render a confirmation prompt and retry with force.
type ConflictDetails struct {
	BungalowID         string `json:"bungalow_id"`
	BedID              string `json:"bed_id"`
	OccupantName       string `json:"occupant_name"`
	OccupantStage      string `json:"occupant_stage"`
	OccupantArrival    string `json:"occupant_arrival"`
	OccupantDeparture  string `json:"occupant_departure"`
	CandidateArrival   string `json:"candidate_arrival"`
	CandidateDeparture string `json:"candidate_departure"`
}

// AssignRegistration places a registration into a specific bed. A
// conflicting bed answers 409 with conflict_requires_confirmation and
// the blocking occupant's details; repeating the call with force=true
// commits the assignment as forced.
func AssignRegistration(engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.BungalowID == "" || req.BedID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "bungalow_id and bed_id are required")
			return
		}

		result, err := engine.Assign(r.Context(), id, req.BungalowID, req.BedID, req.Force)
		if err != nil {
			writeAssignmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// UnassignRegistration frees a registration's bed. Unassigning an
// already-unassigned registration succeeds.
func UnassignRegistration(engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := engine.Unassign(r.Context(), id); err != nil {
			writeAssignmentError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// AutoAssignStage runs the bulk assignment for one stage.
func AutoAssignStage(engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		summary, err := engine.AutoAssignStage(r.Context(), id)
		if err != nil {
			writeAssignmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// AutoAssignAll runs the bulk assignment for every upcoming stage,
// isolating per-stage failures.
func AutoAssignAll(engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := engine.AutoAssignAllUpcoming(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Auto-assign failed")
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

// writeAssignmentError maps the engine's error taxonomy onto HTTP
// responses: validation failures are 404s, capacity and conflicts are
// 409s, with the conflict variant carrying its confirmation payload.
func writeAssignmentError(w http.ResponseWriter, err error) {
	var validationErr *assignment.ValidationError
	if errors.As(err, &validationErr) {
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, validationErr.Msg)
		return
	}

	var capacityErr *assignment.CapacityError
	if errors.As(err, &capacityErr) {
		middleware.WriteError(w, http.StatusConflict, middleware.ErrCapacityExceeded, capacityErr.Error())
		return
	}

	var conflictErr *assignment.ConflictError
	if errors.As(err, &conflictErr) {
		middleware.WriteErrorWithDetails(w, http.StatusConflict, middleware.ErrConflictConfirmation,
			conflictErr.Error(), ConflictDetails{
				BungalowID:         conflictErr.BungalowID,
				BedID:              conflictErr.BedID,
				OccupantName:       conflictErr.OccupantName,
				OccupantStage:      conflictErr.OccupantStage,
				OccupantArrival:    conflictErr.OccupantArrival.Format("2006-01-02"),
				OccupantDeparture:  conflictErr.OccupantDeparture.Format("2006-01-02"),
				CandidateArrival:   conflictErr.CandidateArrival.Format("2006-01-02"),
				CandidateDeparture: conflictErr.CandidateDeparture.Format("2006-01-02"),
			})
		return
	}

	middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Assignment failed")
}
