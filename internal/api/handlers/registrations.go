package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// RegistrationRequest is the payload for creating or updating a
// registration. Arrival and departure are optional overrides of the
// stage's own dates.
type RegistrationRequest struct {
	StageID         string  `json:"stage_id"`
	ParticipantName string  `json:"participant_name"`
	Gender          string  `json:"gender"`
	Age             int     `json:"age"`
	Nationality     string  `json:"nationality"`
	Languages       string  `json:"languages"`
	Role            string  `json:"role"`
	ArrivalDate     *string `json:"arrival_date"`
	DepartureDate   *string `json:"departure_date"`
}

func (req *RegistrationRequest) toRegistration() (*models.Registration, string) {
	if req.StageID == "" {
		return nil, "stage_id is required"
	}
	if req.ParticipantName == "" {
		return nil, "participant_name is required"
	}

	role := req.Role
	if role == "" {
		role = models.RoleParticipant
	}

	reg := &models.Registration{
		StageID:         req.StageID,
		ParticipantName: req.ParticipantName,
		Gender:          req.Gender,
		Age:             req.Age,
		Nationality:     req.Nationality,
		Languages:       req.Languages,
		Role:            role,
	}

	if req.ArrivalDate != nil {
		t, err := time.Parse("2006-01-02", *req.ArrivalDate)
		if err != nil {
			return nil, "Invalid arrival_date, expected YYYY-MM-DD"
		}
		reg.ArrivalDate = &t
	}
	if req.DepartureDate != nil {
		t, err := time.Parse("2006-01-02", *req.DepartureDate)
		if err != nil {
			return nil, "Invalid departure_date, expected YYYY-MM-DD"
		}
		reg.DepartureDate = &t
	}
	if reg.ArrivalDate != nil && reg.DepartureDate != nil && reg.DepartureDate.Before(*reg.ArrivalDate) {
		return nil, "departure_date must not be before arrival_date"
	}

	return reg, ""
}

// ListRegistrations returns registrations, optionally filtered by
// stage, by assignment state, and by a date window. The window filter
// keeps registrations whose stage overlaps the window.
func ListRegistrations(store storage.Store, engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		stageID := r.URL.Query().Get("stage_id")
		unassignedOnly := r.URL.Query().Get("unassigned") == "true"

		window, err := parseWindow(r)
		if err != nil {
			writeWindowError(w, err)
			return
		}

		var regs []models.Registration
		if unassignedOnly {
			regs, err = engine.UnassignedRegistrations(ctx, stageID, window)
		} else {
			regs, err = store.ListRegistrations(ctx, storage.RegistrationFilter{StageID: stageID})
			if err == nil && window != nil {
				filtered := regs[:0]
				for _, reg := range regs {
					stageWindow := models.Interval{Start: reg.StageStart, End: reg.StageEnd}
					if assignment.Overlaps(stageWindow, *window) {
						filtered = append(filtered, reg)
					}
				}
				regs = filtered
			}
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list registrations")
			return
		}

		if regs == nil {
			regs = []models.Registration{}
		}
		writeJSON(w, http.StatusOK, regs)
	}
}

// CreateRegistration enrolls a participant in a stage.
func CreateRegistration(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req RegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		reg, msg := req.toRegistration()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		stage, err := store.GetStage(ctx, reg.StageID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get stage")
			return
		}
		if stage == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Stage not found")
			return
		}

		if err := store.CreateRegistration(ctx, reg); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create registration")
			return
		}

		writeJSON(w, http.StatusCreated, reg)
	}
}

// GetRegistration returns a single registration by ID.
func GetRegistration(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		reg, err := store.GetRegistration(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get registration")
			return
		}
		if reg == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Registration not found")
			return
		}

		writeJSON(w, http.StatusOK, reg)
	}
}

// UpdateRegistration updates a registration's participant and presence
// fields. Assignment state is managed through the assignment endpoints.
func UpdateRegistration(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		existing, err := store.GetRegistration(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get registration")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Registration not found")
			return
		}

		var req RegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		reg, msg := req.toRegistration()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		reg.ID = id

		if err := store.UpdateRegistration(ctx, reg); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update registration")
			return
		}

		writeJSON(w, http.StatusOK, reg)
	}
}

// DeleteRegistration removes a registration, freeing its bed first.
func DeleteRegistration(store storage.Store, engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		reg, err := store.GetRegistration(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get registration")
			return
		}
		if reg == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Registration not found")
			return
		}

		if err := engine.Unassign(ctx, id); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to free bed")
			return
		}

		if err := store.DeleteRegistration(ctx, id); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete registration")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
