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

// StageRequest is the payload for creating or updating a stage.
type StageRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Capacity      int    `json:"capacity"`
	Encadrants    string `json:"encadrants"`
	MusicianCount int    `json:"musician_count"`
	Constraints   string `json:"constraints"`
}

func (req *StageRequest) toStage() (*models.Stage, string) {
	if req.Name == "" {
		return nil, "Stage name is required"
	}

	stageType := req.Type
	if stageType == "" {
		stageType = models.StageTypeStage
	}
	switch stageType {
	case models.StageTypeStage, models.StageTypeResident, models.StageTypeOther:
	default:
		return nil, "Invalid stage type. Must be: stage, resident, or other"
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, "Invalid start_date, expected YYYY-MM-DD"
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, "Invalid end_date, expected YYYY-MM-DD"
	}
	if end.Before(start) {
		return nil, "end_date must not be before start_date"
	}
	if req.Capacity < 0 {
		return nil, "Capacity must not be negative"
	}

	return &models.Stage{
		Name:          req.Name,
		Type:          stageType,
		StartDate:     start,
		EndDate:       end,
		Capacity:      req.Capacity,
		Encadrants:    req.Encadrants,
		MusicianCount: req.MusicianCount,
		Constraints:   req.Constraints,
	}, ""
}

// ListStages returns all stages.
func ListStages(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stages, err := store.ListStages(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list stages")
			return
		}

		if stages == nil {
			stages = []models.Stage{}
		}
		writeJSON(w, http.StatusOK, stages)
	}
}

// CreateStage creates a new stage.
func CreateStage(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		stage, msg := req.toStage()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		if err := store.CreateStage(r.Context(), stage); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create stage")
			return
		}

		writeJSON(w, http.StatusCreated, stage)
	}
}

// GetStage returns a single stage by ID.
func GetStage(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		stage, err := store.GetStage(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get stage")
			return
		}
		if stage == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Stage not found")
			return
		}

		writeJSON(w, http.StatusOK, stage)
	}
}

// UpdateStage updates an existing stage.
func UpdateStage(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		existing, err := store.GetStage(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get stage")
			return
		}
		if existing == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Stage not found")
			return
		}

		var req StageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		stage, msg := req.toStage()
		if msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}
		stage.ID = id

		if err := store.UpdateStage(ctx, stage); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update stage")
			return
		}

		writeJSON(w, http.StatusOK, stage)
	}
}

// GetStageRegistrations returns the registrations enrolled in a stage.
func GetStageRegistrations(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		stage, err := store.GetStage(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get stage")
			return
		}
		if stage == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Stage not found")
			return
		}

		regs, err := store.ListRegistrations(ctx, storage.RegistrationFilter{StageID: id})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list stage registrations")
			return
		}

		if regs == nil {
			regs = []models.Registration{}
		}
		writeJSON(w, http.StatusOK, regs)
	}
}

// DeleteStage removes a stage after unassigning its registrations, so
// no bed keeps a snapshot pointing at a deleted registration.
func DeleteStage(store storage.Store, engine *assignment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		stage, err := store.GetStage(ctx, id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get stage")
			return
		}
		if stage == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Stage not found")
			return
		}

		regs, err := store.ListRegistrations(ctx, storage.RegistrationFilter{StageID: id})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list stage registrations")
			return
		}
		for _, reg := range regs {
			if err := engine.Unassign(ctx, reg.ID); err != nil {
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to free stage beds")
				return
			}
		}

		if err := store.DeleteStage(ctx, id); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to delete stage")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
