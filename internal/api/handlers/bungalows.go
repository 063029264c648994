package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// BungalowResponse decorates a bungalow with its derived occupancy
// numbers for list views.
type BungalowResponse struct {
	models.Bungalow
	Capacity      int  `json:"capacity"`
	OccupantCount int  `json:"occupant_count"`
	Full          bool `json:"full"`
	HasConflict   bool `json:"has_conflict"`
}

func toBungalowResponse(bg models.Bungalow) BungalowResponse {
	status := assignment.CheckCapacity(&bg)
	return BungalowResponse{
		Bungalow:      bg,
		Capacity:      status.Capacity,
		OccupantCount: status.OccupantCount,
		Full:          status.Full,
		HasConflict:   bg.HasForcedOccupant(),
	}
}

// ListBungalows returns all bungalows with their beds and occupancy,
// optionally filtered by village, by a date window on the occupants,
// and restricted to bungalows carrying forced assignments.
func ListBungalows(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		village := r.URL.Query().Get("village")
		conflictsOnly := r.URL.Query().Get("conflicts_only") == "true"

		window, err := parseWindow(r)
		if err != nil {
			writeWindowError(w, err)
			return
		}

		bungalows, err := store.ListBungalows(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list bungalows")
			return
		}

		if conflictsOnly {
			bungalows = assignment.ConflictBungalows(bungalows)
		}

		responses := []BungalowResponse{}
		for _, bg := range bungalows {
			if village != "" && string(bg.Village) != village {
				continue
			}
			if window != nil {
				// Show only the occupants inside the window; the beds
				// themselves always stay visible.
				for i := range bg.Beds {
					occ := bg.Beds[i].Occupant
					if occ != nil && !assignment.Overlaps(occ.Interval(), *window) {
						bg.Beds[i].Occupant = nil
					}
				}
			}
			responses = append(responses, toBungalowResponse(bg))
		}

		writeJSON(w, http.StatusOK, responses)
	}
}

// GetBungalow returns a single bungalow with its beds and occupancy.
func GetBungalow(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		bungalow, err := store.GetBungalow(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get bungalow")
			return
		}
		if bungalow == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Bungalow not found")
			return
		}

		writeJSON(w, http.StatusOK, toBungalowResponse(*bungalow))
	}
}

// GetBungalowOccupants returns the bungalow's occupants, filtered to
// the date window when one is given.
func GetBungalowOccupants(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		window, err := parseWindow(r)
		if err != nil {
			writeWindowError(w, err)
			return
		}

		bungalow, err := store.GetBungalow(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to get bungalow")
			return
		}
		if bungalow == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Bungalow not found")
			return
		}

		occupants := assignment.BungalowOccupants(bungalow, window)
		if occupants == nil {
			occupants = []models.Occupant{}
		}
		writeJSON(w, http.StatusOK, occupants)
	}
}
