// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"net/http"

	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check. A nil db
// means the server runs on the in-memory store, which is always up.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := "memory"
		dbConnected := true
		if db != nil {
			store = "sqlite"
			dbConnected = db.Ping() == nil
		}

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, HealthResponse{
			Status:      status,
			Store:       store,
			DBConnected: dbConnected,
		})
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	StagesCount        int `json:"stages_count"`
	RegistrationsCount int `json:"registrations_count"`
	UnassignedCount    int `json:"unassigned_count"`
	ConnectedClients   int `json:"connected_clients"`

	Occupancy *assignment.OccupancySummary `json:"occupancy"`
}

// Status returns a handler that provides system status information:
// stage and registration counts, current occupancy, and the number of
// connected WebSocket clients.
func Status(store storage.Store, engine *assignment.Engine, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stages, err := store.ListStages(ctx)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list stages")
			return
		}

		regs, err := store.ListRegistrations(ctx, storage.RegistrationFilter{})
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to list registrations")
			return
		}
		unassigned := 0
		for _, reg := range regs {
			if !reg.Assigned() {
				unassigned++
			}
		}

		occupancy, err := engine.Occupancy(ctx, nil)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to compute occupancy")
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{
			StagesCount:        len(stages),
			RegistrationsCount: len(regs),
			UnassignedCount:    unassigned,
			ConnectedClients:   hub.ClientCount(),
			Occupancy:          occupancy,
		})
	}
}
