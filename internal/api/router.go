// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/camp-lodging-manager/backend/internal/api/handlers"
	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage"
	"github.com/camp-lodging-manager/backend/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all API routes.
// The db may be nil when the server runs on the in-memory store; it is
// only consulted by the health endpoint.
func NewRouter(
	store storage.Store,
	db *storage.DB,
	engine *assignment.Engine,
	hub *websocket.Hub,
	staticDir string,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(store, engine, hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub)).Methods("GET")

	// Stage endpoints
	api.HandleFunc("/stages", handlers.ListStages(store)).Methods("GET")
	api.HandleFunc("/stages", handlers.CreateStage(store)).Methods("POST")
	api.HandleFunc("/stages/{id}", handlers.GetStage(store)).Methods("GET")
	api.HandleFunc("/stages/{id}", handlers.UpdateStage(store)).Methods("PUT")
	api.HandleFunc("/stages/{id}", handlers.DeleteStage(store, engine)).Methods("DELETE")
	api.HandleFunc("/stages/{id}/registrations", handlers.GetStageRegistrations(store)).Methods("GET")
	api.HandleFunc("/stages/{id}/auto-assign", handlers.AutoAssignStage(engine)).Methods("POST")

	// Registration endpoints
	api.HandleFunc("/registrations", handlers.ListRegistrations(store, engine)).Methods("GET")
	api.HandleFunc("/registrations", handlers.CreateRegistration(store)).Methods("POST")
	api.HandleFunc("/registrations/{id}", handlers.GetRegistration(store)).Methods("GET")
	api.HandleFunc("/registrations/{id}", handlers.UpdateRegistration(store)).Methods("PUT")
	api.HandleFunc("/registrations/{id}", handlers.DeleteRegistration(store, engine)).Methods("DELETE")
	api.HandleFunc("/registrations/{id}/assignment", handlers.AssignRegistration(engine)).Methods("PUT")
	api.HandleFunc("/registrations/{id}/assignment", handlers.UnassignRegistration(engine)).Methods("DELETE")

	// Bungalow endpoints
	api.HandleFunc("/bungalows", handlers.ListBungalows(store)).Methods("GET")
	api.HandleFunc("/bungalows/{id}", handlers.GetBungalow(store)).Methods("GET")
	api.HandleFunc("/bungalows/{id}/occupants", handlers.GetBungalowOccupants(store)).Methods("GET")

	// Bulk auto-assign over every upcoming stage
	api.HandleFunc("/auto-assign", handlers.AutoAssignAll(engine)).Methods("POST")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}
