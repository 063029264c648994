package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseWindow reads the optional start/end query parameters as a date
// window. Both must be present to form a window; dates use YYYY-MM-DD.
func parseWindow(r *http.Request) (*models.Interval, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, errBothDatesRequired
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return nil, err
	}

	return &models.Interval{Start: start, End: end}, nil
}

var errBothDatesRequired = &windowError{"both start and end are required for a date window"}

type windowError struct{ msg string }

func (e *windowError) Error() string { return e.msg }

func writeWindowError(w http.ResponseWriter, err error) {
	middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest,
		"Invalid date window: "+err.Error())
}
