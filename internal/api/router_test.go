package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/camp-lodging-manager/backend/internal/api/middleware"
	"github.com/camp-lodging-manager/backend/internal/assignment"
	"github.com/camp-lodging-manager/backend/internal/storage/memory"
	"github.com/camp-lodging-manager/backend/internal/storage/models"
	"github.com/camp-lodging-manager/backend/internal/websocket"
)

func newTestServer() *httptest.Server {
	store := memory.NewStore()
	hub := websocket.NewHub()
	go hub.Run()
	engine := assignment.NewEngine(store, websocket.NewEventBroadcaster(hub))
	router := NewRouter(store, nil, engine, hub, ".")
	return httptest.NewServer(router)
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func createStage(t *testing.T, base, name, start, end string) models.Stage {
	t.Helper()
	resp, body := doJSON(t, "POST", base+"/api/stages", map[string]any{
		"name":       name,
		"type":       "stage",
		"start_date": start,
		"end_date":   end,
		"capacity":   20,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating stage: status %d, body %s", resp.StatusCode, body)
	}
	var stage models.Stage
	json.Unmarshal(body, &stage)
	return stage
}

func createRegistration(t *testing.T, base, stageID, name string) models.Registration {
	t.Helper()
	resp, body := doJSON(t, "POST", base+"/api/registrations", map[string]any{
		"stage_id":         stageID,
		"participant_name": name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating registration: status %d, body %s", resp.StatusCode, body)
	}
	var reg models.Registration
	json.Unmarshal(body, &reg)
	return reg
}

func TestAssignmentFlow(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	s1 := createStage(t, srv.URL, "January Stage", "2025-01-10", "2025-01-20")
	s2 := createStage(t, srv.URL, "Late January Stage", "2025-01-18", "2025-01-22")
	r1 := createRegistration(t, srv.URL, s1.ID, "Alice")
	r2 := createRegistration(t, srv.URL, s2.ID, "Bob")

	assignURL := func(regID string) string {
		return fmt.Sprintf("%s/api/registrations/%s/assignment", srv.URL, regID)
	}

	// First assignment lands on the empty bed.
	resp, body := doJSON(t, "PUT", assignURL(r1.ID), map[string]any{
		"bungalow_id": "B1", "bed_id": "B1-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign r1: status %d, body %s", resp.StatusCode, body)
	}
	var result assignment.AssignmentResult
	json.Unmarshal(body, &result)
	if result.WasForced {
		t.Error("Expected an unforced assignment on an empty bed")
	}

	// The overlapping assignment is refused with the confirmation error
	// and the blocking occupant's details.
	resp, body = doJSON(t, "PUT", assignURL(r2.ID), map[string]any{
		"bungalow_id": "B1", "bed_id": "B1-1",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("conflicting assign: status %d, body %s", resp.StatusCode, body)
	}
	var errResp middleware.ErrorResponse
	json.Unmarshal(body, &errResp)
	if errResp.Error != middleware.ErrConflictConfirmation {
		t.Errorf("Expected error code %q, got %q", middleware.ErrConflictConfirmation, errResp.Error)
	}
	details, _ := errResp.Details.(map[string]any)
	if details["occupant_name"] != "Alice" {
		t.Errorf("Expected conflict details naming Alice, got %v", errResp.Details)
	}

	// Retrying with force commits and flags the assignment.
	resp, body = doJSON(t, "PUT", assignURL(r2.ID), map[string]any{
		"bungalow_id": "B1", "bed_id": "B1-1", "force": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("forced assign: status %d, body %s", resp.StatusCode, body)
	}
	json.Unmarshal(body, &result)
	if !result.WasForced {
		t.Error("Expected the forced assignment to be flagged")
	}

	// The conflict is now visible on the bungalow views.
	resp, body = doJSON(t, "GET", srv.URL+"/api/bungalows?conflicts_only=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing conflict bungalows: status %d", resp.StatusCode)
	}
	var bungalows []json.RawMessage
	json.Unmarshal(body, &bungalows)
	if len(bungalows) != 1 {
		t.Errorf("Expected 1 conflict bungalow, got %d", len(bungalows))
	}

	// Unassigning is idempotent.
	for i := 0; i < 2; i++ {
		resp, body = doJSON(t, "DELETE", assignURL(r2.ID), nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("unassign attempt %d: status %d, body %s", i+1, resp.StatusCode, body)
		}
	}
}

func TestAssignmentValidationResponses(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	s1 := createStage(t, srv.URL, "January Stage", "2025-01-10", "2025-01-20")
	r1 := createRegistration(t, srv.URL, s1.ID, "Alice")

	resp, body := doJSON(t, "PUT", srv.URL+"/api/registrations/missing/assignment", map[string]any{
		"bungalow_id": "B1", "bed_id": "B1-1",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown registration: status %d, body %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, "PUT", srv.URL+"/api/registrations/"+r1.ID+"/assignment", map[string]any{
		"bungalow_id": "B1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing bed_id: status %d, body %s", resp.StatusCode, body)
	}
}

func TestAutoAssignEndpoint(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	s1 := createStage(t, srv.URL, "January Stage", "2099-01-10", "2099-01-20")
	createRegistration(t, srv.URL, s1.ID, "Alice")
	createRegistration(t, srv.URL, s1.ID, "Bob")

	resp, body := doJSON(t, "POST", srv.URL+"/api/stages/"+s1.ID+"/auto-assign", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auto-assign: status %d, body %s", resp.StatusCode, body)
	}
	var summary assignment.AutoAssignSummary
	json.Unmarshal(body, &summary)
	if summary.TotalAssigned != 2 || summary.SuccessRate != 100 {
		t.Errorf("Expected 2 assigned at 100%%, got %+v", summary)
	}

	resp, body = doJSON(t, "POST", srv.URL+"/api/auto-assign", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auto-assign all: status %d, body %s", resp.StatusCode, body)
	}
	var results []assignment.StageAutoAssignResult
	json.Unmarshal(body, &results)
	if len(results) != 1 || !results[0].Success {
		t.Errorf("Expected one successful upcoming stage, got %+v", results)
	}
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, body := doJSON(t, "GET", srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: status %d, body %s", resp.StatusCode, body)
	}
	var health map[string]any
	json.Unmarshal(body, &health)
	if health["status"] != "healthy" || health["store"] != "memory" {
		t.Errorf("Expected a healthy memory-store report, got %v", health)
	}

	resp, body = doJSON(t, "GET", srv.URL+"/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: status %d, body %s", resp.StatusCode, body)
	}
	var status map[string]any
	json.Unmarshal(body, &status)
	occupancy, _ := status["occupancy"].(map[string]any)
	if occupancy["total_beds"] != float64(48) {
		t.Errorf("Expected 48 beds in the occupancy summary, got %v", status)
	}
}
