package api

import (
	"errors"
	"net/http"

	service "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/domain/stats"
)

// reportMatchRequest is the end-of-round submission relayed by game
// servers on behalf of a player.
type reportMatchRequest struct {
	Auth     instanceAuth `json:"auth"`
	Username string       `json:"username"`
	Stats    stats.Delta  `json:"stats"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// handleReportMatch handles POST /report_match. Bad register keys are
// dropped silently; backpressure surfaces as 429 so the game server can
// resubmit.
func (s *Server) handleReportMatch(w http.ResponseWriter, r *http.Request) {
	var req reportMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err := s.deps.ReportMatch(r.Context(), req.Username, req.Stats, req.Auth.RegisterKey)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, service.ErrQueueFull):
		writeJSON(w, http.StatusTooManyRequests, ackResponse{Status: "backpressure"})
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
	}
}

// sessionHeartbeatRequest carries the accounts currently connected to a
// game server.
type sessionHeartbeatRequest struct {
	Auth      instanceAuth `json:"auth"`
	Usernames []string     `json:"usernames"`
}

type sessionHeartbeatResponse struct {
	Refreshed int `json:"refreshed"`
}

// handleSessionHeartbeat handles POST /session_heartbeat.
func (s *Server) handleSessionHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req sessionHeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	refreshed, err := s.deps.HeartbeatSessions(r.Context(), req.Usernames, req.Auth.RegisterKey)
	if errors.Is(err, service.ErrUnauthorized) {
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSON(w, http.StatusOK, sessionHeartbeatResponse{Refreshed: refreshed})
}
