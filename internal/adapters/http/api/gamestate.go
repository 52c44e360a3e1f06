package api

import (
	"net/http"
	"strconv"
)

// handleGameState handles GET /gameState. The payload keeps the shape
// game clients already parse: one fun-fact key plus the leaderboard
// entries keyed by their rank index.
func (s *Server) handleGameState(w http.ResponseWriter, _ *http.Request) {
	state := s.deps.GameState()

	payload := make(map[string]any, len(state.Entries)+1)
	payload[state.FactName] = state.FactValue
	for i, entry := range state.Entries {
		payload[strconv.Itoa(i)] = entry
	}

	writeJSON(w, http.StatusOK, payload)
}
