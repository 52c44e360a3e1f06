package api

import (
	"errors"
	"net/http"

	service "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/domain/registry"
)

// instanceAuth is the credential bag game servers attach to requests.
type instanceAuth struct {
	ID          string `json:"id"`
	RegisterKey string `json:"registerKey"`
}

// registerInstanceRequest mirrors the payload game servers send on boot
// and every heartbeat.
type registerInstanceRequest struct {
	Auth     instanceAuth        `json:"auth"`
	Data     registry.Attributes `json:"data"`
	Override bool                `json:"override"`
}

// handleRegisterInstance handles POST /register_instance. A bad register
// key gets an empty 200 with no explanation, indistinguishable from
// success to the caller.
func (s *Server) handleRegisterInstance(w http.ResponseWriter, r *http.Request) {
	var req registerInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err := s.deps.RegisterOrHeartbeatInstance(r.Context(), req.Auth.ID, req.Data, req.Auth.RegisterKey, req.Override, sourceIP(r))
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		w.WriteHeader(http.StatusOK)
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// handleFindInstances handles POST /find_instances with the live
// instances' public attribute bags.
func (s *Server) handleFindInstances(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.ListInstances())
}
