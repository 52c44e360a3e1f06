// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	service "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/domain/registry"
	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/metrics"
)

var json = jsoniter.Config{
	MarshalFloatWith6Digits: true,
	EscapeHTML:              false,
	CaseSensitive:           true,
}.Froze()

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	RegisterOrHeartbeatInstance(ctx context.Context, id string, attrs registry.Attributes, authKey string, override bool, sourceIP string) error
	ListInstances() []registry.Attributes
	ReportMatch(ctx context.Context, account string, delta stats.Delta, authKey string) error
	RegisterAccount(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, usernameOrEmail, password string) (string, string, error)
	ResumeSession(ctx context.Context, token string) (string, error)
	HeartbeatSessions(ctx context.Context, accounts []string, authKey string) (int, error)
	EndSession(ctx context.Context, account string) bool
	GameState() service.GameState
}

// Server wires HTTP routes for the coordination API.
type Server struct {
	deps Dependencies
}

// NewServer creates a new API server.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/", metricsMiddleware("root", s.handleRoot)).Methods(http.MethodGet)
	r.HandleFunc("/gameState", metricsMiddleware("game_state", s.handleGameState)).Methods(http.MethodGet)
	r.HandleFunc("/find_instances", metricsMiddleware("find_instances", s.handleFindInstances)).Methods(http.MethodPost)
	r.HandleFunc("/register_instance", metricsMiddleware("register_instance", s.handleRegisterInstance)).Methods(http.MethodPost)
	r.HandleFunc("/report_match", metricsMiddleware("report_match", s.handleReportMatch)).Methods(http.MethodPost)
	r.HandleFunc("/session_heartbeat", metricsMiddleware("session_heartbeat", s.handleSessionHeartbeat)).Methods(http.MethodPost)
	r.HandleFunc("/account/register", metricsMiddleware("account_register", s.handleAccountRegister)).Methods(http.MethodPost)
	r.HandleFunc("/account/login", metricsMiddleware("account_login", s.handleAccountLogin)).Methods(http.MethodPost)
	r.HandleFunc("/account/resume", metricsMiddleware("account_resume", s.handleAccountResume)).Methods(http.MethodPost)
	r.HandleFunc("/account/logout", metricsMiddleware("account_logout", s.handleAccountLogout)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", metricsMiddleware("healthz", s.handleHealth)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello, world!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sourceIP extracts the originating client address, honoring the first
// X-Forwarded-For hop when present.
func sourceIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
