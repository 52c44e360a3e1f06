package api

import (
	"errors"
	"net/http"

	"github.com/takepoint/coordinator/internal/adapters/persistence"
	"github.com/takepoint/coordinator/internal/domain/session"
)

const sessionCookie = "session"

// Stable account result codes the game client branches on.
const (
	codeBadCredentials = 0
	codeUsernameTaken  = 1
	codeEmailTaken     = 2
	codeActiveSession  = 3
)

type registerAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// loginRequest accepts a username or an email address in the username
// field, matching what the login form submits.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type logoutRequest struct {
	Username string `json:"username"`
}

type resumeRequest struct {
	Token string `json:"token"`
}

// accountResponse is the uniform account-endpoint payload. Code is only
// meaningful when Error is set.
type accountResponse struct {
	Error    bool   `json:"error"`
	Code     int    `json:"code"`
	Desc     string `json:"desc,omitempty"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
}

// handleAccountRegister handles POST /account/register.
func (s *Server) handleAccountRegister(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err := s.deps.RegisterAccount(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, persistence.ErrUsernameUnavailable):
		writeJSON(w, http.StatusOK, accountResponse{
			Error: true,
			Code:  codeUsernameTaken,
			Desc:  "A player with that username already exists!",
		})
	case errors.Is(err, persistence.ErrEmailUnavailable):
		writeJSON(w, http.StatusOK, accountResponse{
			Error: true,
			Code:  codeEmailTaken,
			Desc:  "A player with that email already exists!",
		})
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, accountResponse{Username: req.Username})
	}
}

// handleAccountLogin handles POST /account/login. Credential failures
// all collapse to code 0 so callers cannot probe which accounts exist.
func (s *Server) handleAccountLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	account, token, err := s.deps.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, persistence.ErrInvalidCredentials):
		writeJSON(w, http.StatusOK, accountResponse{
			Error: true,
			Code:  codeBadCredentials,
			Desc:  "The provided username and password does not exist in our database.",
		})
	case errors.Is(err, session.ErrAlreadyActive):
		writeJSON(w, http.StatusOK, accountResponse{
			Error: true,
			Code:  codeActiveSession,
			Desc:  "That account is already logged in.",
		})
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, accountResponse{Username: account, Token: token})
	}
}

// handleAccountResume handles POST /account/resume, reinstating a
// session from the durable cookie token.
func (s *Server) handleAccountResume(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		var req resumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.Token
		}
	}
	if token == "" {
		writeJSON(w, http.StatusOK, accountResponse{Error: true})
		return
	}

	account, err := s.deps.ResumeSession(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusOK, accountResponse{Error: true})
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{Username: account})
}

// handleAccountLogout handles POST /account/logout.
func (s *Server) handleAccountLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.deps.EndSession(r.Context(), req.Username)

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, accountResponse{})
}
