// Package httpapi exposes the JSON endpoints of the node: account
// registration and login, the presence roster, health and debug stats.
package httpapi

import (
	"chat-live/domain"
	"chat-live/errors"
	"chat-live/observability"
	"chat-live/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"
)

type Server struct {
	log         *slog.Logger
	authService services.IAuthService
	chatService services.IChatService
	monitoring  *observability.Monitoring
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, monitoring *observability.Monitoring) *Server {
	return &Server{
		log:         log,
		authService: authService,
		chatService: chatService,
		monitoring:  monitoring,
	}
}

// Router wires all routes, including the websocket entry point.
func (s *Server) Router(wsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /presence", s.handlePresence)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /debug/stats", s.handleStats)
	mux.Handle("GET /ws", wsHandler)
	return mux
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	token, err := s.authService.Register(req.Username, req.Password)
	if err != nil {
		s.log.Warn("Registration rejected", "username", req.Username, "error", err)
		writeJSON(w, errors.MapToHTTPStatus(err), errorResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}

	token, err := s.authService.Login(req.Username, req.Password)
	if err != nil {
		writeJSON(w, errors.MapToHTTPStatus(err), errorResponse{Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

type presenceEntry struct {
	Username    string    `json:"username"`
	ConnectedAt time.Time `json:"connected_at"`
}

type presenceResponse struct {
	Users []presenceEntry `json:"users"`
}

// handlePresence returns the online roster derived from the registry.
func (s *Server) handlePresence(w http.ResponseWriter, _ *http.Request) {
	roster := s.chatService.Roster()
	entries := lo.Map(roster, func(conn domain.Connection, _ int) presenceEntry {
		return presenceEntry{
			Username:    conn.Username(),
			ConnectedAt: conn.ConnectedAt,
		}
	})
	writeJSON(w, http.StatusOK, presenceResponse{Users: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
