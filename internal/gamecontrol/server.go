package gamecontrol

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/pkg/logger"
	"github.com/ayusman/posecontrol/pkg/metrics"
)

// Route is the path prefix commands are posted under.
const Route = "/gameControl/"

// Config holds the receiver configuration.
type Config struct {
	Presser Presser
	Logger  logger.Logger
}

// Server accepts POST /gameControl/{command} and presses the matching key.
// Presses are serialised so overlapping requests cannot interleave keystrokes.
type Server struct {
	presser Presser
	log     logger.Logger
	mux     *http.ServeMux
	pressMu sync.Mutex
}

// New creates a receiver Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	s := &Server{
		presser: cfg.Presser,
		log:     cfg.Logger,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc(Route, s.handleCommand)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"response": "405", "error": "method not allowed"})
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, Route), "/")
	cmd, err := gesture.ParseCommand(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"response": "404", "error": err.Error()})
		return
	}

	s.pressMu.Lock()
	err = s.presser.Press(r.Context(), cmd)
	s.pressMu.Unlock()

	if err != nil {
		metrics.RecordKeyPress(cmd.String(), "error")
		s.log.Error(r.Context(), "key press failed", logger.String("command", cmd.String()), logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"response": "500", "error": err.Error()})
		return
	}

	metrics.RecordKeyPress(cmd.String(), "ok")
	s.log.Info(r.Context(), "key pressed", logger.String("command", cmd.String()), logger.String("key", cmd.Key()))
	writeJSON(w, http.StatusOK, map[string]string{"response": "200"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
