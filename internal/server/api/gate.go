package api

import (
	"context"
	"net/http"

	"github.com/ayusman/posecontrol/internal/gesture"
)

// GateController exposes the activation gate of the gesture engine.
type GateController interface {
	State(ctx context.Context) (gesture.Command, bool)
	Release(ctx context.Context) bool
}

// GateHandler serves /api/gate.
type GateHandler struct {
	gate GateController
}

// NewGateHandler creates a GateHandler.
func NewGateHandler(g GateController) *GateHandler {
	return &GateHandler{gate: g}
}

type gateResponse struct {
	Active   bool            `json:"active"`
	Command  gesture.Command `json:"command,omitempty"`
	Released bool            `json:"released,omitempty"`
}

// ServeHTTP reports the gate on GET and releases it on DELETE.
func (h *GateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cmd, active := h.gate.State(r.Context())
		writeJSON(w, http.StatusOK, gateResponse{Active: active, Command: cmd})
	case http.MethodDelete:
		released := h.gate.Release(r.Context())
		writeJSON(w, http.StatusOK, gateResponse{Released: released})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
