package api

import (
	"encoding/json"
	"net/http"
)

// Toggle switches gesture detection on and off.
type Toggle interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// DetectionHandler serves /api/detection.
type DetectionHandler struct {
	toggle Toggle
}

// NewDetectionHandler creates a DetectionHandler.
func NewDetectionHandler(t Toggle) *DetectionHandler {
	return &DetectionHandler{toggle: t}
}

type detectionState struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP reports the toggle on GET and sets it on PUT.
func (h *DetectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req detectionState
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.toggle.SetEnabled(*req.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save setting")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	enabled := h.toggle.Enabled()
	writeJSON(w, http.StatusOK, detectionState{Enabled: &enabled})
}
