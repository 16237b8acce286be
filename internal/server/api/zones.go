package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/internal/zone"
	"github.com/ayusman/posecontrol/pkg/logger"
)

// LayoutSetter receives the layout after a zone is saved.
type LayoutSetter interface {
	SetLayout(l zone.Layout)
}

// ZoneHandler handles HTTP requests for zone resources.
type ZoneHandler struct {
	store  *store.Store
	target LayoutSetter
	log    logger.Logger
}

// NewZoneHandler creates a ZoneHandler. Saved layouts are pushed to target when it is non-nil.
func NewZoneHandler(s *store.Store, target LayoutSetter, log logger.Logger) *ZoneHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ZoneHandler{store: s, target: target, log: log}
}

// ServeHTTP routes /api/zones and /api/zones/{role}.
func (h *ZoneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/zones")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	role := zone.Role(path)
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, role)
	case http.MethodPut:
		h.update(w, r, role)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type updateZoneRequest struct {
	XLower float64 `json:"x_lower"`
	XUpper float64 `json:"x_upper"`
	YLower float64 `json:"y_lower"`
	YUpper float64 `json:"y_upper"`
}

type zoneResponse struct {
	ID        string    `json:"id"`
	Role      zone.Role `json:"role"`
	XLower    float64   `json:"x_lower"`
	XUpper    float64   `json:"x_upper"`
	YLower    float64   `json:"y_lower"`
	YUpper    float64   `json:"y_upper"`
	UpdatedAt string    `json:"updated_at"`
}

type listZonesResponse struct {
	Zones []zoneResponse `json:"zones"`
}

func toZoneResponse(rec *store.ZoneRecord) zoneResponse {
	return zoneResponse{
		ID:        rec.ID,
		Role:      rec.Zone.Role,
		XLower:    rec.Zone.XLower,
		XUpper:    rec.Zone.XUpper,
		YLower:    rec.Zone.YLower,
		YUpper:    rec.Zone.YUpper,
		UpdatedAt: rec.UpdatedAt.Format(timeFormat),
	}
}

// list handles GET /api/zones.
func (h *ZoneHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Zones().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list zones")
		return
	}

	response := listZonesResponse{Zones: make([]zoneResponse, 0, len(records))}
	for _, rec := range records {
		response.Zones = append(response.Zones, toZoneResponse(rec))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/zones/{role}.
func (h *ZoneHandler) get(w http.ResponseWriter, r *http.Request, role zone.Role) {
	rec, err := h.store.Zones().Get(role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Zone not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get zone")
		return
	}
	writeJSON(w, http.StatusOK, toZoneResponse(rec))
}

// update handles PUT /api/zones/{role}, persists the zone and swaps the new layout in.
func (h *ZoneHandler) update(w http.ResponseWriter, r *http.Request, role zone.Role) {
	if !role.Valid() {
		writeError(w, http.StatusNotFound, "Zone not found")
		return
	}

	var req updateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	z := zone.Zone{Role: role, XLower: req.XLower, XUpper: req.XUpper, YLower: req.YLower, YUpper: req.YUpper}
	rec, err := h.store.Zones().Save(z)
	if err != nil {
		if errors.Is(err, zone.ErrInvalidZone) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save zone")
		return
	}

	if h.target != nil {
		layout, err := h.store.Zones().Layout()
		if err != nil {
			h.log.Error(r.Context(), "reload layout", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to reload layout")
			return
		}
		h.target.SetLayout(layout)
	}

	h.log.Info(r.Context(), "zone updated", logger.String("role", string(role)))
	writeJSON(w, http.StatusOK, toZoneResponse(rec))
}
