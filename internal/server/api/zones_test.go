package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/internal/zone"
)

// newTestStore creates a seeded Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	if err := s.Zones().Seed(); err != nil {
		t.Fatalf("failed to seed zones: %v", err)
	}
	return s
}

type layoutRecorder struct {
	layouts []zone.Layout
}

func (r *layoutRecorder) SetLayout(l zone.Layout) {
	r.layouts = append(r.layouts, l)
}

func TestZoneHandler_List(t *testing.T) {
	handler := NewZoneHandler(newTestStore(t), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/zones", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listZonesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Zones) != len(zone.Roles) {
		t.Fatalf("expected %d zones, got %d", len(zone.Roles), len(response.Zones))
	}
	for _, z := range response.Zones {
		if z.ID == "" {
			t.Errorf("zone %s has no id", z.Role)
		}
	}
}

func TestZoneHandler_Get(t *testing.T) {
	handler := NewZoneHandler(newTestStore(t), nil, nil)

	t.Run("known role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/zones/hands", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var z zoneResponse
		if err := json.NewDecoder(rec.Body).Decode(&z); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if z.Role != zone.RoleHands || z.XLower != 150 || z.XUpper != 490 || z.YUpper != 100 {
			t.Errorf("unexpected zone %+v", z)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/zones/feet", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestZoneHandler_Update(t *testing.T) {
	s := newTestStore(t)
	target := &layoutRecorder{}
	handler := NewZoneHandler(s, target, nil)

	t.Run("persists and swaps the layout", func(t *testing.T) {
		body := `{"x_lower":100,"x_upper":540,"y_lower":0,"y_upper":150}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/zones/hands", bytes.NewBufferString(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		stored, err := s.Zones().Get(zone.RoleHands)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if stored.Zone.XUpper != 540 || stored.Zone.YUpper != 150 {
			t.Errorf("stored zone = %+v", stored.Zone)
		}

		if len(target.layouts) != 1 {
			t.Fatalf("expected 1 layout swap, got %d", len(target.layouts))
		}
		if got := target.layouts[0].Zone(zone.RoleHands); got.YUpper != 150 {
			t.Errorf("swapped hands zone = %+v", got)
		}
		if got := target.layouts[0].Zone(zone.RoleShoulders); got.YLower != 380 {
			t.Errorf("other zones changed: %+v", got)
		}
	})

	t.Run("inverted bounds", func(t *testing.T) {
		body := `{"x_lower":400,"x_upper":100,"y_lower":0,"y_upper":100}`
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/zones/hands", bytes.NewBufferString(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/zones/hands", bytes.NewBufferString("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/zones/feet", bytes.NewBufferString(`{}`)))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	if len(target.layouts) != 1 {
		t.Errorf("rejected updates swapped the layout: %d swaps", len(target.layouts))
	}
}

func TestZoneHandler_MethodNotAllowed(t *testing.T) {
	handler := NewZoneHandler(newTestStore(t), nil, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/zones"},
		{http.MethodDelete, "/api/zones"},
		{http.MethodPost, "/api/zones/hands"},
		{http.MethodDelete, "/api/zones/hands"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
			}
		})
	}
}
