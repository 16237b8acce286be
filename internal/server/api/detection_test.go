package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeToggle struct {
	enabled bool
	err     error
}

func (f *fakeToggle) Enabled() bool { return f.enabled }

func (f *fakeToggle) SetEnabled(enabled bool) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = enabled
	return nil
}

func TestDetectionHandler(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) bool {
		t.Helper()
		var resp struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return resp.Enabled
	}

	t.Run("get", func(t *testing.T) {
		handler := NewDetectionHandler(&fakeToggle{enabled: true})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/detection", nil))
		if rec.Code != http.StatusOK || !decode(t, rec) {
			t.Errorf("status = %d, want 200 enabled", rec.Code)
		}
	})

	t.Run("put", func(t *testing.T) {
		toggle := &fakeToggle{enabled: true}
		handler := NewDetectionHandler(toggle)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/detection", bytes.NewBufferString(`{"enabled":false}`)))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if decode(t, rec) || toggle.enabled {
			t.Error("detection still enabled")
		}
	})

	t.Run("missing field", func(t *testing.T) {
		handler := NewDetectionHandler(&fakeToggle{})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/detection", bytes.NewBufferString(`{}`)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		handler := NewDetectionHandler(&fakeToggle{err: errors.New("disk full")})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/detection", bytes.NewBufferString(`{"enabled":true}`)))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})
}
