package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/posecontrol/internal/gesture"
)

type capturedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(`{"response":"200"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

func TestHTTPDispatcher_Dispatch(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusOK)
	d := NewHTTPDispatcher(Config{BaseURL: srv.URL + "/gameControl/"})

	d.Dispatch(context.Background(), gesture.MoveRight)
	d.Wait()

	got := requests()
	if len(got) != 1 {
		t.Fatalf("got %d requests, want 1", len(got))
	}
	req := got[0]
	if req.method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.method)
	}
	if req.path != "/gameControl/moveRight" {
		t.Errorf("path = %s, want /gameControl/moveRight", req.path)
	}
	if req.contentType != "application/json" {
		t.Errorf("Content-Type = %q", req.contentType)
	}
	if req.body != "" {
		t.Errorf("body = %q, want empty", req.body)
	}
}

func TestHTTPDispatcher_AllCommands(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusOK)
	d := NewHTTPDispatcher(Config{BaseURL: srv.URL + "/gameControl"})

	for _, cmd := range gesture.Commands {
		d.Dispatch(context.Background(), cmd)
	}
	d.Wait()

	seen := make(map[string]bool)
	for _, r := range requests() {
		seen[r.path] = true
	}
	for _, cmd := range gesture.Commands {
		if !seen["/gameControl/"+cmd.String()] {
			t.Errorf("no request for %s", cmd)
		}
	}
}

func TestHTTPDispatcher_Failures(t *testing.T) {
	t.Run("unreachable endpoint does not panic or block", func(t *testing.T) {
		d := NewHTTPDispatcher(Config{BaseURL: "http://127.0.0.1:1/gameControl", Timeout: 200 * time.Millisecond})

		start := time.Now()
		d.Dispatch(context.Background(), gesture.MoveUp)
		if time.Since(start) > 50*time.Millisecond {
			t.Error("Dispatch blocked the caller")
		}
		d.Wait()
	})

	t.Run("error status is swallowed", func(t *testing.T) {
		srv, requests := newCaptureServer(t, http.StatusInternalServerError)
		d := NewHTTPDispatcher(Config{BaseURL: srv.URL})
		d.Dispatch(context.Background(), gesture.MoveDown)
		d.Wait()
		if len(requests()) != 1 {
			t.Error("expected exactly one attempt, no retry")
		}
	})

	t.Run("hung receiver is bounded by the timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		d := NewHTTPDispatcher(Config{BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
		ctx, cancel := context.WithCancel(context.Background())
		d.Dispatch(ctx, gesture.MoveRight)
		cancel()

		done := make(chan struct{})
		go func() {
			d.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Wait did not return after the request timeout")
		}
	})

	t.Run("cancelled context still delivers", func(t *testing.T) {
		srv, requests := newCaptureServer(t, http.StatusOK)
		d := NewHTTPDispatcher(Config{BaseURL: srv.URL})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d.Dispatch(ctx, gesture.MoveLeft)
		d.Wait()
		if len(requests()) != 1 {
			t.Error("expected delivery despite cancelled context")
		}
	})
}

func TestHTTPDispatcher_Defaults(t *testing.T) {
	d := NewHTTPDispatcher(Config{})
	if got := d.URL(gesture.MoveUp); got != "http://localhost:5000/gameControl/moveUp" {
		t.Errorf("URL() = %s", got)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Dispatch(context.Background(), gesture.MoveUp)
	r.Dispatch(context.Background(), gesture.MoveLeft)

	got := r.Commands()
	if len(got) != 2 || got[0] != gesture.MoveUp || got[1] != gesture.MoveLeft {
		t.Errorf("Commands() = %v", got)
	}

	r.Reset()
	if len(r.Commands()) != 0 {
		t.Error("Reset() did not clear")
	}
}
