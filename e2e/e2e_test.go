package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/posecontrol/internal/app"
	"github.com/ayusman/posecontrol/internal/capture"
	"github.com/ayusman/posecontrol/internal/detector"
	"github.com/ayusman/posecontrol/internal/dispatch"
	"github.com/ayusman/posecontrol/internal/gamecontrol"
	"github.com/ayusman/posecontrol/internal/gesture"
	"github.com/ayusman/posecontrol/internal/overlay"
	"github.com/ayusman/posecontrol/internal/server"
	"github.com/ayusman/posecontrol/internal/store"
	"github.com/ayusman/posecontrol/internal/zone"
	"github.com/ayusman/posecontrol/testdata"
)

// rig is a controller wired to an in-process game-control receiver.
type rig struct {
	app        *app.App
	engine     *gesture.Engine
	detector   *detector.MockDetector
	dispatcher *dispatch.HTTPDispatcher
	presser    *gamecontrol.RecordingPresser
	api        *httptest.Server
	hub        *server.Hub
}

func newRig(t *testing.T, policy gesture.ReleasePolicy) *rig {
	t.Helper()

	presser := &gamecontrol.RecordingPresser{}
	receiver := httptest.NewServer(gamecontrol.New(gamecontrol.Config{Presser: presser}))
	t.Cleanup(receiver.Close)

	st, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	dispatcher := dispatch.NewHTTPDispatcher(dispatch.Config{BaseURL: receiver.URL + gamecontrol.Route})
	engine := gesture.NewEngine(gesture.EngineConfig{
		Classifier: gesture.NewClassifier(zone.DefaultLayout()),
		Gate:       gesture.NewGate(policy, time.Hour),
		Dispatcher: dispatcher,
	})

	renderer := overlay.NewRenderer(engine.Classifier())
	engine.Subscribe(renderer.HandleEvent)
	hub := server.NewHub(nil)
	engine.Subscribe(hub.HandleEvent)

	det := detector.NewMockDetector()
	application, err := app.New(app.Config{
		Camera:    capture.NewBlankCamera(0, 0),
		Detector:  det,
		Engine:    engine,
		Renderer:  renderer,
		Publisher: hub,
		Store:     st,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := application.LoadLayout(); err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}

	api := httptest.NewServer(server.New(server.Config{
		Store:  st,
		Engine: engine,
		Frames: renderer,
		Hub:    hub,
		Toggle: application,
	}))
	t.Cleanup(api.Close)

	return &rig{
		app:        application,
		engine:     engine,
		detector:   det,
		dispatcher: dispatcher,
		presser:    presser,
		api:        api,
		hub:        hub,
	}
}

func (r *rig) frame(t *testing.T, name string) (gesture.Command, bool) {
	t.Helper()
	poses, err := testdata.LoadPoses(name)
	if err != nil {
		t.Fatal(err)
	}
	r.detector.SetPoses(poses)

	mat := testdata.BlankFrame()
	defer mat.Close()
	cmd, ok := r.app.ProcessFrame(context.Background(), &mat)
	r.dispatcher.Wait()
	return cmd, ok
}

func TestE2E_LeanPressesKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := newRig(t, gesture.ReleaseManual)

	if _, ok := r.frame(t, "standing"); ok {
		t.Fatal("neutral stance fired")
	}
	if _, ok := r.frame(t, "low_confidence"); ok {
		t.Fatal("low confidence shoulder fired")
	}

	cmd, ok := r.frame(t, "lean_right")
	if !ok || cmd != gesture.MoveRight {
		t.Fatalf("lean_right = (%q, %v), want moveRight", cmd, ok)
	}

	// Held gesture blocks every later frame.
	for _, name := range []string{"hands_up", "crouch", "lean_left", "empty"} {
		if _, ok := r.frame(t, name); ok {
			t.Errorf("%s fired while the gate was active", name)
		}
	}

	if got := r.presser.Pressed(); len(got) != 1 || got[0] != gesture.MoveRight {
		t.Fatalf("receiver pressed %v, want exactly [moveRight]", got)
	}
}

func TestE2E_ReleaseThroughAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := newRig(t, gesture.ReleaseManual)
	client := r.api.Client()

	if cmd, _ := r.frame(t, "hands_up"); cmd != gesture.MoveUp {
		t.Fatalf("hands_up = %q, want moveUp", cmd)
	}

	req, _ := http.NewRequest(http.MethodDelete, r.api.URL+"/api/gate", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/gate error = %v", err)
	}
	resp.Body.Close()

	if cmd, _ := r.frame(t, "crouch"); cmd != gesture.MoveDown {
		t.Fatalf("crouch after release = %q, want moveDown", cmd)
	}

	got := r.presser.Pressed()
	if len(got) != 2 || got[0] != gesture.MoveUp || got[1] != gesture.MoveDown {
		t.Errorf("receiver pressed %v, want [moveUp moveDown]", got)
	}
}

func TestE2E_VacateRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := newRig(t, gesture.ReleaseVacate)

	r.frame(t, "lean_left")
	r.frame(t, "lean_left")
	r.frame(t, "standing")
	r.frame(t, "lean_left")

	got := r.presser.Pressed()
	if len(got) != 2 || got[0] != gesture.MoveLeft || got[1] != gesture.MoveLeft {
		t.Errorf("receiver pressed %v, want two moveLeft presses", got)
	}
}

func TestE2E_EventsAndStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := newRig(t, gesture.ReleaseManual)

	url := "ws" + strings.TrimPrefix(r.api.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for r.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	r.frame(t, "crouch")

	var sawPose, sawGesture bool
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !(sawPose && sawGesture) {
		var msg server.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		switch msg.Type {
		case server.MessagePose:
			sawPose = len(msg.Poses) == 1
		case server.MessageGesture:
			sawGesture = msg.Event != nil && msg.Event.Command == gesture.MoveDown && msg.Event.Type == gesture.EventFired
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.api.URL+"/api/stream", nil)
	resp, err := r.api.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 64)
	n, err := resp.Body.Read(buf)
	if err != nil && n == 0 {
		t.Fatalf("read stream: %v", err)
	}
	if !strings.HasPrefix(string(buf[:n]), "--frame") {
		t.Errorf("stream starts with %q", buf[:n])
	}
}

func TestE2E_DetectionToggle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := newRig(t, gesture.ReleaseManual)
	client := r.api.Client()

	req, _ := http.NewRequest(http.MethodPut, r.api.URL+"/api/detection", strings.NewReader(`{"enabled":false}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/detection error = %v", err)
	}
	var state struct {
		Enabled bool `json:"enabled"`
	}
	json.NewDecoder(resp.Body).Decode(&state)
	resp.Body.Close()

	if state.Enabled || r.app.Enabled() {
		t.Error("detection still enabled")
	}

	resp, err = client.Get(r.api.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}
