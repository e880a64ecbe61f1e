package e2e

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/cmykstudio/internal/app"
	"github.com/ayusman/cmykstudio/internal/archive"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/pointer"
	"github.com/ayusman/cmykstudio/internal/scene"
	"github.com/ayusman/cmykstudio/internal/server"
	"github.com/ayusman/cmykstudio/internal/store"
	"github.com/ayusman/cmykstudio/internal/tracking"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStudio(t *testing.T, s *store.Store) *app.App {
	t.Helper()
	a, err := app.New(app.Config{
		Store:     s,
		Smoothing: 1,
		Canvas:    tracking.CanvasSize{Width: 1000, Height: 800},
		Archive: []archive.Item{
			{ID: "p1", Title: "Portrait 1", URL: "/archive/1.jpg"},
			{ID: "p2", Title: "Portrait 2", URL: "/archive/2.jpg"},
			{ID: "p3", Title: "Portrait 3", URL: "/archive/3.jpg"},
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return a
}

func drop(t *testing.T, client *http.Client, url, payload string) string {
	t.Helper()
	resp, err := client.Post(url+"/api/scene/drop", "text/plain", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("drop error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("drop %q status = %d, want %d", payload, resp.StatusCode, http.StatusCreated)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	return created.ID
}

func layer(t *testing.T, a *app.App, id string) scene.Layer {
	t.Helper()
	l, err := a.Scene().Get(id)
	if err != nil {
		t.Fatalf("layer %s: %v", id, err)
	}
	return l
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	studio := newStudio(t, s)
	ts := httptest.NewServer(server.New(server.Config{App: studio, Logger: quietLogger()}))
	defer ts.Close()
	client := ts.Client()

	var eyes1, eyes2, armLeft, armSecond string

	t.Run("PlaceParts", func(t *testing.T) {
		eyes1 = drop(t, client, ts.URL, `{"role":"eyes","channel":"c"}`)
		eyes2 = drop(t, client, ts.URL, "role=eyes;channel=m")
		armLeft = drop(t, client, ts.URL, "role=arm_left;channel=k")
		armSecond = drop(t, client, ts.URL, "role=arm_left;channel=y")

		if x := layer(t, studio, eyes2).Transform.X; x != scene.EyesOffset {
			t.Errorf("second eyes x = %v, want %v", x, scene.EyesOffset)
		}
		second := layer(t, studio, armSecond)
		if second.Role != parts.RoleArmRight || second.Transform.X != 180 {
			t.Errorf("second left arm should balance to the right: %+v", second)
		}
	})

	t.Run("TrackFromBrowser", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial error = %v", err)
		}
		defer conn.Close()

		studio.SetTracking(true)
		conn.WriteJSON(server.ClientMessage{
			Type: server.MsgObservation,
			Observation: &tracking.Observation{
				LeftEye:  &tracking.Point{X: 0.4, Y: 0.4},
				RightEye: &tracking.Point{X: 0.6, Y: 0.4},
				Hands:    []tracking.Hand{{Handedness: tracking.Left, Center: tracking.Point{X: 0.2, Y: 0.7}}},
			},
		})

		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			var msg server.ServerMessage
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}
			if msg.Type == server.MsgSnapshot && layer(t, studio, armLeft).Transform.X == -300 {
				break
			}
		}

		if l := layer(t, studio, eyes1); l.Transform.X != -100 || l.Transform.Y != -80 {
			t.Errorf("first eyes = %+v, want (-100, -80)", l.Transform)
		}
		// The second eyes layer is biased right by 2% of the canvas width.
		if l := layer(t, studio, eyes2); l.Transform.X != 120 || l.Transform.Y != -80 {
			t.Errorf("second eyes = %+v, want (120, -80)", l.Transform)
		}
		if l := layer(t, studio, armLeft); l.Transform.Y != 160 {
			t.Errorf("left arm = %+v, want (-300, 160)", l.Transform)
		}
		studio.SetTracking(false)
	})

	t.Run("ManualDrag", func(t *testing.T) {
		before := layer(t, studio, armSecond).Transform
		studio.PointerDown(armSecond, pointerAt(0, 0), true)
		studio.PointerMove(pointerAt(20, 0))
		studio.PointerUp(pointerAt(20, 0))

		after := layer(t, studio, armSecond).Transform
		if after.Rotation != before.Rotation+10 || after.X != before.X {
			t.Errorf("rotate drag: before %+v after %+v", before, after)
		}
	})

	t.Run("ReorderArchive", func(t *testing.T) {
		for _, body := range []string{
			`{"event":"start","index":2}`,
			`{"event":"enter","index":0}`,
			`{"event":"drop","index":0}`,
		} {
			resp, err := client.Post(ts.URL+"/api/archive/drag", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
		}
		if got := ids(studio.ArchiveItems()); got != "p3,p1,p2" {
			t.Errorf("archive order = %s", got)
		}
	})

	t.Run("Separate", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
			}
		}
		var buf bytes.Buffer
		png.Encode(&buf, img)

		resp, err := client.Post(ts.URL+"/api/separate", "image/png", &buf)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("separate status = %d", resp.StatusCode)
		}
	})

	t.Run("RestoreAfterRestart", func(t *testing.T) {
		if err := studio.Close(); err != nil {
			t.Fatal(err)
		}

		restored := newStudio(t, s)
		if restored.Scene().Len() != 4 {
			t.Fatalf("restored %d layers, want 4", restored.Scene().Len())
		}
		if got := ids(restored.ArchiveItems()); got != "p3,p1,p2" {
			t.Errorf("restored archive order = %s", got)
		}
		if l := layer(t, restored, eyes1); l.Transform.X != -100 {
			t.Errorf("restored eyes = %+v", l.Transform)
		}
	})
}

func TestE2E_HealthWithoutTracker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	studio := newStudio(t, nil)
	if err := studio.Start(); err == nil {
		studio.Stop()
		t.Skip("a camera and landmark service are available")
	}

	ts := httptest.NewServer(server.New(server.Config{App: studio, Logger: quietLogger()}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var health struct {
		Status   string `json:"status"`
		Pipeline bool   `json:"pipeline"`
	}
	json.NewDecoder(resp.Body).Decode(&health)
	if health.Status != "ok" || health.Pipeline {
		t.Errorf("health = %+v", health)
	}
}

func pointerAt(x, y float64) pointer.Point {
	return pointer.Point{X: x, Y: y}
}

func ids(items []archive.Item) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return strings.Join(out, ",")
}
