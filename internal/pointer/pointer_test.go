package pointer

import (
	"errors"
	"testing"

	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

func newFixture(t *testing.T, origin parts.Transform) (*scene.Scene, *Hub, *Controller, string) {
	t.Helper()
	s := scene.New(nil)
	id := s.AddLayer(parts.RoleLips, parts.Magenta, "lips", origin)
	hub := NewHub()
	return s, hub, NewController(s, hub), id
}

func transformOf(t *testing.T, s *scene.Scene, id string) parts.Transform {
	t.Helper()
	l, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", id, err)
	}
	return l.Transform
}

func TestController_Move(t *testing.T) {
	s, hub, c, id := newFixture(t, parts.Transform{X: 10, Y: 20})

	if err := c.Press(id, Point{X: 100, Y: 100}, false); err != nil {
		t.Fatalf("Press() error = %v", err)
	}
	hub.DispatchMove(Point{X: 130, Y: 115})

	want := parts.Transform{X: 40, Y: 35}
	if got := transformOf(t, s, id); got != want {
		t.Errorf("transform = %+v, want %+v", got, want)
	}
}

func TestController_Rotate(t *testing.T) {
	s, hub, c, id := newFixture(t, parts.Transform{X: 10, Y: 20})

	if err := c.Press(id, Point{X: 100, Y: 100}, true); err != nil {
		t.Fatalf("Press() error = %v", err)
	}
	hub.DispatchMove(Point{X: 130, Y: 100})

	want := parts.Transform{X: 10, Y: 20, Rotation: 15}
	if got := transformOf(t, s, id); got != want {
		t.Errorf("transform = %+v, want %+v", got, want)
	}

	// Vertical travel does not rotate and position stays frozen.
	hub.DispatchMove(Point{X: 130, Y: 400})
	if got := transformOf(t, s, id); got != want {
		t.Errorf("transform after vertical move = %+v, want %+v", got, want)
	}
}

func TestController_DeltaIsFromPressNotPreviousMove(t *testing.T) {
	s, hub, c, id := newFixture(t, parts.Transform{})

	_ = c.Press(id, Point{X: 0, Y: 0}, false)
	hub.DispatchMove(Point{X: 5, Y: 5})
	hub.DispatchMove(Point{X: 7, Y: 2})

	want := parts.Transform{X: 7, Y: 2}
	if got := transformOf(t, s, id); got != want {
		t.Errorf("transform = %+v, want %+v", got, want)
	}
}

func TestController_Rounding(t *testing.T) {
	tests := []struct {
		name string
		mode bool
		to   Point
		want parts.Transform
	}{
		{"half up", false, Point{X: 0.5, Y: 1.5}, parts.Transform{X: 1, Y: 2}},
		{"negative half up", false, Point{X: -2.5, Y: -0.4}, parts.Transform{X: -2, Y: 0}},
		{"rotate half step", true, Point{X: 3}, parts.Transform{Rotation: 2}},
		{"rotate negative", true, Point{X: -3}, parts.Transform{Rotation: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, hub, c, id := newFixture(t, parts.Transform{})
			_ = c.Press(id, Point{}, tt.mode)
			hub.DispatchMove(tt.to)
			if got := transformOf(t, s, id); got != tt.want {
				t.Errorf("transform = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestController_ReleaseDetaches(t *testing.T) {
	s, hub, c, id := newFixture(t, parts.Transform{})

	_ = c.Press(id, Point{}, false)
	if !c.Active() {
		t.Fatal("expected an active drag")
	}
	if hub.Listeners() != 2 {
		t.Fatalf("listeners = %d, want 2", hub.Listeners())
	}

	hub.DispatchMove(Point{X: 10, Y: 10})
	hub.DispatchRelease(Point{X: 999, Y: 999})

	if c.Active() {
		t.Error("drag still active after release")
	}
	if hub.Listeners() != 0 {
		t.Errorf("listeners = %d after release, want 0", hub.Listeners())
	}

	hub.DispatchMove(Point{X: 50, Y: 50})
	if got := transformOf(t, s, id); got != (parts.Transform{X: 10, Y: 10}) {
		t.Errorf("moved after release: %+v", got)
	}
}

func TestController_PressReplacesSession(t *testing.T) {
	s := scene.New(nil)
	a := s.AddLayer(parts.RoleLips, parts.Cyan, "a", parts.Transform{})
	b := s.AddLayer(parts.RoleNose, parts.Cyan, "b", parts.Transform{X: 100})
	hub := NewHub()
	c := NewController(s, hub)

	_ = c.Press(a, Point{}, false)
	_ = c.Press(b, Point{}, true)

	if hub.Listeners() != 2 {
		t.Errorf("listeners = %d, want 2", hub.Listeners())
	}
	st, ok := c.State()
	if !ok || st.LayerID != b || st.Mode != ModeRotate {
		t.Fatalf("State() = %+v, %v", st, ok)
	}

	hub.DispatchMove(Point{X: 20})
	if got := transformOf(t, s, a); got != (parts.Transform{}) {
		t.Errorf("replaced session still moved %+v", got)
	}
	if got := transformOf(t, s, b); got != (parts.Transform{X: 100, Rotation: 10}) {
		t.Errorf("transform = %+v", got)
	}
}

func TestController_PressUnknownLayer(t *testing.T) {
	_, hub, c, _ := newFixture(t, parts.Transform{})

	err := c.Press("missing", Point{}, false)
	if !errors.Is(err, scene.ErrNotFound) {
		t.Errorf("Press() error = %v, want ErrNotFound", err)
	}
	if c.Active() || hub.Listeners() != 0 {
		t.Error("failed press must not start a session")
	}
}

func TestController_LayerRemovedMidDrag(t *testing.T) {
	s, hub, c, id := newFixture(t, parts.Transform{})

	_ = c.Press(id, Point{}, false)
	_ = s.RemoveLayer(id)
	hub.DispatchMove(Point{X: 1})

	if c.Active() {
		t.Error("drag should end when its layer is gone")
	}
	if hub.Listeners() != 0 {
		t.Errorf("listeners = %d, want 0", hub.Listeners())
	}
}

func TestController_Cancel(t *testing.T) {
	_, hub, c, id := newFixture(t, parts.Transform{})

	_ = c.Press(id, Point{}, false)
	c.Cancel()

	if c.Active() || hub.Listeners() != 0 {
		t.Error("Cancel() left the session attached")
	}
}

func TestHub(t *testing.T) {
	t.Run("dispatches in registration order", func(t *testing.T) {
		hub := NewHub()
		var got []int
		hub.OnMove(func(Point) { got = append(got, 1) })
		hub.OnMove(func(Point) { got = append(got, 2) })

		hub.DispatchMove(Point{})

		if len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("order = %v", got)
		}
	})

	t.Run("once release fires once", func(t *testing.T) {
		hub := NewHub()
		calls := 0
		hub.OnceRelease(func(Point) { calls++ })

		hub.DispatchRelease(Point{})
		hub.DispatchRelease(Point{})

		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("persistent release keeps firing", func(t *testing.T) {
		hub := NewHub()
		calls := 0
		sub := hub.OnRelease(func(Point) { calls++ })

		hub.DispatchRelease(Point{})
		hub.DispatchRelease(Point{})
		sub.Remove()
		hub.DispatchRelease(Point{})

		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("remove during dispatch", func(t *testing.T) {
		hub := NewHub()
		var sub Subscription
		calls := 0
		sub = hub.OnMove(func(Point) {
			calls++
			sub.Remove()
		})

		hub.DispatchMove(Point{})
		hub.DispatchMove(Point{})

		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("zero subscription remove", func(t *testing.T) {
		var sub Subscription
		sub.Remove()
	})
}

func TestMode_String(t *testing.T) {
	if ModeMove.String() != "move" || ModeRotate.String() != "rotate" {
		t.Errorf("names = %s, %s", ModeMove, ModeRotate)
	}
}

func TestMode_Text(t *testing.T) {
	for _, m := range []Mode{ModeMove, ModeRotate} {
		b, _ := m.MarshalText()
		var got Mode
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Errorf("round trip %s = %s, %v", m, got, err)
		}
	}
	var m Mode
	if err := m.UnmarshalText([]byte("spin")); err == nil {
		t.Error("expected error for unknown mode")
	}
}
