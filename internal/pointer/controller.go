package pointer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

// Mode selects which part of the transform a drag changes.
type Mode uint8

const (
	ModeMove Mode = iota
	ModeRotate
)

func (m Mode) String() string {
	if m == ModeRotate {
		return "rotate"
	}
	return "move"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "move":
		*m = ModeMove
	case "rotate":
		*m = ModeRotate
	default:
		return fmt.Errorf("unknown drag mode %q", b)
	}
	return nil
}

// RotationPerPixel is the rotation in degrees per pixel of horizontal travel.
const RotationPerPixel = 0.5

// DragState is the session of one drag gesture.
type DragState struct {
	LayerID string          `json:"layerId"`
	Mode    Mode            `json:"mode"`
	Start   Point           `json:"start"`
	Origin  parts.Transform `json:"origin"`
}

// Controller moves or rotates one layer per gesture. A press starts a session
// that listens for moves until the next release.
type Controller struct {
	scene *scene.Scene
	hub   *Hub

	mu      sync.Mutex
	session *session
}

type session struct {
	state   DragState
	move    Subscription
	release Subscription
}

// NewController creates an idle controller.
func NewController(s *scene.Scene, hub *Hub) *Controller {
	return &Controller{scene: s, hub: hub}
}

// Press starts a drag of layerID at the given pointer position. With the
// modifier held the drag rotates, otherwise it moves. An active session is
// ended first.
func (c *Controller) Press(layerID string, at Point, modifier bool) error {
	l, err := c.scene.Get(layerID)
	if err != nil {
		return fmt.Errorf("press %s: %w", layerID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLocked()

	mode := ModeMove
	if modifier {
		mode = ModeRotate
	}
	ss := &session{state: DragState{
		LayerID: layerID,
		Mode:    mode,
		Start:   at,
		Origin:  l.Transform,
	}}
	ss.move = c.hub.OnMove(func(p Point) { c.onMove(ss, p) })
	ss.release = c.hub.OnceRelease(func(Point) { c.onRelease(ss) })
	c.session = ss
	return nil
}

// State returns the active drag session, if any.
func (c *Controller) State() (DragState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return DragState{}, false
	}
	return c.session.state, true
}

// Active reports whether a drag is in progress.
func (c *Controller) Active() bool {
	_, ok := c.State()
	return ok
}

// Cancel ends the active session without a release event.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
}

func (c *Controller) onMove(ss *session, p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != ss {
		return
	}

	err := c.scene.SetTransform(ss.state.LayerID, dragged(ss.state, p))
	if errors.Is(err, scene.ErrNotFound) {
		// The layer was removed mid-drag.
		c.endLocked()
	}
}

func (c *Controller) onRelease(ss *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != ss {
		return
	}
	c.endLocked()
}

func (c *Controller) endLocked() {
	if c.session == nil {
		return
	}
	c.session.move.Remove()
	c.session.release.Remove()
	c.session = nil
}

// dragged returns the transform for the pointer at p. Exactly one of
// position and rotation follows the pointer; the other stays at the origin.
func dragged(st DragState, p Point) parts.Transform {
	dx := p.X - st.Start.X
	dy := p.Y - st.Start.Y

	t := st.Origin
	switch st.Mode {
	case ModeRotate:
		t.Rotation = round(st.Origin.Rotation + dx*RotationPerPixel)
	default:
		t.X = round(st.Origin.X + dx)
		t.Y = round(st.Origin.Y + dy)
	}
	return t
}

// round rounds half up, so -2.5 becomes -2.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}
