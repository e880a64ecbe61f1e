package tracking

import (
	"sort"
	"sync/atomic"

	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
)

// DefaultSmoothing is the weight given to the new target each tick.
const DefaultSmoothing = 0.3

// Horizontal biases, as a fraction of canvas width.
const (
	// SecondEyeBias pushes the second eyes layer right so the pair does not
	// overlap when both fall back to the eye centroid.
	SecondEyeBias = 0.02
	// EarBias pushes each ear layer outward from its landmark.
	EarBias = 0.08
)

// Binder moves tracked layers toward the landmarks of each observation.
type Binder struct {
	smoothing float64
	active    atomic.Bool
}

// NewBinder returns an inactive binder. A smoothing outside (0, 1] falls
// back to DefaultSmoothing.
func NewBinder(smoothing float64) *Binder {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = DefaultSmoothing
	}
	return &Binder{smoothing: smoothing}
}

// Smoothing returns the interpolation weight.
func (b *Binder) Smoothing() float64 {
	return b.smoothing
}

// SetActive turns tracking on or off.
func (b *Binder) SetActive(active bool) {
	b.active.Store(active)
}

// Active reports whether tracking is on.
func (b *Binder) Active() bool {
	return b.active.Load()
}

// Apply moves every tracked layer of s one smoothing step toward its
// landmark in obs and returns the number of layers that moved. Layers
// without a usable landmark keep their transform. Rotation is never changed.
// Nothing happens while the binder is inactive, the scene is empty or the
// canvas size is unknown.
func (b *Binder) Apply(obs Observation, s *scene.Scene, canvas CanvasSize) int {
	if !b.Active() || !canvas.Valid() || s.Len() == 0 {
		return 0
	}

	moved := 0
	s.Update(func(layers []scene.Layer) {
		ordinals := ordinalsOf(layers)
		for i := range layers {
			l := &layers[i]
			before := l.Transform

			switch l.Role {
			case parts.RoleEyes:
				b.bindEyes(l, ordinals[i], obs, canvas)
			case parts.RoleEars:
				b.bindEars(l, ordinals[i], obs, canvas)
			case parts.RoleArmLeft:
				b.bindHands(l, Left, obs.Hands, canvas)
			case parts.RoleArmRight:
				b.bindHands(l, Right, obs.Hands, canvas)
			case parts.RoleLips, parts.RoleNose:
			}

			if l.Transform != before {
				moved++
			}
		}
	})
	return moved
}

func (b *Binder) bindEyes(l *scene.Layer, ordinal int, obs Observation, canvas CanvasSize) {
	var p *Point
	switch ordinal {
	case 0:
		p = obs.LeftEye
	case 1:
		p = obs.RightEye
	}
	if p == nil {
		p = obs.Eyes
	}
	if p == nil {
		return
	}

	x, y := canvas.toCanvas(*p)
	if ordinal == 1 {
		x += SecondEyeBias * canvas.Width
	}
	b.step(l, x, y)
}

func (b *Binder) bindEars(l *scene.Layer, ordinal int, obs Observation, canvas CanvasSize) {
	if obs.LeftEar == nil || obs.RightEar == nil {
		return
	}

	switch ordinal {
	case 0:
		x, y := canvas.toCanvas(*obs.LeftEar)
		b.step(l, x-EarBias*canvas.Width, y)
	case 1:
		x, y := canvas.toCanvas(*obs.RightEar)
		b.step(l, x+EarBias*canvas.Width, y)
	}
}

// bindHands steps the layer toward the hand on its side. When several hands
// report the same side, the last one in report order is used.
func (b *Binder) bindHands(l *scene.Layer, side Handedness, hands []Hand, canvas CanvasSize) {
	var target *Point
	for i := range hands {
		if hands[i].Handedness == side {
			target = &hands[i].Center
		}
	}
	if target == nil {
		return
	}
	x, y := canvas.toCanvas(*target)
	b.step(l, x, y)
}

func (b *Binder) step(l *scene.Layer, tx, ty float64) {
	l.Transform.X = Smooth(l.Transform.X, tx, b.smoothing)
	l.Transform.Y = Smooth(l.Transform.Y, ty, b.smoothing)
}

// Smooth moves old toward target by weight alpha.
func Smooth(old, target, alpha float64) float64 {
	return old + (target-old)*alpha
}

// ordinalsOf returns, for each layer, its rank among layers of the same
// role by creation order.
func ordinalsOf(layers []scene.Layer) []int {
	byRole := make(map[parts.Role][]int)
	for i, l := range layers {
		byRole[l.Role] = append(byRole[l.Role], i)
	}

	ordinals := make([]int, len(layers))
	for _, idx := range byRole {
		sort.Slice(idx, func(a, b int) bool { return layers[idx[a]].Seq < layers[idx[b]].Seq })
		for rank, i := range idx {
			ordinals[i] = rank
		}
	}
	return ordinals
}
