// Package scene holds the ordered collection of placed layers that make up
// the studio canvas.
package scene

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/cmykstudio/internal/parts"
)

// ErrNotFound is returned when a layer ID is not in the scene.
var ErrNotFound = errors.New("layer not found")

// TailPaintsOnTop records the stacking convention: layers are painted in
// sequence order, so the last layer is drawn over everything else and
// MoveToTail brings a layer to the front.
const TailPaintsOnTop = true

// Layer is one placed, positionable channel image.
type Layer struct {
	ID        string          `json:"id"`
	Role      parts.Role      `json:"role"`
	Channel   parts.Channel   `json:"channel"`
	Asset     string          `json:"asset"`
	Transform parts.Transform `json:"transform"`

	// Seq is the creation counter. It orders layers of the same role
	// independently of paint order.
	Seq uint64 `json:"seq"`
}

// Scene is the ordered set of placed layers. The sequence is paint order.
// All methods are safe for concurrent use; every mutation is applied whole.
type Scene struct {
	catalog *parts.Catalog

	mu     sync.RWMutex
	layers []Layer
	seq    uint64
}

// New creates an empty scene. The catalog is consulted by the placement
// policy; a nil catalog uses parts.Default().
func New(catalog *parts.Catalog) *Scene {
	if catalog == nil {
		catalog = parts.Default()
	}
	return &Scene{catalog: catalog}
}

// Catalog returns the part catalog the scene places layers from.
func (s *Scene) Catalog() *parts.Catalog {
	return s.catalog
}

// AddLayer places a new layer at the tail of the sequence and returns its ID.
// The final transform is decided by the placement policy.
func (s *Scene) AddLayer(role parts.Role, channel parts.Channel, asset string, def parts.Transform) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, asset, t := s.place(role, channel, asset, def)

	s.seq++
	l := Layer{
		ID:        uuid.NewString(),
		Role:      role,
		Channel:   channel,
		Asset:     asset,
		Transform: t,
		Seq:       s.seq,
	}

	next := make([]Layer, len(s.layers), len(s.layers)+1)
	copy(next, s.layers)
	s.layers = append(next, l)

	return l.ID
}

// RemoveLayer deletes a layer.
func (s *Scene) RemoveLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := make([]Layer, 0, len(s.layers)-1)
	next = append(next, s.layers[:i]...)
	s.layers = append(next, s.layers[i+1:]...)
	return nil
}

// SetTransform replaces a layer's transform.
func (s *Scene) SetTransform(id string, t parts.Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := s.clone()
	next[i].Transform = t
	s.layers = next
	return nil
}

// MoveToTail moves a layer to the end of the sequence, keeping its transform.
// See TailPaintsOnTop for what that means visually.
func (s *Scene) MoveToTail(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	l := s.layers[i]
	next := make([]Layer, 0, len(s.layers))
	next = append(next, s.layers[:i]...)
	next = append(next, s.layers[i+1:]...)
	s.layers = append(next, l)
	return nil
}

// Ordered returns a snapshot of the layers in paint order.
func (s *Scene) Ordered() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone()
}

// Get returns a copy of one layer.
func (s *Scene) Get(id string) (Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Layer{}, ErrNotFound
	}
	return s.layers[i], nil
}

// Len returns the number of placed layers.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Update runs fn on a private copy of the layers and swaps the copy in when
// fn returns. fn may change transforms in place; it must not reorder, add or
// remove entries. Readers never observe a partially applied update.
func (s *Scene) Update(fn func(layers []Layer)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.layers) == 0 {
		return
	}
	next := s.clone()
	fn(next)
	s.layers = next
}

// Restore replaces the contents with layers as they are, keeping IDs and
// creation counters. The placement policy is not applied.
func (s *Scene) Restore(layers []Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = append([]Layer(nil), layers...)
	s.seq = 0
	for _, l := range s.layers {
		s.seq = max(s.seq, l.Seq)
	}
}

func (s *Scene) indexOf(id string) int {
	for i := range s.layers {
		if s.layers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Scene) clone() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}
