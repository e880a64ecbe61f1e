// Package archive holds the reorderable grid of archive images.
package archive

import "sync"

// GridOrderState is the index pair of a reorder gesture. Nil means unset.
type GridOrderState struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// Grid is an ordered list reordered by drag and drop. DragStart and
// DragEnter record indices; Drop relocates one element.
type Grid[T any] struct {
	mu    sync.Mutex
	items []T
	from  *int
	to    *int
}

// NewGrid creates a grid over a copy of items.
func NewGrid[T any](items []T) *Grid[T] {
	g := &Grid[T]{}
	g.items = append(g.items, items...)
	return g
}

// DragStart records the index being dragged.
func (g *Grid[T]) DragStart(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.from = &i
}

// DragEnter records the index currently under the pointer.
func (g *Grid[T]) DragEnter(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.to = &i
}

// Drop moves the dragged element to the entered index and reports whether
// the order changed. Unset, equal or out-of-range indices leave the order
// as it is. The gesture state is cleared either way.
func (g *Grid[T]) Drop() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	from, to := g.from, g.to
	g.from, g.to = nil, nil

	if from == nil || to == nil || *from == *to {
		return false
	}
	if !g.inRange(*from) || !g.inRange(*to) {
		return false
	}

	g.items = move(g.items, *from, *to)
	return true
}

// State returns a copy of the gesture indices.
func (g *Grid[T]) State() GridOrderState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GridOrderState{From: copyIndex(g.from), To: copyIndex(g.to)}
}

// Items returns the elements in their current order.
func (g *Grid[T]) Items() []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]T, len(g.items))
	copy(out, g.items)
	return out
}

// Reset replaces the elements and clears any gesture in progress.
func (g *Grid[T]) Reset(items []T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = append([]T(nil), items...)
	g.from, g.to = nil, nil
}

// Len returns the number of elements.
func (g *Grid[T]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}

func (g *Grid[T]) inRange(i int) bool {
	return i >= 0 && i < len(g.items)
}

// move removes the element at from and reinserts it at to. Everything else
// keeps its relative order.
func move[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	moved := items[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out
}

func copyIndex(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
