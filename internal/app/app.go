// Package app ties the studio together: the scene, live tracking, manual
// pointer control and the archive grid, with every mutation serialised.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/cmykstudio/internal/archive"
	"github.com/ayusman/cmykstudio/internal/capture"
	"github.com/ayusman/cmykstudio/internal/detector"
	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/pointer"
	"github.com/ayusman/cmykstudio/internal/scene"
	"github.com/ayusman/cmykstudio/internal/store"
	"github.com/ayusman/cmykstudio/internal/tracking"
)

// ErrTrackerUnavailable is returned when live tracking cannot start because
// the camera or the landmark detector is missing.
var ErrTrackerUnavailable = errors.New("tracker unavailable")

// ErrUnknownDragEvent is returned for archive drag events other than
// start, enter and drop.
var ErrUnknownDragEvent = errors.New("unknown drag event")

// DefaultSaveDelay is how long a scene change waits before it is written to
// the store. Changes arriving in the meantime ride along with that write.
const DefaultSaveDelay = time.Second

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store // optional
	Catalog   *parts.Catalog
	Archive   []archive.Item // seeds an empty store
	Smoothing float64
	Canvas    tracking.CanvasSize
	SaveDelay time.Duration

	// Camera pipeline.
	CameraID int
	FPS      int
	Detector detector.Config

	Logger *slog.Logger
}

// Snapshot is the studio state pushed to clients after every change.
type Snapshot struct {
	Layers   []scene.Layer       `json:"layers"`
	Tracking bool                `json:"tracking"`
	Canvas   tracking.CanvasSize `json:"canvas"`
	Drag     *pointer.DragState  `json:"drag,omitempty"`
}

// App is the studio. All mutating methods are serialised by one lock, so a
// tracking tick and a pointer event never interleave.
type App struct {
	config Config
	log    *slog.Logger

	mu      sync.Mutex
	scene   *scene.Scene
	binder  *tracking.Binder
	hub     *pointer.Hub
	pointer *pointer.Controller
	archive *archive.Grid[archive.Item]
	canvas  tracking.CanvasSize

	listenersMu  sync.Mutex
	listeners    map[uint64]func(Snapshot)
	nextListener uint64

	pipelineMu sync.Mutex
	camera     capture.Camera
	detector   detector.Detector
	preview    *capture.Preview
	stopCh     chan struct{}
	doneCh     chan struct{}

	saveMu    sync.Mutex
	saveTimer *time.Timer
	saving    sync.WaitGroup
	closed    bool
	persistMu sync.Mutex
}

// New creates the studio and restores saved state from the store, if any.
func New(config Config) (*App, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.SaveDelay <= 0 {
		config.SaveDelay = DefaultSaveDelay
	}

	sc := scene.New(config.Catalog)
	hub := pointer.NewHub()
	a := &App{
		config:    config,
		log:       config.Logger,
		scene:     sc,
		binder:    tracking.NewBinder(config.Smoothing),
		hub:       hub,
		pointer:   pointer.NewController(sc, hub),
		archive:   archive.NewGrid(config.Archive),
		canvas:    config.Canvas,
		listeners: make(map[uint64]func(Snapshot)),
		camera:    capture.NewCamera(config.CameraID),
		preview:   capture.NewPreview(),
	}

	if err := a.restore(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) restore() error {
	st := a.config.Store
	if st == nil {
		return nil
	}

	seeded, err := st.Archive().Seed(a.config.Archive)
	if err != nil {
		return fmt.Errorf("seed archive: %w", err)
	}
	if seeded {
		a.log.Info("archive seeded", "items", len(a.config.Archive))
	}
	items, err := st.Archive().List()
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	a.archive.Reset(items)

	layers, err := st.Layers().Load()
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	a.scene.Restore(layers)

	settings := st.Settings()
	a.binder.SetActive(settings.Bool(store.SettingTrackingEnabled, false))
	if w, h := settings.Float(store.SettingCanvasWidth, 0), settings.Float(store.SettingCanvasHeight, 0); w > 0 && h > 0 {
		a.canvas = tracking.CanvasSize{Width: w, Height: h}
	}

	a.log.Info("studio restored", "layers", len(layers), "archive", len(items), "tracking", a.binder.Active())
	return nil
}

// Catalog returns the part catalog.
func (a *App) Catalog() *parts.Catalog {
	return a.scene.Catalog()
}

// Scene returns the scene. Callers outside the package should mutate it
// through App so changes are serialised and broadcast.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Preview returns the annotated camera preview.
func (a *App) Preview() *capture.Preview {
	return a.preview
}

// Snapshot returns the current studio state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *App) snapshotLocked() Snapshot {
	snap := Snapshot{
		Layers:   a.scene.Ordered(),
		Tracking: a.binder.Active(),
		Canvas:   a.canvas,
	}
	if st, ok := a.pointer.State(); ok {
		snap.Drag = &st
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function unregisters it.
func (a *App) Subscribe(fn func(Snapshot)) (cancel func()) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()

	a.nextListener++
	id := a.nextListener
	a.listeners[id] = fn
	return func() {
		a.listenersMu.Lock()
		defer a.listenersMu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *App) notify(snap Snapshot) {
	a.listenersMu.Lock()
	fns := make([]func(Snapshot), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// mutate runs fn under the studio lock and broadcasts the resulting state
// when fn reports a change. Changes also schedule a scene save.
func (a *App) mutate(fn func() (bool, error)) error {
	a.mu.Lock()
	changed, err := fn()
	var snap Snapshot
	if changed {
		snap = a.snapshotLocked()
	}
	a.mu.Unlock()

	if changed {
		a.scheduleSave()
		a.notify(snap)
	}
	return err
}

// scheduleSave arms one delayed scene save unless one is already pending,
// so a stream of tracking ticks writes at most once per SaveDelay.
func (a *App) scheduleSave() {
	if a.config.Store == nil {
		return
	}
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if a.closed || a.saveTimer != nil {
		return
	}

	a.saving.Add(1)
	a.saveTimer = time.AfterFunc(a.config.SaveDelay, func() {
		defer a.saving.Done()
		a.saveMu.Lock()
		a.saveTimer = nil
		a.saveMu.Unlock()

		if _, err := a.saveScene(); err != nil {
			a.log.Warn("scene save failed", "err", err)
		}
	})
}

// saveScene writes the current layers to the store.
func (a *App) saveScene() (int, error) {
	st := a.config.Store
	if st == nil {
		return 0, nil
	}
	a.persistMu.Lock()
	defer a.persistMu.Unlock()

	a.mu.Lock()
	layers := a.scene.Ordered()
	a.mu.Unlock()

	if err := st.Layers().Save(layers); err != nil {
		return 0, fmt.Errorf("save scene: %w", err)
	}
	return len(layers), nil
}

// Drop places a part from a drop payload and returns the new layer ID.
// Malformed payloads create nothing.
func (a *App) Drop(payload string) (string, error) {
	var id string
	err := a.mutate(func() (bool, error) {
		var err error
		id, err = a.scene.Drop(payload)
		return err == nil, err
	})
	if err == nil {
		a.log.Debug("layer dropped", "id", id, "payload", payload)
	}
	return id, err
}

// RemoveLayer deletes a layer. An active drag of that layer ends.
func (a *App) RemoveLayer(id string) error {
	return a.mutate(func() (bool, error) {
		if err := a.scene.RemoveLayer(id); err != nil {
			return false, err
		}
		if st, ok := a.pointer.State(); ok && st.LayerID == id {
			a.pointer.Cancel()
		}
		return true, nil
	})
}

// SetTransform replaces a layer's transform.
func (a *App) SetTransform(id string, t parts.Transform) error {
	return a.mutate(func() (bool, error) {
		err := a.scene.SetTransform(id, t)
		return err == nil, err
	})
}

// MoveToTail brings a layer to the end of the paint order.
func (a *App) MoveToTail(id string) error {
	return a.mutate(func() (bool, error) {
		err := a.scene.MoveToTail(id)
		return err == nil, err
	})
}

// PointerDown starts a move, or a rotate when modifier is held, of layerID.
func (a *App) PointerDown(layerID string, at pointer.Point, modifier bool) error {
	return a.mutate(func() (bool, error) {
		err := a.pointer.Press(layerID, at, modifier)
		return err == nil, err
	})
}

// PointerMove forwards a pointer move to the active drag, if any.
func (a *App) PointerMove(at pointer.Point) {
	_ = a.mutate(func() (bool, error) {
		if !a.pointer.Active() {
			return false, nil
		}
		a.hub.DispatchMove(at)
		return true, nil
	})
}

// PointerUp ends the active drag, wherever the release happened.
func (a *App) PointerUp(at pointer.Point) {
	_ = a.mutate(func() (bool, error) {
		active := a.pointer.Active()
		a.hub.DispatchRelease(at)
		return active, nil
	})
}

// Tracking reports whether live tracking is on.
func (a *App) Tracking() bool {
	return a.binder.Active()
}

// SetTracking turns live tracking on or off and persists the choice.
func (a *App) SetTracking(enabled bool) error {
	err := a.mutate(func() (bool, error) {
		if a.binder.Active() == enabled {
			return false, nil
		}
		a.binder.SetActive(enabled)
		return true, nil
	})
	if err != nil {
		return err
	}
	a.log.Info("tracking toggled", "enabled", enabled)

	if st := a.config.Store; st != nil {
		if err := st.Settings().SetBool(store.SettingTrackingEnabled, enabled); err != nil {
			return fmt.Errorf("save tracking setting: %w", err)
		}
	}
	return nil
}

// Canvas returns the canvas size landmarks are mapped onto.
func (a *App) Canvas() tracking.CanvasSize {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.canvas
}

// SetCanvas records the on-screen canvas size.
func (a *App) SetCanvas(size tracking.CanvasSize) error {
	if !size.Valid() {
		return fmt.Errorf("invalid canvas size %vx%v", size.Width, size.Height)
	}
	err := a.mutate(func() (bool, error) {
		changed := a.canvas != size
		a.canvas = size
		return changed, nil
	})
	if err != nil {
		return err
	}
	return a.saveCanvas(size)
}

func (a *App) saveCanvas(size tracking.CanvasSize) error {
	st := a.config.Store
	if st == nil {
		return nil
	}
	s := st.Settings()
	if err := s.SetFloat(store.SettingCanvasWidth, size.Width); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	if err := s.SetFloat(store.SettingCanvasHeight, size.Height); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	return nil
}

// ApplyObservation runs one tracking tick. A non-nil canvas replaces the
// recorded canvas size first and is persisted like SetCanvas. It returns the
// number of layers that moved.
func (a *App) ApplyObservation(obs tracking.Observation, canvas *tracking.CanvasSize) int {
	var moved int
	var resized bool
	_ = a.mutate(func() (bool, error) {
		if canvas != nil && canvas.Valid() && a.canvas != *canvas {
			a.canvas = *canvas
			resized = true
		}
		moved = a.binder.Apply(obs, a.scene, a.canvas)
		return moved > 0 || resized, nil
	})
	if resized {
		if err := a.saveCanvas(*canvas); err != nil {
			a.log.Warn("canvas save failed", "err", err)
		}
	}
	return moved
}

// ArchiveItems returns the archive in display order.
func (a *App) ArchiveItems() []archive.Item {
	return a.archive.Items()
}

// ArchiveState returns the reorder gesture in progress.
func (a *App) ArchiveState() archive.GridOrderState {
	return a.archive.State()
}

// ArchiveDrag applies one archive drag event ("start", "enter" or "drop")
// and reports whether the order changed. A changed order is persisted.
func (a *App) ArchiveDrag(event string, index int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch event {
	case "start":
		a.archive.DragStart(index)
		return false, nil
	case "enter":
		a.archive.DragEnter(index)
		return false, nil
	case "drop":
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownDragEvent, event)
	}

	if !a.archive.Drop() {
		return false, nil
	}
	if st := a.config.Store; st != nil {
		items := a.archive.Items()
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}
		if err := st.Archive().SaveOrder(ids); err != nil {
			return true, fmt.Errorf("save archive order: %w", err)
		}
	}
	return true, nil
}

// Close stops the pipeline, waits for a pending save and writes the scene a
// final time. The store must stay open until Close returns.
func (a *App) Close() error {
	a.Stop()

	a.saveMu.Lock()
	a.closed = true
	if a.saveTimer != nil && a.saveTimer.Stop() {
		a.saving.Done()
	}
	a.saveTimer = nil
	a.saveMu.Unlock()
	a.saving.Wait()

	if a.config.Store == nil {
		return nil
	}
	n, err := a.saveScene()
	if err != nil {
		return err
	}
	a.log.Info("scene saved", "layers", n)
	return nil
}
