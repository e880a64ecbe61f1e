package capture

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/cmykstudio/internal/tracking"
)

// Overlay colors, one per landmark family.
var (
	eyeColor  = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	earColor  = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	faceColor = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	handColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// DrawObservation marks the landmarks of obs on frame in place.
func DrawObservation(frame *gocv.Mat, obs tracking.Observation) {
	if frame == nil || frame.Empty() {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	mark := func(p *tracking.Point, c color.RGBA, radius int) {
		if p == nil {
			return
		}
		gocv.Circle(frame, toPixel(*p, w, h), radius, c, 2)
	}

	mark(obs.LeftEye, eyeColor, 5)
	mark(obs.RightEye, eyeColor, 5)
	mark(obs.LeftEar, earColor, 6)
	mark(obs.RightEar, earColor, 6)
	mark(obs.Lips, faceColor, 4)
	mark(obs.Nose, faceColor, 4)
	if obs.LeftEye != nil && obs.RightEye != nil {
		gocv.Line(frame, toPixel(*obs.LeftEye, w, h), toPixel(*obs.RightEye, w, h), eyeColor, 1)
	}

	for _, hand := range obs.Hands {
		c := hand.Center
		mark(&c, handColor, 10)
		gocv.PutText(frame, string(hand.Handedness), toPixel(c, w, h).Add(image.Pt(12, -12)),
			gocv.FontHersheyPlain, 1.2, handColor, 1)
	}
}

func toPixel(p tracking.Point, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}

// EncodeJPEG encodes frame as JPEG bytes.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory that Close frees.
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Preview holds the most recent annotated JPEG frame and wakes waiting
// readers when a new one arrives.
type Preview struct {
	mu      sync.Mutex
	frame   []byte
	version uint64
	changed chan struct{}
}

// NewPreview creates an empty preview.
func NewPreview() *Preview {
	return &Preview{changed: make(chan struct{})}
}

// Publish stores a new frame.
func (p *Preview) Publish(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frame = jpeg
	p.version++
	close(p.changed)
	p.changed = make(chan struct{})
}

// Latest returns the newest frame and its version. Version 0 means no frame
// has been published.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame, p.version
}

// Changed returns a channel that is closed by the next Publish.
func (p *Preview) Changed() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changed
}
