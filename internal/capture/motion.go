package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	BlurKernel    = 21
	DiffThreshold = 25
)

// MotionDetector reports how much of the frame changed since the previous
// call, after grayscale conversion and a Gaussian blur.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64 // percent of pixels
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector detects motion when more than threshold percent of the
// pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = 1
	}
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares frame to the previous one. The first frame after a reset
// only primes the detector.
func (m *MotionDetector) Detect(frame *gocv.Mat) (moved bool, percent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !m.primed {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	percent = float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	blurred.CopyTo(&m.prev)
	return percent > m.threshold, percent
}

func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)
	return gray
}

// Threshold returns the change percentage that counts as motion.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Primed reports whether a baseline frame is held.
func (m *MotionDetector) Primed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.primed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.Reset()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// Cadence picks the tracking frame rate: the active rate while the subject
// moves and the idle rate once nothing has moved for IdleAfter.
type Cadence struct {
	Idle, Active int
	IdleAfter    time.Duration

	active     bool
	lastMotion time.Time
}

// NewCadence starts in idle mode.
func NewCadence(idle, active int, idleAfter time.Duration) *Cadence {
	return &Cadence{Idle: idle, Active: active, IdleAfter: idleAfter}
}

// Observe records one motion sample taken at now and returns the rate to
// use and whether it changed.
func (c *Cadence) Observe(moved bool, now time.Time) (fps int, changed bool) {
	switch {
	case moved:
		c.lastMotion = now
		if !c.active {
			c.active = true
			changed = true
		}
	case c.active && now.Sub(c.lastMotion) > c.IdleAfter:
		c.active = false
		changed = true
	}
	return c.FPS(), changed
}

// FPS returns the current rate.
func (c *Cadence) FPS() int {
	if c.active {
		return c.Active
	}
	return c.Idle
}

// IsActive reports whether the cadence is in active mode.
func (c *Cadence) IsActive() bool {
	return c.active
}
