package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FrontalFaceLandmarks returns a face mesh looking straight at the camera,
// centered horizontally with the eyes slightly above frame center.
// Only the landmarks tracking reads are placed; the rest sit at the nose.
func FrontalFaceLandmarks() *FaceLandmarks {
	face := &FaceLandmarks{Points: make([]Point3D, NumFaceLandmarks)}
	for i := range face.Points {
		face.Points[i] = Point3D{X: 0.5, Y: 0.5}
	}

	face.Points[NoseTip] = Point3D{X: 0.5, Y: 0.5, Z: -0.05}
	face.Points[UpperLipInner] = Point3D{X: 0.5, Y: 0.6}

	face.Points[LeftEyeOuter] = Point3D{X: 0.36, Y: 0.4}
	face.Points[LeftEyeInner] = Point3D{X: 0.44, Y: 0.4}
	face.Points[RightEyeInner] = Point3D{X: 0.56, Y: 0.4}
	face.Points[RightEyeOuter] = Point3D{X: 0.64, Y: 0.4}

	face.Points[FaceLeftEdge] = Point3D{X: 0.3, Y: 0.45}
	face.Points[FaceRightEdge] = Point3D{X: 0.7, Y: 0.45}

	return face
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm
// with the palm center at (cx, cy).
func OpenPalmLandmarks(handedness string, cx, cy float64) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	// Offsets relative to the middle finger MCP.
	offsets := [NumLandmarks][2]float64{
		Wrist:    {0, 0.14},
		ThumbCMC: {0.05, 0.09}, ThumbMCP: {0.12, 0.04}, ThumbIP: {0.18, -0.01}, ThumbTip: {0.23, -0.06},
		IndexMCP: {0.05, 0.02}, IndexPIP: {0.07, -0.11}, IndexDIP: {0.08, -0.21}, IndexTip: {0.08, -0.31},
		MiddleMCP: {0, 0}, MiddlePIP: {0, -0.14}, MiddleDIP: {0, -0.26}, MiddleTip: {0, -0.38},
		RingMCP: {-0.05, 0.02}, RingPIP: {-0.07, -0.11}, RingDIP: {-0.08, -0.21}, RingTip: {-0.08, -0.31},
		PinkyMCP: {-0.1, 0.04}, PinkyPIP: {-0.13, -0.06}, PinkyDIP: {-0.15, -0.16}, PinkyTip: {-0.16, -0.24},
	}
	for i, o := range offsets {
		landmarks.Points[i] = Point3D{X: cx + o[0], Y: cy + o[1]}
	}

	return landmarks
}
