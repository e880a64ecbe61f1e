// Package detector provides the face and hand landmark detection boundary
// that feeds live tracking.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Face mesh landmark indices used by tracking.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip          = 1
	UpperLipInner    = 13
	LeftEyeOuter     = 33
	LeftEyeInner     = 133
	FaceLeftEdge     = 234
	RightEyeOuter    = 263
	RightEyeInner    = 362
	FaceRightEdge    = 454
	NumFaceLandmarks = 478
)

// Point3D is a landmark position normalized to the frame, with relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point3D) Point3D {
	return Point3D{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Center returns the middle of the palm (the middle finger MCP joint).
func (h *HandLandmarks) Center() Point3D {
	return h.Points[MiddleMCP]
}

// FaceLandmarks is one detected face mesh. Older models report 468 points,
// newer ones 478 with irises; tracking only reads the first 468.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
}

// At returns landmark i if the mesh has it.
func (f *FaceLandmarks) At(i int) (Point3D, bool) {
	if f == nil || i < 0 || i >= len(f.Points) {
		return Point3D{}, false
	}
	return f.Points[i], true
}

// Result is everything detected in one frame. Face is nil when no face was
// found.
type Result struct {
	Face  *FaceLandmarks  `json:"face,omitempty"`
	Hands []HandLandmarks `json:"hands"`
}

// Empty reports whether nothing was detected.
func (r Result) Empty() bool {
	return r.Face == nil && len(r.Hands) == 0
}
