// Package tracking binds live face and hand landmark observations to the
// placed layers of a scene.
package tracking

// Point is a landmark position normalized to the camera frame: (0,0) is the
// top-left corner and (1,1) the bottom-right.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Handedness is the classifier label of a detected hand.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Hand is one detected hand.
type Hand struct {
	Handedness Handedness `json:"handedness"`
	Center     Point      `json:"center"`
}

// Observation is one tick's snapshot from the tracker. Nil points were not
// detected this tick.
type Observation struct {
	LeftEye  *Point `json:"leftEye,omitempty"`
	RightEye *Point `json:"rightEye,omitempty"`
	Eyes     *Point `json:"eyes,omitempty"`
	Lips     *Point `json:"lips,omitempty"`
	Nose     *Point `json:"nose,omitempty"`
	LeftEar  *Point `json:"leftEar,omitempty"`
	RightEar *Point `json:"rightEar,omitempty"`
	Hands    []Hand `json:"hands,omitempty"`
}

// Empty reports whether the observation carries no landmarks at all.
func (o Observation) Empty() bool {
	return o.LeftEye == nil && o.RightEye == nil && o.Eyes == nil &&
		o.Lips == nil && o.Nose == nil && o.LeftEar == nil && o.RightEar == nil &&
		len(o.Hands) == 0
}

// CanvasSize is the on-screen size of the studio canvas in pixels.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the size is known.
func (c CanvasSize) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// toCanvas converts a normalized point to canvas-local pixels, where the
// canvas center is the origin.
func (c CanvasSize) toCanvas(p Point) (x, y float64) {
	return (p.X - 0.5) * c.Width, (p.Y - 0.5) * c.Height
}
