package detector

import (
	"math"
	"testing"

	"github.com/ayusman/cmykstudio/internal/parts"
	"github.com/ayusman/cmykstudio/internal/scene"
	"github.com/ayusman/cmykstudio/internal/tracking"
)

func assertPoint(t *testing.T, name string, got *tracking.Point, x, y float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s = nil, want (%v, %v)", name, x, y)
		return
	}
	if math.Abs(got.X-x) > epsilon || math.Abs(got.Y-y) > epsilon {
		t.Errorf("%s = (%v, %v), want (%v, %v)", name, got.X, got.Y, x, y)
	}
}

func TestResult_ObservationFace(t *testing.T) {
	obs := Result{Face: FrontalFaceLandmarks()}.Observation()

	assertPoint(t, "leftEye", obs.LeftEye, 0.4, 0.4)
	assertPoint(t, "rightEye", obs.RightEye, 0.6, 0.4)
	assertPoint(t, "eyes", obs.Eyes, 0.5, 0.4)
	assertPoint(t, "lips", obs.Lips, 0.5, 0.6)
	assertPoint(t, "nose", obs.Nose, 0.5, 0.5)
	assertPoint(t, "leftEar", obs.LeftEar, 0.25, 0.4)
	assertPoint(t, "rightEar", obs.RightEar, 0.75, 0.4)

	if len(obs.Hands) != 0 {
		t.Errorf("hands = %+v, want none", obs.Hands)
	}
}

func TestResult_ObservationHands(t *testing.T) {
	res := Result{Hands: []HandLandmarks{
		OpenPalmLandmarks("Left", 0.2, 0.6),
		OpenPalmLandmarks("Unknown", 0.5, 0.5),
		OpenPalmLandmarks("Right", 0.8, 0.7),
	}}

	obs := res.Observation()

	if len(obs.Hands) != 2 {
		t.Fatalf("hands = %+v, want 2", obs.Hands)
	}
	if h := obs.Hands[0]; h.Handedness != tracking.Left || math.Abs(h.Center.X-0.2) > epsilon || math.Abs(h.Center.Y-0.6) > epsilon {
		t.Errorf("hands[0] = %+v", h)
	}
	if h := obs.Hands[1]; h.Handedness != tracking.Right || math.Abs(h.Center.X-0.8) > epsilon {
		t.Errorf("hands[1] = %+v", h)
	}
	if obs.Eyes != nil || obs.LeftEar != nil {
		t.Error("no face was detected")
	}
}

func TestResult_ObservationShortMesh(t *testing.T) {
	// Only the first 200 points: the right eye and both face edges are missing.
	face := FrontalFaceLandmarks()
	face.Points = face.Points[:200]

	obs := Result{Face: face}.Observation()

	assertPoint(t, "leftEye", obs.LeftEye, 0.4, 0.4)
	if obs.RightEye != nil || obs.Eyes != nil {
		t.Errorf("rightEye = %v, eyes = %v, want nil", obs.RightEye, obs.Eyes)
	}
	if obs.LeftEar != nil || obs.RightEar != nil {
		t.Error("ears need both eyes")
	}
	assertPoint(t, "nose", obs.Nose, 0.5, 0.5)
}

func TestResult_ObservationEmpty(t *testing.T) {
	if obs := (Result{}).Observation(); !obs.Empty() {
		t.Errorf("Observation() of empty result = %+v", obs)
	}
}

func TestResult_ObservationDrivesBinder(t *testing.T) {
	obs := Result{
		Face:  FrontalFaceLandmarks(),
		Hands: []HandLandmarks{OpenPalmLandmarks("Right", 0.8, 0.5)},
	}.Observation()

	s := scene.New(nil)
	eyes := s.AddLayer(parts.RoleEyes, parts.Cyan, "eyes", parts.Transform{Y: -60})
	arm := s.AddLayer(parts.RoleArmRight, parts.Cyan, "arm", parts.Transform{X: 180, Y: 160})

	b := tracking.NewBinder(1)
	b.SetActive(true)
	b.Apply(obs, s, tracking.CanvasSize{Width: 1000, Height: 800})

	// With smoothing 1 every tracked layer lands on its target.
	for _, tt := range []struct {
		id   string
		x, y float64
	}{{eyes, -100, -80}, {arm, 300, 0}} {
		l, err := s.Get(tt.id)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(l.Transform.X-tt.x) > epsilon || math.Abs(l.Transform.Y-tt.y) > epsilon {
			t.Errorf("layer %s = %+v, want (%v, %v)", tt.id, l.Transform, tt.x, tt.y)
		}
	}
}
