package detector

import "github.com/ayusman/cmykstudio/internal/tracking"

// EarOutset is how far outside the face edge the ears are placed, in
// normalized frame units. The face mesh has no ear landmarks.
const EarOutset = 0.05

// Observation derives a tracking observation from the raw face-mesh and
// hand landmarks. Landmarks the mesh does not contain are left nil.
func (r Result) Observation() tracking.Observation {
	var obs tracking.Observation

	if f := r.Face; f != nil {
		leftEye, okL := midpointOf(f, LeftEyeOuter, LeftEyeInner)
		rightEye, okR := midpointOf(f, RightEyeInner, RightEyeOuter)
		if okL {
			obs.LeftEye = point(leftEye)
		}
		if okR {
			obs.RightEye = point(rightEye)
		}
		if okL && okR {
			obs.Eyes = point(Midpoint(leftEye, rightEye))

			// Ears sit at eye height just outside the face outline.
			if edge, ok := f.At(FaceLeftEdge); ok {
				obs.LeftEar = &tracking.Point{X: edge.X - EarOutset, Y: obs.Eyes.Y}
			}
			if edge, ok := f.At(FaceRightEdge); ok {
				obs.RightEar = &tracking.Point{X: edge.X + EarOutset, Y: obs.Eyes.Y}
			}
		}
		if p, ok := f.At(UpperLipInner); ok {
			obs.Lips = point(p)
		}
		if p, ok := f.At(NoseTip); ok {
			obs.Nose = point(p)
		}
	}

	for i := range r.Hands {
		h := &r.Hands[i]
		side := tracking.Handedness(h.Handedness)
		if side != tracking.Left && side != tracking.Right {
			continue
		}
		c := h.Center()
		obs.Hands = append(obs.Hands, tracking.Hand{Handedness: side, Center: tracking.Point{X: c.X, Y: c.Y}})
	}

	return obs
}

func midpointOf(f *FaceLandmarks, a, b int) (Point3D, bool) {
	pa, okA := f.At(a)
	pb, okB := f.At(b)
	if !okA || !okB {
		return Point3D{}, false
	}
	return Midpoint(pa, pb), true
}

func point(p Point3D) *tracking.Point {
	return &tracking.Point{X: p.X, Y: p.Y}
}
