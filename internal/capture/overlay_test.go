package capture

import (
	"testing"
	"time"

	"github.com/ayusman/cmykstudio/internal/tracking"
)

func TestPreview(t *testing.T) {
	p := NewPreview()

	if frame, v := p.Latest(); frame != nil || v != 0 {
		t.Errorf("Latest() = %v, %d; want nil, 0", frame, v)
	}

	changed := p.Changed()
	p.Publish([]byte{0xff, 0xd8})

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("Changed() was not closed by Publish")
	}

	frame, v := p.Latest()
	if v != 1 || len(frame) != 2 {
		t.Errorf("Latest() = %v, %d", frame, v)
	}

	select {
	case <-p.Changed():
		t.Error("new Changed() channel should be open")
	default:
	}
}

func TestDrawObservation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frames := BlankFrames(1, 320, 240)
	defer CloseFrames(frames)

	obs := tracking.Observation{
		LeftEye:  &tracking.Point{X: 0.4, Y: 0.4},
		RightEye: &tracking.Point{X: 0.6, Y: 0.4},
		Hands:    []tracking.Hand{{Handedness: tracking.Left, Center: tracking.Point{X: 0.2, Y: 0.7}}},
	}
	DrawObservation(frames[0], obs)

	jpeg, err := EncodeJPEG(frames[0])
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(jpeg) < 2 || jpeg[0] != 0xff || jpeg[1] != 0xd8 {
		t.Errorf("not a JPEG: % x", jpeg[:min(len(jpeg), 4)])
	}

	// Empty frames are ignored.
	DrawObservation(nil, obs)
}
