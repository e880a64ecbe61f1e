package app

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/cmykstudio/internal/capture"
	"github.com/ayusman/cmykstudio/internal/detector"
)

// Pipeline timing.
const (
	// IdleFPS is the tracking rate while nothing in front of the camera moves.
	IdleFPS = 5
	// IdleAfter is how long without motion before dropping to IdleFPS.
	IdleAfter = 2 * time.Second
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold = 1.0
)

// SetCamera replaces the camera. It has no effect on a running pipeline.
func (a *App) SetCamera(c capture.Camera) {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()
	a.camera = c
}

// SetDetector replaces the landmark detector. It has no effect on a running
// pipeline.
func (a *App) SetDetector(d detector.Detector) {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()
	a.detector = d
}

// Running reports whether the camera pipeline is running.
func (a *App) Running() bool {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()
	return a.stopCh != nil
}

// Start opens the camera and begins feeding observations to the binder.
// Without a usable camera or detector it returns ErrTrackerUnavailable and
// the studio keeps working under manual control.
func (a *App) Start() error {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if a.detector == nil {
		mp, err := detector.NewMediaPipeDetector(a.config.Detector)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
		}
		a.detector = mp
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrTrackerUnavailable, err)
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.camera, a.detector, a.stopCh, a.doneCh)

	a.log.Info("tracking pipeline started", "camera", a.config.CameraID, "fps", a.config.FPS)
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.pipelineMu.Lock()
	defer a.pipelineMu.Unlock()

	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	<-a.doneCh
	a.stopCh, a.doneCh = nil, nil

	if err := a.camera.Close(); err != nil {
		a.log.Warn("close camera", "err", err)
	}
	if err := a.detector.Close(); err != nil {
		a.log.Warn("close detector", "err", err)
	}
	a.log.Info("tracking pipeline stopped")
}

// runPipeline reads frames at a rate that follows motion in front of the
// camera. Each frame is run through the detector, bound to the scene and
// published, annotated, as the preview.
func (a *App) runPipeline(cam capture.Camera, det detector.Detector, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	motion := capture.NewMotionDetector(MotionThreshold)
	defer motion.Close()
	cadence := capture.NewCadence(IdleFPS, a.config.FPS, IdleAfter)

	ticker := time.NewTicker(time.Second / time.Duration(cadence.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			frame, err := cam.ReadFrame()
			if err != nil {
				a.log.Debug("read frame", "err", err)
				continue
			}

			moved, _ := motion.Detect(frame)
			if fps, changed := cadence.Observe(moved, now); changed {
				cam.SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				a.log.Debug("tracking cadence", "fps", fps)
			}

			a.processFrame(frame, det)
			frame.Close()
		}
	}
}

func (a *App) processFrame(frame *gocv.Mat, det detector.Detector) {
	res, err := det.Detect(frame)
	if err != nil {
		a.log.Warn("detect landmarks", "err", err)
		return
	}

	obs := res.Observation()
	if !obs.Empty() {
		a.ApplyObservation(obs, nil)
	}

	capture.DrawObservation(frame, obs)
	jpeg, err := capture.EncodeJPEG(frame)
	if err != nil {
		a.log.Debug("encode preview", "err", err)
		return
	}
	a.preview.Publish(jpeg)
}
