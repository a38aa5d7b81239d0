package camera2

import (
	"go.viam.com/camsession/video"
)

// onFrame is the texture listener. The helper releases its own reference to frame after the call.
func (s *Session) onFrame(frame *video.Frame) {
	s.thread.CheckIsOnThread()

	if s.phase != phaseRunning {
		s.logger.Debug("texture frame captured but camera is no longer running")
		return
	}

	if !s.firstFrameReported {
		s.firstFrameReported = true
		startTimeMs := int(s.clock.Since(s.constructionTime).Milliseconds())
		s.histograms.StartTimeMs.AddSample(startTimeMs)
		s.logger.Debugw("first frame captured", "start_time_ms", startTimeMs)
	}

	// Undo the mirroring the platform applies to front cameras and the sensor orientation. The
	// orientation is reported as the frame rotation instead.
	buffer := video.WithModifiedTransformMatrix(
		frame.Buffer(),
		s.characteristics.IsFrontFacing(),
		-s.characteristics.SensorOrientation,
	)
	modified := video.NewFrame(buffer, s.frameOrientation(), frame.TimestampNs())
	s.events.OnFrameCaptured(s, modified)
	modified.Release()
}

// frameOrientation is the clockwise rotation that displays a sensor image upright given the
// current device rotation.
func (s *Session) frameOrientation() int {
	rotation := s.orientation.DeviceOrientation()
	if s.characteristics.IsFrontFacing() {
		rotation = 360 - rotation
	}
	return (s.characteristics.SensorOrientation + rotation) % 360
}
