package camera2

import (
	"go.viam.com/camsession/platform"
)

// HasTorch reports whether the camera has a flash unit that can be used as a torch.
func (s *Session) HasTorch() bool {
	var hasTorch bool
	s.run(func() {
		hasTorch = s.characteristics.FlashAvailable
		s.logger.Debugw("has torch", "available", hasTorch)
	})
	return hasTorch
}

// SetTorch turns the torch on or off on the live preview request. It returns enable when the
// request was installed and false otherwise, including when the session is not streaming yet.
func (s *Session) SetTorch(enable bool) bool {
	var result bool
	s.run(func() { result = s.setTorch(enable) })
	return result
}

func (s *Session) setTorch(enable bool) bool {
	s.thread.CheckIsOnThread()
	s.logger.Debugw("set torch", "enable", enable)

	if s.captureSession == nil || s.requestBuilder == nil {
		s.logger.Warnw("cannot set torch before the capture session is configured", "phase", s.phase.String())
		return false
	}

	mode := platform.FlashModeOff
	if enable {
		mode = platform.FlashModeTorch
	}
	s.requestBuilder.Set(platform.KeyFlashMode, mode)
	if err := s.captureSession.SetRepeatingRequest(s.requestBuilder.Build(), s.previewCaptureCallback(), s.thread); err != nil {
		s.logger.Warnw("set flash mode failed", "error", err)
		return false
	}
	return enable
}
