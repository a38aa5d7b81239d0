package camera2

import (
	"github.com/pkg/errors"

	"go.viam.com/camsession/platform"
)

// deviceCallback receives device state for a Session.
type deviceCallback struct {
	s *Session
}

func (c deviceCallback) OnOpened(device platform.Device) {
	s := c.s
	s.thread.CheckIsOnThread()

	if s.phase != phaseOpening {
		s.logger.Debugw("camera opened after the session stopped, closing it", "phase", s.phase.String())
		device.Close()
		return
	}
	s.logger.Debug("camera opened")
	s.device = device
	s.phase = phaseConfiguring

	s.textureHelper.SetTextureSize(s.captureFormat.Width, s.captureFormat.Height)
	surface, err := s.textureHelper.NewSurface()
	if err != nil {
		s.reportError(errors.Wrap(err, "failed to create capture session"))
		return
	}
	s.previewSurface = surface

	outputs := []platform.Surface{surface, s.stillReader.Surface()}
	if err := device.CreateCaptureSession(outputs, sessionCallback{s}, s.thread); err != nil {
		s.reportError(errors.Wrap(err, "failed to create capture session"))
	}
}

func (c deviceCallback) OnDisconnected(device platform.Device) {
	s := c.s
	s.thread.CheckIsOnThread()
	s.logger.Warnw("camera disconnected", "phase", s.phase.String())
	s.terminate(FailureDisconnected, ErrDisconnected)
}

func (c deviceCallback) OnError(device platform.Device, code int) {
	c.s.thread.CheckIsOnThread()
	c.s.reportError(&DeviceError{Code: code})
}

func (c deviceCallback) OnClosed(device platform.Device) {
	s := c.s
	s.thread.CheckIsOnThread()
	s.logger.Debug("camera device closed")
	s.events.OnCameraClosed(s)
}
