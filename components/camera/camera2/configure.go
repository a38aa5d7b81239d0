package camera2

import (
	"github.com/pkg/errors"

	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/platform"
)

// sessionCallback receives the configure outcome of the capture session.
type sessionCallback struct {
	s *Session
}

func (c sessionCallback) OnConfigured(captureSession platform.CaptureSession) {
	s := c.s
	s.thread.CheckIsOnThread()

	if s.phase != phaseConfiguring {
		s.logger.Debugw("capture session configured after the session stopped, closing it", "phase", s.phase.String())
		captureSession.Close()
		return
	}
	s.logger.Debug("camera capture session configured")
	s.captureSession = captureSession

	builder, err := s.newPreviewRequestBuilder()
	if err != nil {
		s.reportError(errors.Wrap(err, "failed to start capture request"))
		return
	}
	s.requestBuilder = builder
	if err := captureSession.SetRepeatingRequest(builder.Build(), s.previewCaptureCallback(), s.thread); err != nil {
		s.reportError(errors.Wrap(err, "failed to start capture request"))
		return
	}

	if err := s.textureHelper.StartListening(s.onFrame); err != nil {
		s.reportError(errors.Wrap(err, "failed to start texture listener"))
		return
	}

	s.phase = phaseRunning
	s.logger.Info("camera device successfully started")
	s.createCallback.OnDone(s)
}

func (c sessionCallback) OnConfigureFailed(captureSession platform.CaptureSession) {
	s := c.s
	s.thread.CheckIsOnThread()
	captureSession.Close()
	s.reportError(ErrConfigureFailed)
}

// newPreviewRequestBuilder builds the repeating request. It targets only the preview surface; the
// still surface is bound by one-shot requests alone.
func (s *Session) newPreviewRequestBuilder() (*platform.RequestBuilder, error) {
	// The record template keeps the frame rate stable, where preview would favor rate over
	// post-processing quality.
	builder, err := s.device.CreateCaptureRequest(platform.TemplateRecord)
	if err != nil {
		return nil, err
	}
	builder.Set(platform.KeyControlAETargetFpsRange, enumeration.FramerateRange{
		Min: s.captureFormat.Framerate.Min / s.fpsUnitFactor,
		Max: s.captureFormat.Framerate.Max / s.fpsUnitFactor,
	})
	builder.Set(platform.KeyControlAEMode, platform.ControlAEModeOn)
	builder.Set(platform.KeyControlAELock, false)
	s.chooseStabilizationMode(builder)
	s.chooseFocusMode(builder)
	builder.AddTarget(s.previewSurface)
	return builder, nil
}

// chooseStabilizationMode prefers optical over video stabilization. Only one is ever enabled
// since running both produces strange results.
func (s *Session) chooseStabilizationMode(builder *platform.RequestBuilder) {
	switch {
	case s.characteristics.SupportsOpticalStabilization():
		builder.Set(platform.KeyLensOpticalStabilizationMode, platform.LensOpticalStabilizationModeOn)
		builder.Set(platform.KeyControlVideoStabilizationMode, platform.ControlVideoStabilizationModeOff)
		s.logger.Debug("using optical stabilization")
	case s.characteristics.SupportsVideoStabilization():
		builder.Set(platform.KeyControlVideoStabilizationMode, platform.ControlVideoStabilizationModeOn)
		builder.Set(platform.KeyLensOpticalStabilizationMode, platform.LensOpticalStabilizationModeOff)
		s.logger.Debug("using video stabilization")
	default:
		s.logger.Debug("stabilization not available")
	}
}

func (s *Session) chooseFocusMode(builder *platform.RequestBuilder) {
	if !s.characteristics.SupportsAFMode(platform.ControlAFModeContinuousVideo) {
		s.logger.Debug("auto-focus is not available")
		return
	}
	builder.Set(platform.KeyControlAFMode, platform.ControlAFModeContinuousVideo)
	s.logger.Debug("using continuous video auto-focus")
}

// previewCaptureCallback logs repeating capture failures. They do not end the session.
func (s *Session) previewCaptureCallback() platform.CaptureCallback {
	return platform.CaptureCallbackFuncs{
		Failed: func(_ platform.CaptureSession, _ *platform.CaptureRequest, failure platform.CaptureFailure) {
			s.logger.Debugw("capture failed", "failure", failure.String())
		},
	}
}
