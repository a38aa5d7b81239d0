package camera2

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"go.viam.com/camsession/platform"
)

// ProcessSingleRequest captures one JPEG still through the still reader while the preview keeps
// streaming. The outcome is delivered to cb on handler; synchronous failures are delivered before
// ProcessSingleRequest returns.
func (s *Session) ProcessSingleRequest(cb SnapshotCallback, handler platform.Handler) {
	if err := s.thread.Run(func() { s.processSingleRequest(cb, handler) }); err != nil {
		cb.CaptureFailed(errors.Wrap(err, "snapshot failed"))
	}
}

func (s *Session) processSingleRequest(cb SnapshotCallback, handler platform.Handler) {
	s.thread.CheckIsOnThread()

	fail := func(err error) {
		s.logger.Errorw("snapshot failed", "error", err)
		cb.CaptureFailed(err)
	}
	if s.phase != phaseRunning || s.captureSession == nil {
		fail(ErrNotRunning)
		return
	}

	orientation := s.frameOrientation()
	builder, err := s.device.CreateCaptureRequest(platform.TemplateStillCapture)
	if err != nil {
		fail(errors.Wrap(err, "snapshot failed"))
		return
	}
	builder.Set(platform.KeyControlAEMode, platform.ControlAEModeOn)
	builder.Set(platform.KeyControlAELock, false)
	builder.Set(platform.KeyJPEGOrientation, orientation)
	builder.AddTarget(s.stillReader.Surface())

	logger := s.logger
	s.stillReader.SetOnImageAvailableListener(func(reader platform.ImageReader) {
		logger.Debug("snapshot image available")
		data, err := copyLatestImage(reader)
		if err != nil {
			logger.Debugw("snapshot image acquire failed", "error", err)
			cb.CaptureFailed(err)
			return
		}
		cb.CaptureSuccess(data, orientation)
	}, handler)

	captureCallback := platform.CaptureCallbackFuncs{
		Completed: func(platform.CaptureSession, *platform.CaptureRequest) {
			logger.Debug("snapshot capture completed")
		},
		Failed: func(_ platform.CaptureSession, _ *platform.CaptureRequest, failure platform.CaptureFailure) {
			logger.Debugw("snapshot capture failed", "failure", failure.String())
			handler.Post(func() { cb.CaptureFailed(&CaptureFailureError{Failure: failure}) })
		},
	}
	if err := s.captureSession.Capture(builder.Build(), captureCallback, nil); err != nil {
		fail(errors.Wrap(err, "snapshot failed"))
	}
}

// copyLatestImage copies the first plane of the newest image and closes the image.
func copyLatestImage(reader platform.ImageReader) ([]byte, error) {
	img, err := reader.AcquireLatestImage()
	if err != nil {
		return nil, errors.Wrap(err, "image acquire/conversion failed")
	}
	if img == nil {
		return nil, ErrNoImageAvailable
	}
	defer img.Close()

	planes := img.Planes()
	if len(planes) == 0 {
		return nil, errors.New("image acquire/conversion failed: image has no planes")
	}
	return append([]byte(nil), planes[0].Bytes()...), nil
}

// DecodeSnapshot decodes snapshot bytes and rotates the image clockwise by orientation degrees so
// that it displays upright.
func DecodeSnapshot(data []byte, orientation int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	switch ((orientation % 360) + 360) % 360 {
	case 0:
		return img, nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	default:
		return nil, errors.Errorf("unsupported snapshot orientation %d", orientation)
	}
}
