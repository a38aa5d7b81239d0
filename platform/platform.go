// Package platform declares the camera platform a capture session drives: device enumeration and
// open, capture sessions, output surfaces, the still image reader, the preview texture helper and
// device orientation. Every callback is delivered through the Handler given with the request.
package platform

import (
	"fmt"

	"go.viam.com/camsession/video"
)

// Handler runs tasks on the thread it is bound to.
type Handler interface {
	// Post enqueues task and reports whether it was accepted.
	Post(task func()) bool
}

// CameraManager opens camera devices and describes their capabilities.
type CameraManager interface {
	CameraIDs() ([]string, error)
	CameraCharacteristics(cameraID string) (Characteristics, error)
	// OpenCamera starts opening the device; the outcome arrives on callback through handler.
	OpenCamera(cameraID string, callback DeviceStateCallback, handler Handler) error
}

// Device error codes delivered to DeviceStateCallback.OnError.
const (
	ErrorCameraInUse     = 1
	ErrorMaxCamerasInUse = 2
	ErrorCameraDisabled  = 3
	ErrorCameraDevice    = 4
	ErrorCameraService   = 5
)

// DeviceStateCallback receives the lifecycle of an opened device.
type DeviceStateCallback interface {
	OnOpened(device Device)
	OnDisconnected(device Device)
	OnError(device Device, code int)
	OnClosed(device Device)
}

// Device is an open camera device.
type Device interface {
	ID() string
	// CreateCaptureSession configures a session over outputs; the result arrives on callback
	// through handler.
	CreateCaptureSession(outputs []Surface, callback SessionStateCallback, handler Handler) error
	CreateCaptureRequest(template Template) (*RequestBuilder, error)
	// Close starts closing the device; OnClosed follows.
	Close()
}

// SessionStateCallback receives the outcome of CreateCaptureSession.
type SessionStateCallback interface {
	OnConfigured(session CaptureSession)
	OnConfigureFailed(session CaptureSession)
}

// CaptureSession is a configured pipeline binding a device to a fixed set of output surfaces.
type CaptureSession interface {
	// SetRepeatingRequest replaces the request the device executes continuously. callback and
	// handler may be nil.
	SetRepeatingRequest(request *CaptureRequest, callback CaptureCallback, handler Handler) error
	// Capture enqueues a one-shot request. A nil handler delivers callback on the session's own
	// thread.
	Capture(request *CaptureRequest, callback CaptureCallback, handler Handler) error
	Close()
}

// CaptureFailure describes a request the device could not complete.
type CaptureFailure struct {
	Reason           int
	FrameNumber      int64
	WasImageCaptured bool
}

// Capture failure reasons.
const (
	CaptureFailureReasonError   = 0
	CaptureFailureReasonFlushed = 1
)

func (f CaptureFailure) String() string {
	reason := "error"
	if f.Reason == CaptureFailureReasonFlushed {
		reason = "flushed"
	}
	return fmt.Sprintf("capture failure (reason=%s frame=%d image_captured=%t)", reason, f.FrameNumber, f.WasImageCaptured)
}

// CaptureCallback receives per-request results.
type CaptureCallback interface {
	OnCaptureCompleted(session CaptureSession, request *CaptureRequest)
	OnCaptureFailed(session CaptureSession, request *CaptureRequest, failure CaptureFailure)
}

// CaptureCallbackFuncs adapts functions to a CaptureCallback. Nil functions are skipped.
type CaptureCallbackFuncs struct {
	Completed func(session CaptureSession, request *CaptureRequest)
	Failed    func(session CaptureSession, request *CaptureRequest, failure CaptureFailure)
}

// OnCaptureCompleted calls Completed.
func (f CaptureCallbackFuncs) OnCaptureCompleted(session CaptureSession, request *CaptureRequest) {
	if f.Completed != nil {
		f.Completed(session, request)
	}
}

// OnCaptureFailed calls Failed.
func (f CaptureCallbackFuncs) OnCaptureFailed(session CaptureSession, request *CaptureRequest, failure CaptureFailure) {
	if f.Failed != nil {
		f.Failed(session, request, failure)
	}
}

// Surface is a capture output.
type Surface interface {
	ID() string
	Release()
}

// SurfaceTextureHelper owns the GL texture the preview is rendered into. It may be shared across
// sessions, so StopListening must be called before any surface made from it is released.
type SurfaceTextureHelper interface {
	SetTextureSize(width, height int)
	// NewSurface returns a surface that renders into the helper's texture.
	NewSurface() (Surface, error)
	// StartListening delivers each rendered frame to listener on the helper's handler. The
	// helper releases its own reference once listener returns.
	StartListening(listener func(frame *video.Frame)) error
	StopListening()
}

// OrientationSource reports the current device rotation in degrees (0, 90, 180 or 270).
type OrientationSource interface {
	DeviceOrientation() int
}
