package camera2

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/camsession/platform"
)

// Errors reported through the session callbacks. They are compared with errors.Is.
var (
	ErrNoSupportedFormats = errors.New("No supported capture formats.")
	ErrDisconnected       = errors.New("Camera disconnected / evicted.")
	ErrConfigureFailed    = errors.New("Failed to configure capture session.")
	ErrNoImageAvailable   = errors.New("No available image from ImageReader")
	ErrNotRunning         = errors.New("camera session is not running")
	ErrStoppedBeforeStart = errors.New("camera session stopped before it started")
)

// DeviceError is an error code the platform reported for the open device.
type DeviceError struct {
	Code int
}

func (e *DeviceError) Error() string {
	return errorDescription(e.Code)
}

func errorDescription(code int) string {
	switch code {
	case platform.ErrorCameraDevice:
		return "Camera device has encountered a fatal error."
	case platform.ErrorCameraDisabled:
		return "Camera device could not be opened due to a device policy."
	case platform.ErrorCameraInUse:
		return "Camera device is in use already."
	case platform.ErrorCameraService:
		return "Camera service has encountered a fatal error."
	case platform.ErrorMaxCamerasInUse:
		return "Camera device could not be opened because there are too many other open camera devices."
	default:
		return fmt.Sprintf("Unknown camera error: %d", code)
	}
}

// CaptureFailureError is a one-shot capture the device could not complete.
type CaptureFailureError struct {
	Failure platform.CaptureFailure
}

func (e *CaptureFailureError) Error() string {
	return e.Failure.String()
}
