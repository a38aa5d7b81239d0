// Package camera2 drives a single camera through its capture session lifecycle: it opens the
// device, configures a preview output and a still output, streams preview frames to a consumer and
// tears everything down on stop, disconnect or error.
//
// Every piece of session state is confined to one camera thread. Platform callbacks are delivered
// there, and the exported Session methods marshal themselves onto it, so they may be called from
// any goroutine.
package camera2

import (
	"fmt"

	"github.com/benbjohnson/clock"

	"go.viam.com/camsession/camerathread"
	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/video"
)

// FailureType classifies a failed start.
type FailureType int

const (
	// FailureError is any failure before the session started streaming.
	FailureError FailureType = iota
	// FailureDisconnected means the device went away before the session started streaming.
	FailureDisconnected
)

func (f FailureType) String() string {
	switch f {
	case FailureError:
		return "error"
	case FailureDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// State is the externally visible state of a Session.
type State int

const (
	// StateRunning covers every state from creation until the session stops.
	StateRunning State = iota
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// CreateSessionCallback receives the single start verdict of a session: OnDone or OnFailure.
type CreateSessionCallback interface {
	OnDone(session *Session)
	OnFailure(failureType FailureType, err error)
}

// Events receives the stream of a session. All methods are called on the camera thread.
type Events interface {
	OnCameraOpening()
	OnCameraClosed(session *Session)
	OnCameraDisconnected(session *Session)
	OnCameraError(session *Session, err error)
	// OnFrameCaptured hands over a frame that is released once the call returns. Consumers that
	// keep it must call Retain.
	OnFrameCaptured(session *Session, frame *video.Frame)
}

// SnapshotCallback receives the outcome of ProcessSingleRequest on the caller's handler.
type SnapshotCallback interface {
	// CaptureSuccess delivers JPEG bytes and the clockwise rotation that displays them upright.
	CaptureSuccess(data []byte, orientation int)
	CaptureFailed(err error)
}

// Config is the capture format requested from the camera.
type Config struct {
	CameraID  string
	Width     int
	Height    int
	Framerate int
}

// Dependencies are the collaborators a Session drives.
type Dependencies struct {
	// Thread is the camera thread. It is also the handler every platform callback is bound to.
	Thread        *camerathread.Thread
	CameraManager platform.CameraManager
	TextureHelper platform.SurfaceTextureHelper
	ImageReaders  platform.ImageReaderFactory
	Orientation   platform.OrientationSource

	// Histograms with nil members discard their samples.
	Histograms Histograms
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger defaults to the global logger.
	Logger logging.Logger
}
