package fake

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/camsession/platform"
)

// ErrSessionClosed is returned by requests on a closed capture session.
var ErrSessionClosed = errors.New("capture session closed")

// CaptureSession is a fake platform.CaptureSession. One-shot captures that target an ImageReader
// surface produce an image on that reader.
type CaptureSession struct {
	device   *Device
	outputs  []platform.Surface
	callback platform.SessionStateCallback
	handler  platform.Handler

	closed      atomic.Bool
	frameNumber atomic.Int64

	mu                sync.Mutex
	repeating         *platform.CaptureRequest
	repeatingCallback platform.CaptureCallback
	repeatingHandler  platform.Handler
	repeatingCount    int
	captures          []*platform.CaptureRequest

	repeatingErr error
	captureErr   error
	failCaptures bool
}

// Configure posts OnConfigured.
func (s *CaptureSession) Configure() bool {
	return s.handler.Post(func() { s.callback.OnConfigured(s) })
}

// FailConfigure posts OnConfigureFailed.
func (s *CaptureSession) FailConfigure() bool {
	return s.handler.Post(func() { s.callback.OnConfigureFailed(s) })
}

// Outputs returns the surfaces the session was configured with.
func (s *CaptureSession) Outputs() []platform.Surface {
	return append([]platform.Surface(nil), s.outputs...)
}

// SetRepeatingRequest stores request as the repeating request.
func (s *CaptureSession) SetRepeatingRequest(
	request *platform.CaptureRequest,
	callback platform.CaptureCallback,
	handler platform.Handler,
) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repeatingErr != nil {
		return s.repeatingErr
	}
	s.repeating = request
	s.repeatingCallback = callback
	s.repeatingHandler = handler
	s.repeatingCount++
	return nil
}

// Capture runs request once. A nil handler delivers the result on the session's handler.
func (s *CaptureSession) Capture(
	request *platform.CaptureRequest,
	callback platform.CaptureCallback,
	handler platform.Handler,
) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.mu.Lock()
	if s.captureErr != nil {
		err := s.captureErr
		s.mu.Unlock()
		return err
	}
	s.captures = append(s.captures, request)
	fail := s.failCaptures
	s.mu.Unlock()

	if handler == nil {
		handler = s.handler
	}
	frameNumber := s.frameNumber.Inc()
	if fail {
		failure := platform.CaptureFailure{Reason: platform.CaptureFailureReasonError, FrameNumber: frameNumber}
		if callback != nil {
			handler.Post(func() { callback.OnCaptureFailed(s, request, failure) })
		}
		return nil
	}
	for _, target := range request.Targets() {
		if surface, ok := target.(*Surface); ok && surface.reader != nil {
			surface.reader.produce(frameNumber)
		}
	}
	if callback != nil {
		handler.Post(func() { callback.OnCaptureCompleted(s, request) })
	}
	return nil
}

// FailRepeating posts a failure for the repeating request to its callback.
func (s *CaptureSession) FailRepeating() bool {
	s.mu.Lock()
	request, callback, handler := s.repeating, s.repeatingCallback, s.repeatingHandler
	s.mu.Unlock()
	if request == nil || callback == nil {
		return false
	}
	if handler == nil {
		handler = s.handler
	}
	failure := platform.CaptureFailure{Reason: platform.CaptureFailureReasonError, FrameNumber: s.frameNumber.Inc()}
	return handler.Post(func() { callback.OnCaptureFailed(s, request, failure) })
}

// Close closes the session.
func (s *CaptureSession) Close() {
	s.closed.Store(true)
}

// Closed reports whether Close was called.
func (s *CaptureSession) Closed() bool {
	return s.closed.Load()
}

// RepeatingRequest returns the installed repeating request, or nil.
func (s *CaptureSession) RepeatingRequest() *platform.CaptureRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeating
}

// RepeatingCount returns how many times a repeating request was installed.
func (s *CaptureSession) RepeatingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeatingCount
}

// Captures returns the one-shot requests submitted so far.
func (s *CaptureSession) Captures() []*platform.CaptureRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*platform.CaptureRequest(nil), s.captures...)
}

// SetRepeatingErr makes SetRepeatingRequest fail with err.
func (s *CaptureSession) SetRepeatingErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeatingErr = err
}

// SetCaptureErr makes Capture fail synchronously with err.
func (s *CaptureSession) SetCaptureErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureErr = err
}

// SetFailCaptures makes one-shot captures report OnCaptureFailed.
func (s *CaptureSession) SetFailCaptures(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCaptures = fail
}
