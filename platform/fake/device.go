package fake

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/camsession/platform"
)

// ErrDeviceClosed is returned by operations on a closed device.
var ErrDeviceClosed = errors.New("camera device closed")

// Device is a fake platform.Device.
type Device struct {
	id       string
	manager  *CameraManager
	callback platform.DeviceStateCallback
	handler  platform.Handler

	closed     atomic.Bool
	closeCalls atomic.Int32

	mu       sync.Mutex
	sessions []*CaptureSession
	// CreateSessionErr is returned synchronously by CreateCaptureSession when set.
	CreateSessionErr error
	// CreateRequestErr is returned by CreateCaptureRequest when set.
	CreateRequestErr error
}

// ID returns the camera id.
func (d *Device) ID() string {
	return d.id
}

// Open posts OnOpened.
func (d *Device) Open() bool {
	return d.handler.Post(func() { d.callback.OnOpened(d) })
}

// Disconnect posts OnDisconnected.
func (d *Device) Disconnect() bool {
	return d.handler.Post(func() { d.callback.OnDisconnected(d) })
}

// Fail posts OnError with code.
func (d *Device) Fail(code int) bool {
	return d.handler.Post(func() { d.callback.OnError(d, code) })
}

// CreateCaptureSession records a session over outputs and posts its configure outcome.
func (d *Device) CreateCaptureSession(
	outputs []platform.Surface,
	callback platform.SessionStateCallback,
	handler platform.Handler,
) error {
	if d.closed.Load() {
		return ErrDeviceClosed
	}
	d.mu.Lock()
	if d.CreateSessionErr != nil {
		err := d.CreateSessionErr
		d.mu.Unlock()
		return err
	}
	session := &CaptureSession{
		device:   d,
		outputs:  append([]platform.Surface(nil), outputs...),
		callback: callback,
		handler:  handler,
	}
	d.sessions = append(d.sessions, session)
	d.mu.Unlock()

	manual, fail := d.manager.configureBehavior()
	switch {
	case fail:
		handler.Post(func() { callback.OnConfigureFailed(session) })
	case !manual:
		session.Configure()
	}
	return nil
}

// CreateCaptureRequest returns an empty builder for template.
func (d *Device) CreateCaptureRequest(template platform.Template) (*platform.RequestBuilder, error) {
	if d.closed.Load() {
		return nil, ErrDeviceClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateRequestErr != nil {
		return nil, d.CreateRequestErr
	}
	return platform.NewRequestBuilder(template), nil
}

// Close closes the device and posts OnClosed the first time it is called.
func (d *Device) Close() {
	d.closeCalls.Inc()
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.mu.Lock()
	sessions := append([]*CaptureSession(nil), d.sessions...)
	d.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
	d.handler.Post(func() { d.callback.OnClosed(d) })
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	return d.closed.Load()
}

// CloseCalls returns how many times Close was called.
func (d *Device) CloseCalls() int {
	return int(d.closeCalls.Load())
}

// SetCreateRequestErr sets CreateRequestErr under the device lock.
func (d *Device) SetCreateRequestErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CreateRequestErr = err
}

// SetCreateSessionErr sets CreateSessionErr under the device lock.
func (d *Device) SetCreateSessionErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CreateSessionErr = err
}

// Sessions returns every capture session created on the device.
func (d *Device) Sessions() []*CaptureSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*CaptureSession(nil), d.sessions...)
}

// LastSession returns the most recent capture session, or nil.
func (d *Device) LastSession() *CaptureSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sessions) == 0 {
		return nil
	}
	return d.sessions[len(d.sessions)-1]
}
