// Package fake is an in-memory camera platform. Every callback is posted to the handler given with
// the request, so a session driven by it sees the same ordering it would on a device. Tests steer
// it through the exported knobs and trigger methods.
package fake

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/platform"
)

// ErrUnknownCamera is returned for camera ids that were never added.
var ErrUnknownCamera = errors.New("unknown camera id")

// CameraManager is a fake platform.CameraManager.
type CameraManager struct {
	mu      sync.Mutex
	cameras map[string]platform.Characteristics
	order   []string
	devices []*Device

	// OpenErr is returned synchronously by OpenCamera when set.
	OpenErr error
	// ManualOpen holds OnOpened until Device.Open is called.
	ManualOpen bool
	// ManualConfigure holds OnConfigured until CaptureSession.Configure is called.
	ManualConfigure bool
	// FailConfigure delivers OnConfigureFailed instead of OnConfigured.
	FailConfigure bool
}

// NewCameraManager returns a manager with no cameras.
func NewCameraManager() *CameraManager {
	return &CameraManager{cameras: map[string]platform.Characteristics{}}
}

// AddCamera registers a camera.
func (m *CameraManager) AddCamera(cameraID string, characteristics platform.Characteristics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cameras[cameraID]; !ok {
		m.order = append(m.order, cameraID)
	}
	m.cameras[cameraID] = characteristics
}

// CameraIDs returns the registered ids in insertion order.
func (m *CameraManager) CameraIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...), nil
}

// CameraCharacteristics returns what AddCamera registered.
func (m *CameraManager) CameraCharacteristics(cameraID string) (platform.Characteristics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cameras[cameraID]
	if !ok {
		return platform.Characteristics{}, errors.Wrap(ErrUnknownCamera, cameraID)
	}
	return c, nil
}

// OpenCamera creates a Device and, unless ManualOpen is set, posts OnOpened.
func (m *CameraManager) OpenCamera(cameraID string, callback platform.DeviceStateCallback, handler platform.Handler) error {
	m.mu.Lock()
	if m.OpenErr != nil {
		err := m.OpenErr
		m.mu.Unlock()
		return err
	}
	if _, ok := m.cameras[cameraID]; !ok {
		m.mu.Unlock()
		return errors.Wrap(ErrUnknownCamera, cameraID)
	}
	device := &Device{id: cameraID, manager: m, callback: callback, handler: handler}
	m.devices = append(m.devices, device)
	manual := m.ManualOpen
	m.mu.Unlock()

	if !manual {
		device.Open()
	}
	return nil
}

// Devices returns every device opened so far.
func (m *CameraManager) Devices() []*Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Device(nil), m.devices...)
}

// LastDevice returns the most recently opened device, or nil.
func (m *CameraManager) LastDevice() *Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.devices) == 0 {
		return nil
	}
	return m.devices[len(m.devices)-1]
}

func (m *CameraManager) configureBehavior() (manual, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ManualConfigure, m.FailConfigure
}

// DefaultCharacteristics describes a rear 640x480-class camera reporting whole-fps ranges.
func DefaultCharacteristics() platform.Characteristics {
	return platform.Characteristics{
		SensorOrientation:             90,
		LensFacing:                    platform.LensFacingBack,
		FlashAvailable:                true,
		AvailableOpticalStabilization: []int{platform.LensOpticalStabilizationModeOff},
		AvailableVideoStabilization: []int{
			platform.ControlVideoStabilizationModeOff,
			platform.ControlVideoStabilizationModeOn,
		},
		AvailableAFModes: []int{
			platform.ControlAFModeOff,
			platform.ControlAFModeAuto,
			platform.ControlAFModeContinuousVideo,
		},
		FpsRanges: []enumeration.FramerateRange{{Min: 15, Max: 30}},
		OutputSizes: []enumeration.Size{
			{Width: 320, Height: 240},
			{Width: 640, Height: 480},
			{Width: 1280, Height: 720},
		},
	}
}
