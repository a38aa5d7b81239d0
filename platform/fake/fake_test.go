package fake

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"

	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/video"
)

// inlineHandler runs posted callbacks immediately.
type inlineHandler struct{}

func (inlineHandler) Post(task func()) bool {
	task()
	return true
}

type deviceEvents struct {
	opened, disconnected, closed int
	errorCodes                   []int
	device                       platform.Device
}

func (e *deviceEvents) OnOpened(device platform.Device) {
	e.opened++
	e.device = device
}
func (e *deviceEvents) OnDisconnected(platform.Device) { e.disconnected++ }
func (e *deviceEvents) OnError(_ platform.Device, code int) {
	e.errorCodes = append(e.errorCodes, code)
}
func (e *deviceEvents) OnClosed(platform.Device) { e.closed++ }

type sessionEvents struct {
	configured, failed int
}

func (e *sessionEvents) OnConfigured(platform.CaptureSession)      { e.configured++ }
func (e *sessionEvents) OnConfigureFailed(platform.CaptureSession) { e.failed++ }

func TestCameraManager(t *testing.T) {
	manager := NewCameraManager()
	manager.AddCamera("1", DefaultCharacteristics())
	manager.AddCamera("0", DefaultCharacteristics())
	manager.AddCamera("1", DefaultCharacteristics())

	ids, err := manager.CameraIDs()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ids, test.ShouldResemble, []string{"1", "0"})

	_, err = manager.CameraCharacteristics("2")
	test.That(t, err, test.ShouldNotBeNil)

	events := &deviceEvents{}
	err = manager.OpenCamera("2", events, inlineHandler{})
	test.That(t, err.Error(), test.ShouldContainSubstring, ErrUnknownCamera.Error())
	test.That(t, manager.LastDevice(), test.ShouldBeNil)

	test.That(t, manager.OpenCamera("0", events, inlineHandler{}), test.ShouldBeNil)
	test.That(t, events.opened, test.ShouldEqual, 1)
	test.That(t, events.device.ID(), test.ShouldEqual, "0")

	device := manager.LastDevice()
	test.That(t, device.Disconnect(), test.ShouldBeTrue)
	test.That(t, device.Fail(platform.ErrorCameraDevice), test.ShouldBeTrue)
	test.That(t, events.disconnected, test.ShouldEqual, 1)
	test.That(t, events.errorCodes, test.ShouldResemble, []int{platform.ErrorCameraDevice})

	device.Close()
	device.Close()
	test.That(t, device.Closed(), test.ShouldBeTrue)
	test.That(t, device.CloseCalls(), test.ShouldEqual, 2)
	test.That(t, events.closed, test.ShouldEqual, 1)

	_, err = device.CreateCaptureRequest(platform.TemplatePreview)
	test.That(t, err, test.ShouldEqual, ErrDeviceClosed)
}

func TestManualOpenAndConfigure(t *testing.T) {
	manager := NewCameraManager()
	manager.AddCamera("0", DefaultCharacteristics())
	manager.ManualOpen = true
	manager.ManualConfigure = true

	events := &deviceEvents{}
	test.That(t, manager.OpenCamera("0", events, inlineHandler{}), test.ShouldBeNil)
	test.That(t, events.opened, test.ShouldEqual, 0)
	device := manager.LastDevice()
	device.Open()
	test.That(t, events.opened, test.ShouldEqual, 1)

	sessionCallbacks := &sessionEvents{}
	test.That(t, device.CreateCaptureSession(nil, sessionCallbacks, inlineHandler{}), test.ShouldBeNil)
	test.That(t, sessionCallbacks.configured, test.ShouldEqual, 0)
	device.LastSession().Configure()
	test.That(t, sessionCallbacks.configured, test.ShouldEqual, 1)

	manager.FailConfigure = true
	test.That(t, device.CreateCaptureSession(nil, sessionCallbacks, inlineHandler{}), test.ShouldBeNil)
	test.That(t, sessionCallbacks.failed, test.ShouldEqual, 1)
	test.That(t, device.Sessions(), test.ShouldHaveLength, 2)

	device.Close()
	for _, s := range device.Sessions() {
		test.That(t, s.Closed(), test.ShouldBeTrue)
	}
}

func TestCaptureToImageReader(t *testing.T) {
	manager := NewCameraManager()
	manager.AddCamera("0", DefaultCharacteristics())
	test.That(t, manager.OpenCamera("0", &deviceEvents{}, inlineHandler{}), test.ShouldBeNil)
	device := manager.LastDevice()

	factory := &ImageReaderFactory{}
	platformReader, err := factory.NewImageReader(64, 48, platform.ImageFormatJPEG, 1)
	test.That(t, err, test.ShouldBeNil)
	reader := factory.Readers()[0]
	test.That(t, platformReader.Surface().ID(), test.ShouldNotBeEmpty)

	var available int
	reader.SetOnImageAvailableListener(func(platform.ImageReader) { available++ }, inlineHandler{})

	test.That(t, device.CreateCaptureSession([]platform.Surface{reader.Surface()}, &sessionEvents{}, inlineHandler{}),
		test.ShouldBeNil)
	session := device.LastSession()

	builder, err := device.CreateCaptureRequest(platform.TemplateStillCapture)
	test.That(t, err, test.ShouldBeNil)
	builder.AddTarget(reader.Surface())

	var completed int
	callback := platform.CaptureCallbackFuncs{
		Completed: func(platform.CaptureSession, *platform.CaptureRequest) { completed++ },
	}
	test.That(t, session.Capture(builder.Build(), callback, nil), test.ShouldBeNil)
	test.That(t, session.Capture(builder.Build(), callback, nil), test.ShouldBeNil)
	test.That(t, available, test.ShouldEqual, 2)
	test.That(t, completed, test.ShouldEqual, 2)
	test.That(t, session.Captures(), test.ShouldHaveLength, 2)

	img, err := reader.AcquireLatestImage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.TimestampNs(), test.ShouldEqual, 2)
	decoded, err := imaging.Decode(bytes.NewReader(img.Planes()[0].Bytes()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, decoded.Bounds().Dx(), test.ShouldEqual, 64)
	img.Close()
	test.That(t, img.Planes()[0].Bytes(), test.ShouldBeNil)

	img, err = reader.AcquireLatestImage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldBeNil)

	session.SetFailCaptures(true)
	var failures []platform.CaptureFailure
	callback.Failed = func(_ platform.CaptureSession, _ *platform.CaptureRequest, failure platform.CaptureFailure) {
		failures = append(failures, failure)
	}
	test.That(t, session.Capture(builder.Build(), callback, nil), test.ShouldBeNil)
	test.That(t, failures, test.ShouldHaveLength, 1)
	test.That(t, failures[0].Reason, test.ShouldEqual, platform.CaptureFailureReasonError)

	reader.Close()
	test.That(t, reader.Closed(), test.ShouldBeTrue)
	test.That(t, reader.surface.Released(), test.ShouldBeTrue)
}

func TestRepeatingRequest(t *testing.T) {
	manager := NewCameraManager()
	manager.AddCamera("0", DefaultCharacteristics())
	test.That(t, manager.OpenCamera("0", &deviceEvents{}, inlineHandler{}), test.ShouldBeNil)
	device := manager.LastDevice()
	test.That(t, device.CreateCaptureSession(nil, &sessionEvents{}, inlineHandler{}), test.ShouldBeNil)
	session := device.LastSession()

	test.That(t, session.FailRepeating(), test.ShouldBeFalse)

	var failed int
	callback := platform.CaptureCallbackFuncs{
		Failed: func(platform.CaptureSession, *platform.CaptureRequest, platform.CaptureFailure) { failed++ },
	}
	request := platform.NewRequestBuilder(platform.TemplatePreview).Build()
	test.That(t, session.SetRepeatingRequest(request, callback, nil), test.ShouldBeNil)
	test.That(t, session.RepeatingRequest(), test.ShouldEqual, request)
	test.That(t, session.RepeatingCount(), test.ShouldEqual, 1)
	test.That(t, session.FailRepeating(), test.ShouldBeTrue)
	test.That(t, failed, test.ShouldEqual, 1)

	session.Close()
	test.That(t, session.SetRepeatingRequest(request, callback, nil), test.ShouldEqual, ErrSessionClosed)
}

func TestSurfaceTextureHelper(t *testing.T) {
	helper := NewSurfaceTextureHelper(inlineHandler{}, 7)
	helper.SetTextureSize(640, 480)
	surface, err := helper.NewSurface()
	test.That(t, err, test.ShouldBeNil)

	var frames []int64
	listener := func(frame *video.Frame) {
		test.That(t, frame.Buffer().TextureID(), test.ShouldEqual, 7)
		test.That(t, frame.Buffer().Width(), test.ShouldEqual, 640)
		frames = append(frames, frame.TimestampNs())
	}
	test.That(t, helper.DeliverFrame(1), test.ShouldBeTrue)
	test.That(t, helper.StartListening(listener), test.ShouldBeNil)
	test.That(t, helper.StartListening(listener), test.ShouldEqual, ErrAlreadyListening)
	helper.DeliverFrame(2)
	test.That(t, frames, test.ShouldResemble, []int64{2})
	test.That(t, helper.LivingBuffers(), test.ShouldEqual, 0)

	helper.StopListening()
	surface.Release()
	test.That(t, helper.StoppedBeforeRelease(), test.ShouldBeTrue)
	test.That(t, helper.Listening(), test.ShouldBeFalse)

	helper.StopListening()
	test.That(t, helper.StoppedBeforeRelease(), test.ShouldBeFalse)
	test.That(t, helper.StopCalls(), test.ShouldEqual, 2)
}

func TestOrientation(t *testing.T) {
	o := NewOrientation(90)
	test.That(t, o.DeviceOrientation(), test.ShouldEqual, 90)
	o.Set(270)
	test.That(t, o.DeviceOrientation(), test.ShouldEqual, 270)
}
