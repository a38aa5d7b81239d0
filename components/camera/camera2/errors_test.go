package camera2

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/platform/fake"
)

func TestErrorDescriptions(t *testing.T) {
	for _, tc := range []struct {
		code     int
		expected string
	}{
		{platform.ErrorCameraDevice, "Camera device has encountered a fatal error."},
		{platform.ErrorCameraDisabled, "Camera device could not be opened due to a device policy."},
		{platform.ErrorCameraInUse, "Camera device is in use already."},
		{platform.ErrorCameraService, "Camera service has encountered a fatal error."},
		{
			platform.ErrorMaxCamerasInUse,
			"Camera device could not be opened because there are too many other open camera devices.",
		},
		{42, "Unknown camera error: 42"},
	} {
		err := &DeviceError{Code: tc.code}
		test.That(t, err.Error(), test.ShouldEqual, tc.expected)
	}
}

func TestDeviceErrorBeforeStart(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.manager.ManualConfigure = true

	s := h.create(640, 480, 30)
	test.That(t, h.device().Fail(platform.ErrorCameraInUse), test.ShouldBeTrue)
	h.flush()

	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "failure:error", "closed"})
	var deviceErr *DeviceError
	test.That(t, errors.As(h.rec.Failures()[0], &deviceErr), test.ShouldBeTrue)
	test.That(t, deviceErr.Code, test.ShouldEqual, platform.ErrorCameraInUse)
	test.That(t, h.rec.Errors(), test.ShouldBeEmpty)
	test.That(t, s.State(), test.ShouldEqual, StateStopped)
}

func TestDeviceErrorAfterStart(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()

	test.That(t, h.device().Fail(platform.ErrorCameraDevice), test.ShouldBeTrue)
	h.flush()
	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "done", "error", "closed"})
	test.That(t, h.rec.Errors()[0].Error(), test.ShouldEqual, "Camera device has encountered a fatal error.")
	test.That(t, h.rec.Failures(), test.ShouldBeEmpty)
	test.That(t, s.State(), test.ShouldEqual, StateStopped)

	// Errors after the session stopped are dropped.
	test.That(t, h.device().Fail(platform.ErrorCameraService), test.ShouldBeTrue)
	h.flush()
	test.That(t, h.rec.Errors(), test.ShouldHaveLength, 1)
	test.That(t, h.logs.FilterMessage("ignoring failure after stop").Len(), test.ShouldEqual, 1)
}

func TestErrorAfterStopIsSilent(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()
	s.Stop()
	h.flush()

	test.That(t, h.thread.Run(func() { s.reportError(errors.New("late")) }), test.ShouldBeNil)
	h.flush()
	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "done", "closed"})
	test.That(t, h.stop.Samples(), test.ShouldHaveLength, 1)
}

func TestConfigureFailed(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.manager.FailConfigure = true

	h.create(640, 480, 30)
	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "failure:error", "closed"})
	test.That(t, errors.Is(h.rec.Failures()[0], ErrConfigureFailed), test.ShouldBeTrue)
	test.That(t, h.captureSession().Closed(), test.ShouldBeTrue)
	test.That(t, h.helper.Surfaces()[0].Released(), test.ShouldBeTrue)
}

func TestLateConfigureFailureIsRuntimeError(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.startedSession()

	test.That(t, h.captureSession().FailConfigure(), test.ShouldBeTrue)
	h.flush()
	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "done", "error", "closed"})
	test.That(t, errors.Is(h.rec.Errors()[0], ErrConfigureFailed), test.ShouldBeTrue)
}

func TestCreateCaptureSessionError(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.manager.ManualOpen = true

	h.create(640, 480, 30)
	h.device().SetCreateSessionErr(errors.New("surface abandoned"))
	test.That(t, h.device().Open(), test.ShouldBeTrue)
	h.flush()

	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "failure:error", "closed"})
	test.That(t, h.rec.Failures()[0].Error(), test.ShouldEqual, "failed to create capture session: surface abandoned")
	test.That(t, h.helper.Surfaces()[0].Released(), test.ShouldBeTrue)
}

func TestRequestBuildFailureIsStartFailure(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.manager.ManualConfigure = true

	h.create(640, 480, 30)
	h.device().SetCreateRequestErr(errors.New("device busy"))
	test.That(t, h.captureSession().Configure(), test.ShouldBeTrue)
	h.flush()

	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "failure:error", "closed"})
	test.That(t, h.rec.Failures()[0].Error(), test.ShouldEqual, "failed to start capture request: device busy")
	test.That(t, h.rec.Errors(), test.ShouldBeEmpty)
}

func TestRepeatingRequestFailureIsStartFailure(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.manager.ManualConfigure = true

	h.create(640, 480, 30)
	cs := h.captureSession()
	cs.SetRepeatingErr(errors.New("session invalidated"))
	test.That(t, cs.Configure(), test.ShouldBeTrue)
	h.flush()

	test.That(t, h.rec.Log(), test.ShouldResemble, []string{"opening", "failure:error", "closed"})
	test.That(t, cs.Closed(), test.ShouldBeTrue)
	test.That(t, h.helper.Listening(), test.ShouldBeFalse)
}

func TestRepeatingCaptureFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()

	test.That(t, h.captureSession().FailRepeating(), test.ShouldBeTrue)
	h.flush()
	test.That(t, s.State(), test.ShouldEqual, StateRunning)
	test.That(t, h.logs.FilterMessage("capture failed").Len(), test.ShouldEqual, 1)

	h.deliverFrame()
	test.That(t, h.rec.Frames(), test.ShouldHaveLength, 1)
}
