package camera2

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/camsession/camerathread"
	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/platform/fake"
)

func newSnapshotThread(t *testing.T, h *harness) *camerathread.Thread {
	t.Helper()
	thread := camerathread.New("snapshot", h.logger)
	t.Cleanup(thread.Close)
	return thread
}

func TestSnapshotDuringStream(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	h.orientation.Set(90)
	s := h.startedSession()
	h.deliverFrame()
	snapshotThread := newSnapshotThread(t, h)

	snapshots := &snapshotRecorder{}
	s.ProcessSingleRequest(snapshots, snapshotThread)
	h.flush()
	flushThread(t, snapshotThread)

	results := snapshots.Results()
	test.That(t, results, test.ShouldHaveLength, 1)
	test.That(t, results[0].err, test.ShouldBeNil)
	// Rear camera with the sensor at 90 and the device at 90.
	test.That(t, results[0].orientation, test.ShouldEqual, 180)

	// The still reader is sized to the largest supported size.
	img, err := DecodeSnapshot(results[0].data, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 1280)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 720)

	cs := h.captureSession()
	captures := cs.Captures()
	test.That(t, captures, test.ShouldHaveLength, 1)
	request := captures[0]
	test.That(t, request.Template(), test.ShouldEqual, platform.TemplateStillCapture)
	test.That(t, request.Targets(), test.ShouldHaveLength, 1)
	test.That(t, request.Targets()[0], test.ShouldEqual, h.stillReader().Surface())
	test.That(t, requestInt(t, request, platform.KeyJPEGOrientation), test.ShouldEqual, 180)
	test.That(t, requestInt(t, request, platform.KeyControlAEMode), test.ShouldEqual, platform.ControlAEModeOn)
	aeLock, ok := request.Bool(platform.KeyControlAELock)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, aeLock, test.ShouldBeFalse)

	// The preview keeps streaming with the original repeating request.
	test.That(t, cs.RepeatingCount(), test.ShouldEqual, 1)
	test.That(t, s.State(), test.ShouldEqual, StateRunning)
	h.deliverFrame()
	test.That(t, h.rec.Frames(), test.ShouldHaveLength, 2)
	test.That(t, h.logs.FilterMessage("snapshot capture completed").Len(), test.ShouldEqual, 1)
}

func TestSnapshotNoImage(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()
	snapshotThread := newSnapshotThread(t, h)
	h.stillReader().WithholdImages(true)

	snapshots := &snapshotRecorder{}
	s.ProcessSingleRequest(snapshots, snapshotThread)
	h.flush()
	flushThread(t, snapshotThread)

	results := snapshots.Results()
	test.That(t, results, test.ShouldHaveLength, 1)
	test.That(t, errors.Is(results[0].err, ErrNoImageAvailable), test.ShouldBeTrue)
	test.That(t, s.State(), test.ShouldEqual, StateRunning)
}

func TestSnapshotCaptureFailure(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()
	snapshotThread := newSnapshotThread(t, h)
	h.captureSession().SetFailCaptures(true)

	snapshots := &snapshotRecorder{}
	s.ProcessSingleRequest(snapshots, snapshotThread)
	h.flush()
	flushThread(t, snapshotThread)

	results := snapshots.Results()
	test.That(t, results, test.ShouldHaveLength, 1)
	var failure *CaptureFailureError
	test.That(t, errors.As(results[0].err, &failure), test.ShouldBeTrue)
	test.That(t, failure.Failure.Reason, test.ShouldEqual, platform.CaptureFailureReasonError)
	test.That(t, s.State(), test.ShouldEqual, StateRunning)
	test.That(t, h.rec.Errors(), test.ShouldBeEmpty)
}

func TestSnapshotSynchronousFailure(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()
	snapshotThread := newSnapshotThread(t, h)
	h.captureSession().SetCaptureErr(errors.New("request rejected"))

	snapshots := &snapshotRecorder{}
	s.ProcessSingleRequest(snapshots, snapshotThread)

	// Delivered before ProcessSingleRequest returned.
	results := snapshots.Results()
	test.That(t, results, test.ShouldHaveLength, 1)
	test.That(t, results[0].err.Error(), test.ShouldEqual, "snapshot failed: request rejected")
	test.That(t, s.State(), test.ShouldEqual, StateRunning)
}

func TestSnapshotNotRunning(t *testing.T) {
	h := newHarness(t, fake.DefaultCharacteristics())
	s := h.startedSession()
	snapshotThread := newSnapshotThread(t, h)
	s.Stop()

	snapshots := &snapshotRecorder{}
	s.ProcessSingleRequest(snapshots, snapshotThread)
	results := snapshots.Results()
	test.That(t, results, test.ShouldHaveLength, 1)
	test.That(t, errors.Is(results[0].err, ErrNotRunning), test.ShouldBeTrue)
}

func TestDecodeSnapshot(t *testing.T) {
	img := imaging.New(4, 2, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	test.That(t, imaging.Encode(&buf, img, imaging.JPEG), test.ShouldBeNil)

	for _, tc := range []struct {
		orientation int
		width       int
		height      int
	}{
		{0, 4, 2},
		{90, 2, 4},
		{180, 4, 2},
		{270, 2, 4},
		{-90, 2, 4},
	} {
		decoded, err := DecodeSnapshot(buf.Bytes(), tc.orientation)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, decoded.Bounds().Dx(), test.ShouldEqual, tc.width)
		test.That(t, decoded.Bounds().Dy(), test.ShouldEqual, tc.height)
	}

	_, err := DecodeSnapshot(buf.Bytes(), 45)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = DecodeSnapshot([]byte("not a jpeg"), 0)
	test.That(t, err, test.ShouldNotBeNil)
}
