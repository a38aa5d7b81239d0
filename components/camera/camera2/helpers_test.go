package camera2

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"

	"go.viam.com/camsession/camerathread"
	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/platform/fake"
	"go.viam.com/camsession/video"
)

const testCameraID = "0"

type recordingHistogram struct {
	mu      sync.Mutex
	samples []int
}

func (h *recordingHistogram) AddSample(sample int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = append(h.samples, sample)
}

func (h *recordingHistogram) Samples() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.samples...)
}

type capturedFrame struct {
	rotation    int
	width       int
	height      int
	timestampNs int64
	// corners are the texture coordinates (0,0) and (1,0) mapped through the frame transform.
	origin [2]float32
	right  [2]float32
}

// recorder is both the CreateSessionCallback and the Events of a session under test.
type recorder struct {
	mu       sync.Mutex
	log      []string
	failures []error
	errors   []error
	frames   []capturedFrame
	done     *Session
	onDone   func(s *Session)
}

func (r *recorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, event)
}

func (r *recorder) OnDone(session *Session) {
	r.mu.Lock()
	r.done = session
	r.log = append(r.log, "done")
	onDone := r.onDone
	r.mu.Unlock()
	if onDone != nil {
		onDone(session)
	}
}

func (r *recorder) OnFailure(failureType FailureType, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "failure:"+failureType.String())
	r.failures = append(r.failures, err)
}

func (r *recorder) OnCameraOpening() {
	r.record("opening")
}

func (r *recorder) OnCameraClosed(*Session) {
	r.record("closed")
}

func (r *recorder) OnCameraDisconnected(*Session) {
	r.record("disconnected")
}

func (r *recorder) OnCameraError(_ *Session, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "error")
	r.errors = append(r.errors, err)
}

func (r *recorder) OnFrameCaptured(_ *Session, frame *video.Frame) {
	ox, oy := frame.Buffer().TransformPoint(0, 0)
	rx, ry := frame.Buffer().TransformPoint(1, 0)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, "frame")
	r.frames = append(r.frames, capturedFrame{
		rotation:    frame.Rotation(),
		width:       frame.Buffer().Width(),
		height:      frame.Buffer().Height(),
		timestampNs: frame.TimestampNs(),
		origin:      [2]float32{ox, oy},
		right:       [2]float32{rx, ry},
	})
}

func (r *recorder) Log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

func (r *recorder) Failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failures...)
}

func (r *recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

func (r *recorder) Frames() []capturedFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedFrame(nil), r.frames...)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.Log() {
		if e == event {
			n++
		}
	}
	return n
}

type snapshotResult struct {
	data        []byte
	orientation int
	err         error
}

type snapshotRecorder struct {
	mu      sync.Mutex
	results []snapshotResult
}

func (r *snapshotRecorder) CaptureSuccess(data []byte, orientation int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, snapshotResult{data: data, orientation: orientation})
}

func (r *snapshotRecorder) CaptureFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, snapshotResult{err: err})
}

func (r *snapshotRecorder) Results() []snapshotResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]snapshotResult(nil), r.results...)
}

type harness struct {
	t           *testing.T
	thread      *camerathread.Thread
	manager     *fake.CameraManager
	helper      *fake.SurfaceTextureHelper
	readers     *fake.ImageReaderFactory
	orientation *fake.Orientation
	clock       *clock.Mock
	start       *recordingHistogram
	stop        *recordingHistogram
	resolution  *recordingHistogram
	rec         *recorder
	logger      logging.Logger
	logs        *observer.ObservedLogs
	nextFrameNs int64
}

func newHarness(t *testing.T, characteristics platform.Characteristics) *harness {
	t.Helper()
	logger, logs := logging.NewObservedTestLogger(t)
	thread := camerathread.New("camera", logger)
	t.Cleanup(thread.Close)

	manager := fake.NewCameraManager()
	manager.AddCamera(testCameraID, characteristics)

	return &harness{
		t:           t,
		thread:      thread,
		manager:     manager,
		helper:      fake.NewSurfaceTextureHelper(thread, 7),
		readers:     &fake.ImageReaderFactory{},
		orientation: fake.NewOrientation(0),
		clock:       clock.NewMock(),
		start:       &recordingHistogram{},
		stop:        &recordingHistogram{},
		resolution:  &recordingHistogram{},
		rec:         &recorder{},
		logger:      logger,
		logs:        logs,
	}
}

func (h *harness) deps() Dependencies {
	return Dependencies{
		Thread:        h.thread,
		CameraManager: h.manager,
		TextureHelper: h.helper,
		ImageReaders:  h.readers,
		Orientation:   h.orientation,
		Histograms: Histograms{
			StartTimeMs: h.start,
			StopTimeMs:  h.stop,
			Resolution:  h.resolution,
		},
		Clock:  h.clock,
		Logger: h.logger,
	}
}

func (h *harness) create(width, height, framerate int) *Session {
	h.t.Helper()
	s := Create(h.rec, h.rec, h.deps(), Config{CameraID: testCameraID, Width: width, Height: height, Framerate: framerate})
	h.flush()
	return s
}

// flush waits until the camera thread has run every task posted so far, including tasks those
// tasks post in turn.
func (h *harness) flush() {
	h.t.Helper()
	flushThread(h.t, h.thread)
}

func flushThread(t *testing.T, thread *camerathread.Thread) {
	t.Helper()
	for i := 0; i < 10; i++ {
		test.That(t, thread.Run(func() {}), test.ShouldBeNil)
	}
}

func (h *harness) deliverFrame() {
	h.t.Helper()
	h.nextFrameNs += int64(33 * time.Millisecond)
	test.That(h.t, h.helper.DeliverFrame(h.nextFrameNs), test.ShouldBeTrue)
	h.flush()
}

func (h *harness) device() *fake.Device {
	h.t.Helper()
	device := h.manager.LastDevice()
	test.That(h.t, device, test.ShouldNotBeNil)
	return device
}

func (h *harness) captureSession() *fake.CaptureSession {
	h.t.Helper()
	cs := h.device().LastSession()
	test.That(h.t, cs, test.ShouldNotBeNil)
	return cs
}

func (h *harness) stillReader() *fake.ImageReader {
	h.t.Helper()
	readers := h.readers.Readers()
	test.That(h.t, readers, test.ShouldHaveLength, 1)
	return readers[0]
}

// startedSession creates a session and checks that it reached OnDone.
func (h *harness) startedSession() *Session {
	h.t.Helper()
	s := h.create(640, 480, 30)
	test.That(h.t, h.rec.Log(), test.ShouldResemble, []string{"opening", "done"})
	return s
}

// internals reads session fields on the camera thread.
func (h *harness) internals(s *Session) (device, surface, reader, captureSession interface{}, builder *platform.RequestBuilder) {
	h.t.Helper()
	test.That(h.t, h.thread.Run(func() {
		device, surface, reader, captureSession = s.device, s.previewSurface, s.stillReader, s.captureSession
		builder = s.requestBuilder
	}), test.ShouldBeNil)
	return
}

func requestInt(t *testing.T, request *platform.CaptureRequest, key platform.Key) int {
	t.Helper()
	v, ok := request.Int(key)
	test.That(t, ok, test.ShouldBeTrue)
	return v
}
