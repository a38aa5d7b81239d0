package camera2

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/camsession/camerathread"
	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/platform"
)

// phase is the internal lifecycle of a Session. Phases only move forward.
type phase int

const (
	phaseInit phase = iota
	phaseOpening
	phaseConfiguring
	phaseRunning
	phaseStopped
)

func (p phase) String() string {
	switch p {
	case phaseInit:
		return "init"
	case phaseOpening:
		return "opening"
	case phaseConfiguring:
		return "configuring"
	case phaseRunning:
		return "running"
	case phaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is one capture session over one camera device. Create starts it; Stop ends it.
type Session struct {
	thread         *camerathread.Thread
	createCallback CreateSessionCallback
	events         Events
	cameraManager  platform.CameraManager
	textureHelper  platform.SurfaceTextureHelper
	imageReaders   platform.ImageReaderFactory
	orientation    platform.OrientationSource
	histograms     Histograms
	clock          clock.Clock
	logger         logging.Logger

	cameraID  string
	width     int
	height    int
	framerate int

	// Set at start.
	characteristics platform.Characteristics
	fpsUnitFactor   int
	captureFormat   enumeration.CaptureFormat

	// Set while the device opens.
	device         platform.Device
	previewSurface platform.Surface
	stillReader    platform.ImageReader

	// Set once the capture session is configured. requestBuilder is non-nil iff captureSession is.
	captureSession platform.CaptureSession
	requestBuilder *platform.RequestBuilder

	phase              phase
	firstFrameReported bool
	constructionTime   time.Time
}

// Create starts a capture session on the camera thread and returns its handle. The start verdict
// arrives on cb; the stream arrives on events.
func Create(cb CreateSessionCallback, events Events, deps Dependencies, conf Config) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Global()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	s := &Session{
		thread:         deps.Thread,
		createCallback: cb,
		events:         events,
		cameraManager:  deps.CameraManager,
		textureHelper:  deps.TextureHelper,
		imageReaders:   deps.ImageReaders,
		orientation:    deps.Orientation,
		histograms:     deps.Histograms.withDefaults(),
		clock:          clk,
		logger:         logger.Sublogger("camera2").WithFields("camera_id", conf.CameraID),
		cameraID:       conf.CameraID,
		width:          conf.Width,
		height:         conf.Height,
		framerate:      conf.Framerate,
	}
	s.logger.Debug("create new camera2 session")
	s.constructionTime = s.clock.Now()

	if err := s.thread.Run(s.start); err != nil {
		s.phase = phaseStopped
		events.OnCameraOpening()
		cb.OnFailure(FailureError, errors.Wrap(err, "failed to start camera2 session"))
	}
	return s
}

func (s *Session) start() {
	s.thread.CheckIsOnThread()
	s.logger.Debug("start")

	s.phase = phaseOpening
	s.events.OnCameraOpening()

	characteristics, err := s.cameraManager.CameraCharacteristics(s.cameraID)
	if err != nil {
		s.reportError(errors.Wrap(err, "failed to get camera characteristics"))
		return
	}
	s.characteristics = characteristics

	if err := s.findCaptureFormat(); err != nil {
		s.reportError(err)
		return
	}
	if err := s.provisionStillReader(); err != nil {
		s.reportError(err)
		return
	}
	s.openCamera()
}

func (s *Session) openCamera() {
	s.thread.CheckIsOnThread()
	s.logger.Debug("opening camera")

	if err := s.cameraManager.OpenCamera(s.cameraID, deviceCallback{s}, s.thread); err != nil {
		s.reportError(errors.Wrap(err, "failed to open camera"))
	}
}

// run executes task on the camera thread and reports whether it ran.
func (s *Session) run(task func()) bool {
	if err := s.thread.Run(task); err != nil {
		s.logger.Warnw("camera thread unavailable", "error", err)
		return false
	}
	return true
}

// Stop stops the session. Local state is released before Stop returns; OnCameraClosed follows
// once the device reports it closed. Stopping an already stopped session does nothing.
func (s *Session) Stop() {
	s.run(s.stop)
}

func (s *Session) stop() {
	s.thread.CheckIsOnThread()
	s.logger.Debug("stop camera2 session")
	if s.phase == phaseStopped {
		return
	}

	stopStart := s.clock.Now()
	startPending := s.phase < phaseRunning
	s.phase = phaseStopped
	s.teardown()
	s.histograms.StopTimeMs.AddSample(int(s.clock.Since(stopStart).Milliseconds()))

	if startPending {
		s.createCallback.OnFailure(FailureError, ErrStoppedBeforeStart)
	}
}

// State reports whether the session is still running.
func (s *Session) State() State {
	state := StateStopped
	s.run(func() {
		if s.phase != phaseStopped {
			state = StateRunning
		}
	})
	return state
}

// CaptureFormat returns the negotiated format. It is the zero value until start has chosen one.
func (s *Session) CaptureFormat() enumeration.CaptureFormat {
	var format enumeration.CaptureFormat
	s.run(func() { format = s.captureFormat })
	return format
}

// CameraID returns the id of the camera this session drives.
func (s *Session) CameraID() string {
	return s.cameraID
}

// verdict is the one terminal notification a session owes once it stops on its own: a start
// failure to the creator, or a stream event to the consumer.
type verdict interface {
	deliver(s *Session)
}

type startFailure struct {
	failureType FailureType
	err         error
}

func (v startFailure) deliver(s *Session) {
	s.createCallback.OnFailure(v.failureType, v.err)
}

type streamError struct {
	err error
}

func (v streamError) deliver(s *Session) {
	s.events.OnCameraError(s, v.err)
}

type streamDisconnected struct{}

func (streamDisconnected) deliver(s *Session) {
	s.events.OnCameraDisconnected(s)
}

// terminate stops the session and delivers its verdict. Before the session has started streaming
// every failure is a start failure. Once stopped it does nothing.
func (s *Session) terminate(failureType FailureType, err error) {
	s.thread.CheckIsOnThread()
	if s.phase == phaseStopped {
		s.logger.Debugw("ignoring failure after stop", "error", err)
		return
	}

	var v verdict
	switch {
	case s.phase < phaseRunning:
		v = startFailure{failureType: failureType, err: err}
	case failureType == FailureDisconnected:
		v = streamDisconnected{}
	default:
		v = streamError{err: err}
	}

	s.phase = phaseStopped
	s.teardown()
	v.deliver(s)
}

// reportError is where every asynchronous failure of a started session ends up.
func (s *Session) reportError(err error) {
	s.thread.CheckIsOnThread()
	if s.phase != phaseStopped {
		s.logger.Errorw("camera2 session error", "error", err, "phase", s.phase.String())
	}
	s.terminate(FailureError, err)
}

// teardown releases everything the session holds. Each reference is cleared before it is
// released, so re-entry from a close callback finds nothing left to release.
func (s *Session) teardown() {
	s.thread.CheckIsOnThread()
	s.logger.Debug("stop internal")

	// The texture helper may outlive this session; it must stop delivering before any surface
	// made from it is released.
	s.textureHelper.StopListening()

	if captureSession := s.captureSession; captureSession != nil {
		s.captureSession = nil
		s.requestBuilder = nil
		captureSession.Close()
	}
	if surface := s.previewSurface; surface != nil {
		s.previewSurface = nil
		surface.Release()
	}
	if device := s.device; device != nil {
		s.device = nil
		device.Close()
	}
	if reader := s.stillReader; reader != nil {
		s.stillReader = nil
		reader.Close()
	}

	s.logger.Debug("stop done")
}
