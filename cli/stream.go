package cli

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/atomic"

	"go.viam.com/camsession/camerathread"
	"go.viam.com/camsession/components/camera/camera2"
	"go.viam.com/camsession/config"
	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/platform/fake"
	"go.viam.com/camsession/utils"
	"go.viam.com/camsession/video"
)

// consumer is the CreateSessionCallback and Events of a streamed session. Its methods run on the
// camera thread and never block.
type consumer struct {
	logger logging.Logger
	// frameCtx is in debug mode when every frame should be logged.
	frameCtx context.Context

	startOnce sync.Once
	started   chan error
	endOnce   sync.Once
	ended     chan error

	frames       atomic.Int64
	lastRotation atomic.Int32
}

func newConsumer(frameCtx context.Context, logger logging.Logger) *consumer {
	return &consumer{
		logger:   logger,
		frameCtx: frameCtx,
		started:  make(chan error, 1),
		ended:    make(chan error, 1),
	}
}

func (c *consumer) OnDone(session *camera2.Session) {
	c.startOnce.Do(func() { c.started <- nil })
}

func (c *consumer) OnFailure(failureType camera2.FailureType, err error) {
	c.startOnce.Do(func() { c.started <- errors.Wrapf(err, "camera failed to start (%s)", failureType) })
}

func (c *consumer) OnCameraOpening() {
	c.logger.Info("camera opening")
}

func (c *consumer) OnCameraClosed(session *camera2.Session) {
	c.logger.Infow("camera closed", "camera_id", session.CameraID())
}

func (c *consumer) OnCameraDisconnected(session *camera2.Session) {
	c.endOnce.Do(func() { c.ended <- errors.Errorf("camera %s disconnected", session.CameraID()) })
}

func (c *consumer) OnCameraError(session *camera2.Session, err error) {
	c.endOnce.Do(func() { c.ended <- errors.Wrapf(err, "camera %s failed", session.CameraID()) })
}

func (c *consumer) OnFrameCaptured(session *camera2.Session, frame *video.Frame) {
	if c.frames.Inc() == 1 {
		c.logger.Infow("first frame",
			"width", frame.RotatedWidth(), "height", frame.RotatedHeight(), "rotation", frame.Rotation())
	}
	c.logger.CDebugw(c.frameCtx, "frame captured",
		"timestamp_ns", frame.TimestampNs(), "rotation", frame.Rotation())
	c.lastRotation.Store(int32(frame.Rotation()))
}

// StreamAction opens the camera, streams for --duration and stops.
func StreamAction(c *cli.Context) error {
	logger := logging.NewLogger("camsession")
	config.InitLoggingSettings(logger, c.Bool(debugFlag))

	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	manager, err := newCameraManager(cfg)
	if err != nil {
		return err
	}
	histograms, err := camera2.DefaultHistograms()
	if err != nil {
		return err
	}

	thread := camerathread.New("camera", logger)
	defer thread.Close()
	snapshotThread := camerathread.New("snapshot", logger)
	defer snapshotThread.Close()

	clk := clock.New()
	helper := fake.NewSurfaceTextureHelper(thread, 1)
	orientation := fake.NewOrientation(c.Int(orientationFlag))
	frameCtx := c.Context
	if c.Bool(debugFramesFlag) {
		frameCtx = logging.EnableDebugMode(frameCtx, "frames")
	}
	sessionConsumer := newConsumer(frameCtx, logger)

	session := camera2.Create(sessionConsumer, sessionConsumer, camera2.Dependencies{
		Thread:        thread,
		CameraManager: manager,
		TextureHelper: helper,
		ImageReaders:  &fake.ImageReaderFactory{},
		Orientation:   orientation,
		Histograms:    histograms,
		Clock:         clk,
		Logger:        logger,
	}, cfg.CaptureConfig())
	defer session.Stop()

	select {
	case err := <-sessionConsumer.started:
		if err != nil {
			return err
		}
	case <-c.Context.Done():
		return c.Context.Err()
	}

	format := session.CaptureFormat()
	fmt.Fprintf(c.App.Writer, "streaming camera %s at %s (%s)\n",
		session.CameraID(), format, format.Video().FrameFormat)

	pump := utils.NewStoppableWorkers(func(ctx context.Context) {
		pumpFrames(ctx, clk, helper, format)
	})
	defer pump.Stop()

	if c.Bool(torchFlag) {
		if !session.HasTorch() {
			logger.Warnw("camera has no torch", "camera_id", session.CameraID())
		} else if !session.SetTorch(true) {
			logger.Warn("failed to turn the torch on")
		}
	}

	if path := c.String(snapshotFlag); path != "" {
		if err := takeSnapshot(c.Context, session, snapshotThread, path); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote snapshot to %s\n", path)
	}

	var streamErr error
	select {
	case <-c.Context.Done():
	case <-clk.After(c.Duration(durationFlag)):
	case streamErr = <-sessionConsumer.ended:
	}
	pump.Stop()
	session.Stop()

	fmt.Fprintf(c.App.Writer, "captured %d frames (rotation %d)\n",
		sessionConsumer.frames.Load(), sessionConsumer.lastRotation.Load())
	return streamErr
}

// pumpFrames feeds the texture helper at the negotiated frame rate.
func pumpFrames(ctx context.Context, clk clock.Clock, helper *fake.SurfaceTextureHelper, format enumeration.CaptureFormat) {
	fps := format.Framerate.Max / 1000
	if fps <= 0 {
		fps = config.DefaultFrameRate
	}
	ticker := clk.Ticker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !helper.DeliverFrame(now.UnixNano()) {
				return
			}
		}
	}
}

type snapshotResult struct {
	data        []byte
	orientation int
	err         error
}

// snapshotSink delivers the first snapshot outcome to a buffered channel.
type snapshotSink chan snapshotResult

func (s snapshotSink) CaptureSuccess(data []byte, orientation int) {
	select {
	case s <- snapshotResult{data: data, orientation: orientation}:
	default:
	}
}

func (s snapshotSink) CaptureFailed(err error) {
	select {
	case s <- snapshotResult{err: err}:
	default:
	}
}

// takeSnapshot captures a still, rotates it upright and writes it to path.
func takeSnapshot(ctx context.Context, session *camera2.Session, handler *camerathread.Thread, path string) error {
	mimeType, err := utils.MimeTypeFromPath(path)
	if err != nil {
		return err
	}

	results := make(snapshotSink, 1)
	session.ProcessSingleRequest(results, handler)
	var result snapshotResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.err != nil {
		return errors.Wrap(result.err, "cannot take snapshot")
	}

	img, err := camera2.DecodeSnapshot(result.data, result.orientation)
	if err != nil {
		return err
	}
	format := imaging.JPEG
	if mimeType == utils.MimeTypePNG {
		format = imaging.PNG
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	guard := utils.NewGuard(func() {
		//nolint:errcheck,gosec
		f.Close()
		//nolint:errcheck,gosec
		os.Remove(path)
	})
	defer guard.OnFail()

	if err := imaging.Encode(f, img, format); err != nil {
		return errors.Wrapf(err, "cannot encode snapshot as %s", mimeType)
	}
	if err := f.Close(); err != nil {
		return err
	}
	guard.Success()
	return nil
}
