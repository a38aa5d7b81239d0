package camera2

import (
	"github.com/pkg/errors"

	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/platform"
)

func (s *Session) findCaptureFormat() error {
	s.thread.CheckIsOnThread()

	s.fpsUnitFactor = enumeration.GetFpsUnitFactor(s.characteristics.FpsRanges)
	framerateRanges := enumeration.ConvertFramerates(s.characteristics.FpsRanges, s.fpsUnitFactor)
	sizes := s.characteristics.SupportedSizes()
	s.logger.Debugw("available capture formats", "sizes", sizes, "fps_ranges", framerateRanges)

	if len(framerateRanges) == 0 || len(sizes) == 0 {
		return ErrNoSupportedFormats
	}

	bestFpsRange := enumeration.GetClosestSupportedFramerateRange(framerateRanges, s.framerate)
	bestSize := enumeration.GetClosestSupportedSize(sizes, s.width, s.height)
	enumeration.ReportCameraResolution(s.histograms.Resolution, bestSize)

	s.captureFormat = enumeration.CaptureFormat{
		Width:     bestSize.Width,
		Height:    bestSize.Height,
		Framerate: bestFpsRange,
	}
	s.logger.Infow("using capture format", "format", s.captureFormat.String())
	return nil
}

// provisionStillReader creates the JPEG reader backing snapshots, sized to the largest supported
// size. Any previous reader is closed first.
func (s *Session) provisionStillReader() error {
	s.thread.CheckIsOnThread()

	// TODO: make the still size policy configurable; some callers want the largest 16:9 size.
	largest := enumeration.GetLargestSize(s.characteristics.SupportedSizes())
	if s.stillReader != nil {
		s.stillReader.Close()
		s.stillReader = nil
	}
	reader, err := s.imageReaders.NewImageReader(largest.Width, largest.Height, platform.ImageFormatJPEG, 1)
	if err != nil {
		return errors.Wrap(err, "failed to create still image reader")
	}
	s.stillReader = reader
	s.logger.Debugw("still image reader ready", "size", largest.String())
	return nil
}
