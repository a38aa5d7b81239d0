package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/logging"
)

// CamerasAction lists the cameras the platform exposes and the format a session with the
// configured request would negotiate on each.
func CamerasAction(c *cli.Context) error {
	logger := logging.NewLogger("camsession")
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	manager, err := newCameraManager(cfg)
	if err != nil {
		return err
	}
	ids, err := manager.CameraIDs()
	if err != nil {
		return err
	}

	for _, id := range ids {
		characteristics, err := manager.CameraCharacteristics(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\tsensor %d\tflash %t\n",
			id, characteristics.LensFacing, characteristics.SensorOrientation, characteristics.FlashAvailable)

		factor := enumeration.GetFpsUnitFactor(characteristics.FpsRanges)
		ranges := enumeration.ConvertFramerates(characteristics.FpsRanges, factor)
		sizes := characteristics.SupportedSizes()
		if len(ranges) == 0 || len(sizes) == 0 {
			fmt.Fprintln(c.App.Writer, "\tno supported capture formats")
			continue
		}
		size := enumeration.GetClosestSupportedSize(sizes, cfg.Width, cfg.Height)
		format := enumeration.CaptureFormat{
			Width:     size.Width,
			Height:    size.Height,
			Framerate: enumeration.GetClosestSupportedFramerateRange(ranges, cfg.FrameRate),
		}
		props := format.Video()
		fmt.Fprintf(c.App.Writer, "\t%s\t%dx%d %.1ffps %s\n",
			format, props.Width, props.Height, props.FrameRate, props.FrameFormat)
	}
	return nil
}
