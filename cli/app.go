// Package cli runs capture sessions from the command line against the in-memory camera platform.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	configFlag      = "config"
	debugFlag       = "debug"
	cameraFlag      = "camera"
	widthFlag       = "width"
	heightFlag      = "height"
	fpsFlag         = "fps"
	durationFlag    = "duration"
	orientationFlag = "orientation"
	torchFlag       = "torch"
	snapshotFlag    = "snapshot"
	debugFramesFlag = "debug-frames"
)

var app = &cli.App{
	Name:            "camsession",
	Usage:           "run camera capture sessions",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:  "stream",
			Usage: "open a camera, stream preview frames for a while and stop",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  cameraFlag,
					Value: defaultCameraID,
					Usage: "camera id; overrides the config",
				},
				&cli.IntFlag{
					Name:  widthFlag,
					Usage: "requested width in pixels; overrides the config",
				},
				&cli.IntFlag{
					Name:  heightFlag,
					Usage: "requested height in pixels; overrides the config",
				},
				&cli.IntFlag{
					Name:  fpsFlag,
					Usage: "requested frame rate; overrides the config",
				},
				&cli.DurationFlag{
					Name:  durationFlag,
					Value: 2 * time.Second,
					Usage: "how long to stream",
				},
				&cli.IntFlag{
					Name:  orientationFlag,
					Usage: "device rotation in degrees",
				},
				&cli.BoolFlag{
					Name:  torchFlag,
					Usage: "turn the torch on while streaming",
				},
				&cli.StringFlag{
					Name:  snapshotFlag,
					Usage: "capture a still into `FILE` (.jpg or .png)",
				},
				&cli.BoolFlag{
					Name:  debugFramesFlag,
					Usage: "log every captured frame without turning on debug logging",
				},
			},
			Action: StreamAction,
		},
		{
			Name:   "cameras",
			Usage:  "list the configured cameras and the format each would negotiate",
			Action: CamerasAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
