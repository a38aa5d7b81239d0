package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/camsession/config"
	"go.viam.com/camsession/logging"
	"go.viam.com/camsession/platform/fake"
)

const defaultCameraID = "0"

// loadConfig reads the --config file when given and applies the stream flags on top.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.SessionConfig, error) {
	cfg := &config.SessionConfig{}
	if path := c.String(configFlag); path != "" {
		read, err := config.Read(path, logger)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read config")
		}
		cfg = read
	}

	if c.IsSet(cameraFlag) || cfg.CameraID == "" {
		cfg.CameraID = c.String(cameraFlag)
	}
	if cfg.CameraID == "" {
		cfg.CameraID = defaultCameraID
	}
	if c.IsSet(widthFlag) {
		cfg.Width = c.Int(widthFlag)
	}
	if c.IsSet(heightFlag) {
		cfg.Height = c.Int(heightFlag)
	}
	if c.IsSet(fpsFlag) {
		cfg.FrameRate = c.Int(fpsFlag)
	}
	if err := cfg.Validate("session"); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// newCameraManager registers the configured cameras, or a default rear camera under the session's
// camera id when none are configured.
func newCameraManager(cfg *config.SessionConfig) (*fake.CameraManager, error) {
	manager := fake.NewCameraManager()
	if len(cfg.Cameras) == 0 {
		manager.AddCamera(cfg.CameraID, fake.DefaultCharacteristics())
		return manager, nil
	}
	for _, camera := range cfg.Cameras {
		characteristics, err := camera.Characteristics()
		if err != nil {
			return nil, errors.Wrapf(err, "camera %q", camera.ID)
		}
		manager.AddCamera(camera.ID, characteristics)
	}
	return manager, nil
}
