// Package config reads the JSON configuration of a capture session and of the cameras the demo
// platform exposes.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/camsession/components/camera/camera2"
	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/platform"
)

// Defaults applied to a session config that leaves the capture format out.
const (
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultFrameRate = 30
)

// SessionConfig describes the capture session to start.
type SessionConfig struct {
	CameraID  string `json:"camera_id"`
	Width     int    `json:"width_px,omitempty"`
	Height    int    `json:"height_px,omitempty"`
	FrameRate int    `json:"frame_rate,omitempty"`
	Debug     bool   `json:"debug,omitempty"`

	// Cameras are registered with the in-memory platform.
	Cameras []CameraConfig `json:"cameras,omitempty"`

	ConfigFilePath string `json:"-"`
}

// CameraConfig describes one camera of the in-memory platform.
type CameraConfig struct {
	ID                   string                       `json:"id"`
	LensFacing           string                       `json:"lens_facing,omitempty"`
	SensorOrientation    int                          `json:"sensor_orientation,omitempty"`
	Flash                bool                         `json:"flash,omitempty"`
	OpticalStabilization bool                         `json:"optical_stabilization,omitempty"`
	VideoStabilization   bool                         `json:"video_stabilization,omitempty"`
	ContinuousVideoFocus bool                         `json:"continuous_video_focus,omitempty"`
	Sizes                []enumeration.Size           `json:"sizes"`
	FpsRanges            []enumeration.FramerateRange `json:"fps_ranges"`
}

// ApplyDefaults fills in the capture format fields left at zero.
func (c *SessionConfig) ApplyDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.FrameRate == 0 {
		c.FrameRate = DefaultFrameRate
	}
}

// Validate ensures all parts of the config are valid.
func (c *SessionConfig) Validate(path string) error {
	if c.CameraID == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "camera_id")
	}
	if c.Width < 0 || c.Height < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if c.FrameRate < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("invalid frame_rate %d", c.FrameRate))
	}

	seen := map[string]bool{}
	for idx, camera := range c.Cameras {
		cameraPath := fmt.Sprintf("%s.cameras.%d", path, idx)
		if err := camera.Validate(cameraPath); err != nil {
			return err
		}
		if seen[camera.ID] {
			return goutils.NewConfigValidationError(cameraPath, errors.Errorf("duplicate camera id %q", camera.ID))
		}
		seen[camera.ID] = true
	}
	if len(c.Cameras) > 0 && !seen[c.CameraID] {
		return goutils.NewConfigValidationError(path, errors.Errorf("camera_id %q is not one of the configured cameras", c.CameraID))
	}
	return nil
}

// CaptureConfig returns the capture request for camera2.Create.
func (c *SessionConfig) CaptureConfig() camera2.Config {
	return camera2.Config{
		CameraID:  c.CameraID,
		Width:     c.Width,
		Height:    c.Height,
		Framerate: c.FrameRate,
	}
}

// Validate ensures all parts of the config are valid.
func (c *CameraConfig) Validate(path string) error {
	if c.ID == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "id")
	}
	if _, err := parseLensFacing(c.LensFacing); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	if c.SensorOrientation%90 != 0 || c.SensorOrientation < 0 || c.SensorOrientation >= 360 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("sensor_orientation must be one of 0, 90, 180 or 270, got %d", c.SensorOrientation))
	}
	for _, size := range c.Sizes {
		if size.Width <= 0 || size.Height <= 0 {
			return goutils.NewConfigValidationError(path, errors.Errorf("invalid size %s", size))
		}
	}
	for _, r := range c.FpsRanges {
		if r.Min <= 0 || r.Max < r.Min {
			return goutils.NewConfigValidationError(path, errors.Errorf("invalid fps range [%d:%d]", r.Min, r.Max))
		}
	}
	return nil
}

// Characteristics converts the camera config into platform characteristics.
func (c *CameraConfig) Characteristics() (platform.Characteristics, error) {
	lensFacing, err := parseLensFacing(c.LensFacing)
	if err != nil {
		return platform.Characteristics{}, err
	}

	characteristics := platform.Characteristics{
		SensorOrientation:             c.SensorOrientation,
		LensFacing:                    lensFacing,
		FlashAvailable:                c.Flash,
		AvailableOpticalStabilization: []int{platform.LensOpticalStabilizationModeOff},
		AvailableVideoStabilization:   []int{platform.ControlVideoStabilizationModeOff},
		AvailableAFModes:              []int{platform.ControlAFModeOff, platform.ControlAFModeAuto},
		FpsRanges:                     append([]enumeration.FramerateRange(nil), c.FpsRanges...),
		OutputSizes:                   append([]enumeration.Size(nil), c.Sizes...),
	}
	if c.OpticalStabilization {
		characteristics.AvailableOpticalStabilization = append(
			characteristics.AvailableOpticalStabilization, platform.LensOpticalStabilizationModeOn)
	}
	if c.VideoStabilization {
		characteristics.AvailableVideoStabilization = append(
			characteristics.AvailableVideoStabilization, platform.ControlVideoStabilizationModeOn)
	}
	if c.ContinuousVideoFocus {
		characteristics.AvailableAFModes = append(characteristics.AvailableAFModes, platform.ControlAFModeContinuousVideo)
	}
	return characteristics, nil
}

func parseLensFacing(lensFacing string) (platform.LensFacing, error) {
	switch strings.ToLower(lensFacing) {
	case "", "back", "rear":
		return platform.LensFacingBack, nil
	case "front":
		return platform.LensFacingFront, nil
	case "external":
		return platform.LensFacingExternal, nil
	default:
		return 0, errors.Errorf("unknown lens_facing %q", lensFacing)
	}
}
