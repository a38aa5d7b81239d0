package platform

import (
	"fmt"

	"go.viam.com/camsession/enumeration"
)

// LensFacing is the direction a camera faces relative to the screen.
type LensFacing int

// Lens facings.
const (
	LensFacingFront LensFacing = iota
	LensFacingBack
	LensFacingExternal
)

func (l LensFacing) String() string {
	switch l {
	case LensFacingFront:
		return "front"
	case LensFacingBack:
		return "back"
	case LensFacingExternal:
		return "external"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// Template selects the defaults a device fills into a new capture request.
type Template int

// Request templates.
const (
	// TemplatePreview prefers a high frame rate over post-processing quality.
	TemplatePreview Template = 1
	// TemplateStillCapture prefers image quality over frame rate.
	TemplateStillCapture Template = 2
	// TemplateRecord keeps a stable frame rate with recording quality post-processing.
	TemplateRecord Template = 3
)

func (t Template) String() string {
	switch t {
	case TemplatePreview:
		return "preview"
	case TemplateStillCapture:
		return "still_capture"
	case TemplateRecord:
		return "record"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Key names a capture request field.
type Key string

// Capture request keys.
const (
	KeyControlAETargetFpsRange       Key = "android.control.aeTargetFpsRange"
	KeyControlAEMode                 Key = "android.control.aeMode"
	KeyControlAELock                 Key = "android.control.aeLock"
	KeyControlAFMode                 Key = "android.control.afMode"
	KeyControlVideoStabilizationMode Key = "android.control.videoStabilizationMode"
	KeyLensOpticalStabilizationMode  Key = "android.lens.opticalStabilizationMode"
	KeyFlashMode                     Key = "android.flash.mode"
	KeyJPEGOrientation               Key = "android.jpeg.orientation"
)

// Capture request values.
const (
	ControlAEModeOff = 0
	ControlAEModeOn  = 1

	ControlAFModeOff               = 0
	ControlAFModeAuto              = 1
	ControlAFModeMacro             = 2
	ControlAFModeContinuousVideo   = 3
	ControlAFModeContinuousPicture = 4
	ControlAFModeEDOF              = 5

	ControlVideoStabilizationModeOff = 0
	ControlVideoStabilizationModeOn  = 1

	LensOpticalStabilizationModeOff = 0
	LensOpticalStabilizationModeOn  = 1

	FlashModeOff    = 0
	FlashModeSingle = 1
	FlashModeTorch  = 2
)

// Characteristics are the static properties of a camera device.
type Characteristics struct {
	SensorOrientation int
	LensFacing        LensFacing
	FlashAvailable    bool

	AvailableOpticalStabilization []int
	AvailableVideoStabilization   []int
	AvailableAFModes              []int

	// FpsRanges are the AE target fps ranges as the device reports them, in either whole frames
	// or thousandths of frames per second.
	FpsRanges []enumeration.FramerateRange
	// OutputSizes are the sizes the device can render into a preview texture.
	OutputSizes []enumeration.Size
}

// SupportedSizes returns the sizes usable for capture.
func (c Characteristics) SupportedSizes() []enumeration.Size {
	sizes := make([]enumeration.Size, 0, len(c.OutputSizes))
	for _, s := range c.OutputSizes {
		if s.Width > 0 && s.Height > 0 {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// IsFrontFacing reports whether the lens faces the user.
func (c Characteristics) IsFrontFacing() bool {
	return c.LensFacing == LensFacingFront
}

func containsMode(modes []int, mode int) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

// SupportsOpticalStabilization reports whether optical stabilization can be turned on.
func (c Characteristics) SupportsOpticalStabilization() bool {
	return containsMode(c.AvailableOpticalStabilization, LensOpticalStabilizationModeOn)
}

// SupportsVideoStabilization reports whether video stabilization can be turned on.
func (c Characteristics) SupportsVideoStabilization() bool {
	return containsMode(c.AvailableVideoStabilization, ControlVideoStabilizationModeOn)
}

// SupportsAFMode reports whether the auto-focus mode is available.
func (c Characteristics) SupportsAFMode(mode int) bool {
	return containsMode(c.AvailableAFModes, mode)
}
