// Package enumeration describes what a camera device can capture and picks the capture format
// closest to a request.
package enumeration

import (
	"fmt"
	"math"

	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
)

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width_px"`
	Height int `json:"height_px"`
}

// Area returns width times height.
func (s Size) Area() int {
	return s.Width * s.Height
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// FramerateRange is a frame rate range. Ranges produced by ConvertFramerates are in thousandths of
// a frame per second.
type FramerateRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r FramerateRange) String() string {
	return fmt.Sprintf("[%.1f:%.1f]", float64(r.Min)/1000, float64(r.Max)/1000)
}

// CaptureFormat is the negotiated capture format of a session.
type CaptureFormat struct {
	Width     int
	Height    int
	Framerate FramerateRange
}

func (f CaptureFormat) String() string {
	return fmt.Sprintf("%dx%d@%s", f.Width, f.Height, f.Framerate)
}

// Video returns the format as mediadevices video properties. The preview texture is always NV21
// coming out of the platform camera pipeline.
func (f CaptureFormat) Video() prop.Video {
	return prop.Video{
		Width:       f.Width,
		Height:      f.Height,
		FrameRate:   float32(f.Framerate.Max) / 1000,
		FrameFormat: frame.FormatNV21,
	}
}

// GetFpsUnitFactor returns the factor that converts device reported fps ranges to thousandths of a
// frame per second. Some devices report whole frames per second and some already report
// thousandths.
func GetFpsUnitFactor(ranges []FramerateRange) int {
	if len(ranges) == 0 {
		return 1000
	}
	if ranges[0].Max < 1000 {
		return 1000
	}
	return 1
}

// ConvertFramerates scales device reported ranges by unitFactor.
func ConvertFramerates(ranges []FramerateRange, unitFactor int) []FramerateRange {
	converted := make([]FramerateRange, 0, len(ranges))
	for _, r := range ranges {
		converted = append(converted, FramerateRange{Min: r.Min * unitFactor, Max: r.Max * unitFactor})
	}
	return converted
}

// Penalty weights for GetClosestSupportedFramerateRange. Values are in thousandths of fps.
const (
	maxFpsDiffThreshold   = 5000
	maxFpsLowDiffWeight   = 1
	maxFpsHighDiffWeight  = 3
	minFpsThreshold       = 8000
	minFpsLowValueWeight  = 1
	minFpsHighValueWeight = 4
)

// progressivePenalty weighs value by lowWeight up to threshold and by highWeight above it.
func progressivePenalty(value, threshold, lowWeight, highWeight int) int {
	if value < threshold {
		return value * lowWeight
	}
	return threshold*lowWeight + (value-threshold)*highWeight
}

// GetClosestSupportedFramerateRange picks the range best suited to requestedFps (whole frames per
// second) from ranges in thousandths of fps. A low minimum lets the camera lower its frame rate in
// the dark, and a maximum close to the request keeps the frame rate stable; both are penalized
// progressively once they stray past their thresholds. Ties resolve to the first range.
func GetClosestSupportedFramerateRange(ranges []FramerateRange, requestedFps int) FramerateRange {
	best := ranges[0]
	bestDiff := math.MaxInt
	for _, r := range ranges {
		minFpsError := progressivePenalty(r.Min, minFpsThreshold, minFpsLowValueWeight, minFpsHighValueWeight)
		maxFpsError := progressivePenalty(
			abs(requestedFps*1000-r.Max), maxFpsDiffThreshold, maxFpsLowDiffWeight, maxFpsHighDiffWeight)
		if diff := minFpsError + maxFpsError; diff < bestDiff {
			best, bestDiff = r, diff
		}
	}
	return best
}

// GetClosestSupportedSize picks the size minimizing |w-width| + |h-height|. Ties go to the larger
// area, then to the first size seen.
func GetClosestSupportedSize(sizes []Size, width, height int) Size {
	best := sizes[0]
	bestDiff := math.MaxInt
	for _, s := range sizes {
		diff := abs(width-s.Width) + abs(height-s.Height)
		if diff < bestDiff || (diff == bestDiff && s.Area() > best.Area()) {
			best, bestDiff = s, diff
		}
	}
	return best
}

// GetLargestSize returns the size with the largest area. The first size wins ties.
func GetLargestSize(sizes []Size) Size {
	largest := sizes[0]
	for _, s := range sizes {
		if s.Area() > largest.Area() {
			largest = s
		}
	}
	return largest
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
