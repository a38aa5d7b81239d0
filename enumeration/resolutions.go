package enumeration

import "go.viam.com/camsession/metrics"

// CommonResolutions are the resolutions tracked by the resolution histogram. Their order is part of
// the histogram's meaning and must only ever be appended to.
var CommonResolutions = []Size{
	{160, 120},
	{240, 160},
	{320, 240},
	{400, 240},
	{480, 320},
	{640, 360},
	{640, 480},
	{768, 480},
	{854, 480},
	{800, 600},
	{960, 540},
	{960, 640},
	{1024, 576},
	{1024, 600},
	{1280, 720},
	{1280, 1024},
	{1920, 1080},
	{1920, 1440},
	{2560, 1440},
	{3840, 2160},
}

// ReportCameraResolution records the 1-based index of size in CommonResolutions, or 0 for a size
// that is not listed.
func ReportCameraResolution(histogram metrics.Histogram, size Size) {
	index := 0
	for i, common := range CommonResolutions {
		if common == size {
			index = i + 1
			break
		}
	}
	histogram.AddSample(index)
}
