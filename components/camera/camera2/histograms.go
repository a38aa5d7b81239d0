package camera2

import (
	"sync"

	"go.uber.org/multierr"

	"go.viam.com/camsession/enumeration"
	"go.viam.com/camsession/metrics"
)

// Histogram names.
const (
	StartTimeHistogramName  = "camera2/start_time_ms"
	StopTimeHistogramName   = "camera2/stop_time_ms"
	ResolutionHistogramName = "camera2/resolution"
)

// Histograms are the sinks a Session reports into.
type Histograms struct {
	// StartTimeMs gets the time from creation to the first delivered frame.
	StartTimeMs metrics.Histogram
	// StopTimeMs gets the time Stop spent tearing down.
	StopTimeMs metrics.Histogram
	// Resolution gets the chosen size as an index into enumeration.CommonResolutions.
	Resolution metrics.Histogram
}

type discardHistogram struct{}

func (discardHistogram) AddSample(int) {}

func (h Histograms) withDefaults() Histograms {
	if h.StartTimeMs == nil {
		h.StartTimeMs = discardHistogram{}
	}
	if h.StopTimeMs == nil {
		h.StopTimeMs = discardHistogram{}
	}
	if h.Resolution == nil {
		h.Resolution = discardHistogram{}
	}
	return h
}

var (
	defaultHistogramsOnce sync.Once
	defaultHistograms     Histograms
	errDefaultHistograms  error
)

// DefaultHistograms returns the process wide opencensus histograms. Views are registered on the
// first call.
func DefaultHistograms() (Histograms, error) {
	defaultHistogramsOnce.Do(func() {
		start, errStart := metrics.NewCounts(StartTimeHistogramName, 1, 10000, 50)
		stop, errStop := metrics.NewCounts(StopTimeHistogramName, 1, 10000, 50)
		resolution, errResolution := metrics.NewEnumeration(ResolutionHistogramName, len(enumeration.CommonResolutions))
		errDefaultHistograms = multierr.Combine(errStart, errStop, errResolution)
		if errDefaultHistograms != nil {
			return
		}
		defaultHistograms = Histograms{StartTimeMs: start, StopTimeMs: stop, Resolution: resolution}
	})
	return defaultHistograms, errDefaultHistograms
}
