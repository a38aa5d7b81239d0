// Package metrics provides histogram sinks backed by opencensus distribution views.
package metrics

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

// Histogram receives integer samples.
type Histogram interface {
	AddSample(sample int)
}

// CensusHistogram is an opencensus measure plus a distribution view over it.
type CensusHistogram struct {
	measure *stats.Int64Measure
	view    *view.View
}

// NewCounts returns a histogram whose bucketCount buckets are spaced exponentially between min and
// max, with an underflow bucket below min and an overflow bucket at max and above.
func NewCounts(name string, min, max, bucketCount int) (*CensusHistogram, error) {
	if min < 1 || max <= min || bucketCount < 3 {
		return nil, errors.Errorf("invalid counts histogram %q: min=%d max=%d buckets=%d", name, min, max, bucketCount)
	}
	return newHistogram(name, "ms", exponentialBounds(min, max, bucketCount))
}

// NewEnumeration returns a histogram with one bucket per value in [0, max] and an overflow bucket.
func NewEnumeration(name string, max int) (*CensusHistogram, error) {
	if max < 1 {
		return nil, errors.Errorf("invalid enumeration histogram %q: max=%d", name, max)
	}
	bounds := make([]float64, 0, max+1)
	for i := 1; i <= max+1; i++ {
		bounds = append(bounds, float64(i))
	}
	return newHistogram(name, stats.UnitDimensionless, bounds)
}

func newHistogram(name, unit string, bounds []float64) (*CensusHistogram, error) {
	measure := stats.Int64(name, name, unit)
	v := &view.View{
		Name:        name,
		Description: name,
		Measure:     measure,
		Aggregation: view.Distribution(bounds...),
	}
	if err := view.Register(v); err != nil {
		return nil, errors.Wrapf(err, "registering view %q", name)
	}
	return &CensusHistogram{measure: measure, view: v}, nil
}

// exponentialBounds returns bucketCount-1 increasing bounds from min to max.
func exponentialBounds(min, max, bucketCount int) []float64 {
	bounds := make([]float64, 0, bucketCount-1)
	bounds = append(bounds, float64(min))
	logMax := math.Log(float64(max))
	current := min
	for i := 2; i < bucketCount; i++ {
		logCurrent := math.Log(float64(current))
		logRatio := (logMax - logCurrent) / float64(bucketCount-i)
		next := int(math.Round(math.Exp(logCurrent + logRatio)))
		if next <= current {
			next = current + 1
		}
		current = next
		bounds = append(bounds, float64(current))
	}
	return bounds
}

// AddSample records sample.
func (h *CensusHistogram) AddSample(sample int) {
	stats.Record(context.Background(), h.measure.M(int64(sample)))
}

// Name returns the view name.
func (h *CensusHistogram) Name() string {
	return h.view.Name
}

// Distribution returns the samples aggregated so far.
func (h *CensusHistogram) Distribution() (*view.DistributionData, error) {
	rows, err := view.RetrieveData(h.view.Name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &view.DistributionData{CountPerBucket: make([]int64, len(h.view.Aggregation.Buckets)+1)}, nil
	}
	data, ok := rows[0].Data.(*view.DistributionData)
	if !ok {
		return nil, errors.Errorf("unexpected aggregation %T for %q", rows[0].Data, h.view.Name)
	}
	return data, nil
}
