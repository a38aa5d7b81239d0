package fake

import "go.uber.org/atomic"

// Orientation is a settable platform.OrientationSource.
type Orientation struct {
	degrees atomic.Int32
}

// NewOrientation returns a source reporting degrees.
func NewOrientation(degrees int) *Orientation {
	o := &Orientation{}
	o.Set(degrees)
	return o
}

// Set changes the reported rotation.
func (o *Orientation) Set(degrees int) {
	o.degrees.Store(int32(degrees))
}

// DeviceOrientation returns the last value given to Set.
func (o *Orientation) DeviceOrientation() int {
	return int(o.degrees.Load())
}
