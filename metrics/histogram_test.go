package metrics

import (
	"testing"

	"go.viam.com/test"
)

func TestExponentialBounds(t *testing.T) {
	bounds := exponentialBounds(1, 10000, 50)
	test.That(t, bounds, test.ShouldHaveLength, 49)
	test.That(t, bounds[0], test.ShouldEqual, 1.0)
	test.That(t, bounds[len(bounds)-1], test.ShouldEqual, 10000.0)
	for i := 1; i < len(bounds); i++ {
		test.That(t, bounds[i], test.ShouldBeGreaterThan, bounds[i-1])
	}
}

func TestCounts(t *testing.T) {
	_, err := NewCounts("test/bad_counts", 10, 5, 50)
	test.That(t, err, test.ShouldNotBeNil)

	h, err := NewCounts("test/counts", 1, 10000, 50)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.Name(), test.ShouldEqual, "test/counts")

	data, err := h.Distribution()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Count, test.ShouldEqual, int64(0))

	h.AddSample(12)
	h.AddSample(20000)
	data, err = h.Distribution()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Count, test.ShouldEqual, int64(2))
	test.That(t, data.Max, test.ShouldEqual, 20000.0)
	// 20000 lands in the overflow bucket.
	test.That(t, data.CountPerBucket[len(data.CountPerBucket)-1], test.ShouldEqual, int64(1))
}

func TestEnumeration(t *testing.T) {
	_, err := NewEnumeration("test/bad_enum", 0)
	test.That(t, err, test.ShouldNotBeNil)

	h, err := NewEnumeration("test/enum", 3)
	test.That(t, err, test.ShouldBeNil)
	h.AddSample(0)
	h.AddSample(2)
	h.AddSample(2)

	data, err := h.Distribution()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.CountPerBucket, test.ShouldResemble, []int64{1, 0, 2, 0, 0})
}
