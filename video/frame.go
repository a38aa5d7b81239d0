package video

// Frame is a texture buffer with the clockwise rotation, in degrees, needed to display it upright.
type Frame struct {
	buffer      *TextureBuffer
	rotation    int
	timestampNs int64
}

// NewFrame wraps buffer. The frame takes over the caller's reference to the buffer.
func NewFrame(buffer *TextureBuffer, rotation int, timestampNs int64) *Frame {
	return &Frame{buffer: buffer, rotation: rotation, timestampNs: timestampNs}
}

// Buffer returns the underlying texture buffer.
func (f *Frame) Buffer() *TextureBuffer { return f.buffer }

// Rotation returns the rotation in degrees.
func (f *Frame) Rotation() int { return f.rotation }

// TimestampNs returns the capture timestamp in nanoseconds.
func (f *Frame) TimestampNs() int64 { return f.timestampNs }

// RotatedWidth returns the width after applying the rotation.
func (f *Frame) RotatedWidth() int {
	if f.rotation%180 == 0 {
		return f.buffer.Width()
	}
	return f.buffer.Height()
}

// RotatedHeight returns the height after applying the rotation.
func (f *Frame) RotatedHeight() int {
	if f.rotation%180 == 0 {
		return f.buffer.Height()
	}
	return f.buffer.Width()
}

// Retain adds a reference to the buffer. Consumers that keep a frame past the callback that
// delivered it must retain it.
func (f *Frame) Retain() {
	f.buffer.Retain()
}

// Release drops a reference to the buffer.
func (f *Frame) Release() {
	f.buffer.Release()
}
