// Package video contains the reference counted texture frames produced by the camera preview.
package video

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"
)

// TextureType is the GL texture target of a TextureBuffer.
type TextureType int

const (
	// TextureTypeOES is an external OES texture, which is what camera preview surfaces produce.
	TextureTypeOES TextureType = iota
	// TextureTypeRGB is a regular 2D texture.
	TextureTypeRGB
)

func (t TextureType) String() string {
	switch t {
	case TextureTypeOES:
		return "oes"
	case TextureTypeRGB:
		return "rgb"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// TextureBuffer is a GL texture plus the 2D homogeneous matrix applied to texture coordinates when
// sampling it. A TextureBuffer starts with one reference; the release function runs when the last
// reference is released.
type TextureBuffer struct {
	width       int
	height      int
	textureType TextureType
	textureID   int
	transform   mgl32.Mat3

	refCount *atomic.Int32
	release  func()
}

// NewTextureBuffer returns a buffer holding one reference. release may be nil.
func NewTextureBuffer(
	width, height int,
	textureType TextureType,
	textureID int,
	transform mgl32.Mat3,
	release func(),
) *TextureBuffer {
	return &TextureBuffer{
		width:       width,
		height:      height,
		textureType: textureType,
		textureID:   textureID,
		transform:   transform,
		refCount:    atomic.NewInt32(1),
		release:     release,
	}
}

// Width returns the width in pixels.
func (b *TextureBuffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *TextureBuffer) Height() int { return b.height }

// Type returns the texture target.
func (b *TextureBuffer) Type() TextureType { return b.textureType }

// TextureID returns the GL texture name.
func (b *TextureBuffer) TextureID() int { return b.textureID }

// TransformMatrix returns the texture coordinate transform.
func (b *TextureBuffer) TransformMatrix() mgl32.Mat3 { return b.transform }

// RefCount returns the number of outstanding references.
func (b *TextureBuffer) RefCount() int32 { return b.refCount.Load() }

// Retain adds a reference.
func (b *TextureBuffer) Retain() {
	b.refCount.Inc()
}

// Release drops a reference, running the release function once none are left.
func (b *TextureBuffer) Release() {
	remaining := b.refCount.Dec()
	if remaining < 0 {
		panic("texture buffer released more times than retained")
	}
	if remaining == 0 && b.release != nil {
		b.release()
	}
}

// ApplyTransformMatrix returns a buffer over the same texture whose transform is this buffer's
// transform followed by m. The new buffer keeps this one alive until it is released itself.
func (b *TextureBuffer) ApplyTransformMatrix(m mgl32.Mat3, width, height int) *TextureBuffer {
	b.Retain()
	return NewTextureBuffer(width, height, b.textureType, b.textureID, b.transform.Mul3(m), b.Release)
}

// TransformPoint maps texture coordinates (u, v) through the transform matrix.
func (b *TextureBuffer) TransformPoint(u, v float32) (float32, float32) {
	p := b.transform.Mul3x1(mgl32.Vec3{u, v, 1})
	return p.X() / p.Z(), p.Y() / p.Z()
}

// WithModifiedTransformMatrix mirrors (horizontally) and rotates buffer by rotation degrees around
// the texture center. The size is unchanged, which relies on the producer having sized the texture
// for the orientation after the rotation is undone.
func WithModifiedTransformMatrix(buffer *TextureBuffer, mirror bool, rotation int) *TextureBuffer {
	m := mgl32.Translate2D(0.5, 0.5)
	if mirror {
		m = m.Mul3(mgl32.Scale2D(-1, 1))
	}
	m = m.Mul3(mgl32.HomogRotate2D(mgl32.DegToRad(float32(rotation))))
	m = m.Mul3(mgl32.Translate2D(-0.5, -0.5))
	return buffer.ApplyTransformMatrix(m, buffer.Width(), buffer.Height())
}
