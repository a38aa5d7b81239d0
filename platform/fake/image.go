package fake

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/camsession/platform"
)

// ImageReaderFactory is a fake platform.ImageReaderFactory.
type ImageReaderFactory struct {
	mu      sync.Mutex
	readers []*ImageReader

	// Err is returned by NewImageReader when set.
	Err error
	// Encode produces the bytes of each captured image. It defaults to a solid gray JPEG of the
	// reader's size.
	Encode func(width, height int, frameNumber int64) ([]byte, error)
}

// NewImageReader returns a reader that fills images with Encode.
func (f *ImageReaderFactory) NewImageReader(width, height int, format platform.ImageFormat, maxImages int) (platform.ImageReader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if maxImages < 1 {
		return nil, errors.Errorf("maxImages must be positive, got %d", maxImages)
	}
	encode := f.Encode
	if encode == nil {
		encode = EncodeGrayJPEG
	}
	r := &ImageReader{width: width, height: height, format: format, maxImages: maxImages, encode: encode}
	r.surface = newSurface(r)
	f.readers = append(f.readers, r)
	return r, nil
}

// Readers returns every reader made so far.
func (f *ImageReaderFactory) Readers() []*ImageReader {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*ImageReader(nil), f.readers...)
}

// EncodeGrayJPEG returns a solid gray JPEG.
func EncodeGrayJPEG(width, height int, _ int64) ([]byte, error) {
	img := imaging.New(width, height, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImageReader is a fake platform.ImageReader holding at most maxImages pending images.
type ImageReader struct {
	width     int
	height    int
	format    platform.ImageFormat
	maxImages int
	encode    func(width, height int, frameNumber int64) ([]byte, error)
	surface   *Surface

	closed atomic.Bool

	mu       sync.Mutex
	pending  []*Image
	listener func(reader platform.ImageReader)
	handler  platform.Handler
	// withholdImages makes produce notify the listener without queuing an image.
	withholdImages bool
}

// Surface returns the reader's surface.
func (r *ImageReader) Surface() platform.Surface {
	return r.surface
}

// Width returns the image width.
func (r *ImageReader) Width() int {
	return r.width
}

// Height returns the image height.
func (r *ImageReader) Height() int {
	return r.height
}

// Format returns the image format.
func (r *ImageReader) Format() platform.ImageFormat {
	return r.format
}

// SetOnImageAvailableListener replaces the listener.
func (r *ImageReader) SetOnImageAvailableListener(listener func(reader platform.ImageReader), handler platform.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = listener
	r.handler = handler
}

// AcquireLatestImage returns the newest pending image and closes the older ones.
func (r *ImageReader) AcquireLatestImage() (platform.Image, error) {
	if r.closed.Load() {
		return nil, errors.New("image reader closed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return nil, nil
	}
	latest := r.pending[len(r.pending)-1]
	for _, img := range r.pending[:len(r.pending)-1] {
		img.Close()
	}
	r.pending = nil
	return latest, nil
}

// WithholdImages makes subsequent captures signal availability without an image.
func (r *ImageReader) WithholdImages(withhold bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withholdImages = withhold
}

func (r *ImageReader) produce(frameNumber int64) {
	if r.closed.Load() {
		return
	}
	r.mu.Lock()
	if !r.withholdImages {
		data, err := r.encode(r.width, r.height, frameNumber)
		if err != nil {
			data = nil
		}
		if len(r.pending) == r.maxImages {
			r.pending[0].Close()
			r.pending = r.pending[1:]
		}
		r.pending = append(r.pending, &Image{format: r.format, data: data, timestampNs: frameNumber})
	}
	listener, handler := r.listener, r.handler
	r.mu.Unlock()

	if listener != nil && handler != nil {
		handler.Post(func() { listener(r) })
	}
}

// Close closes the reader and its pending images.
func (r *ImageReader) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, img := range r.pending {
		img.Close()
	}
	r.pending = nil
	r.surface.Release()
}

// Closed reports whether Close was called.
func (r *ImageReader) Closed() bool {
	return r.closed.Load()
}

// Image is a fake platform.Image with one plane.
type Image struct {
	format      platform.ImageFormat
	data        []byte
	timestampNs int64
	closed      atomic.Bool
}

// NewImage returns an image holding data.
func NewImage(format platform.ImageFormat, data []byte, timestampNs int64) *Image {
	return &Image{format: format, data: data, timestampNs: timestampNs}
}

// Format returns the image format.
func (img *Image) Format() platform.ImageFormat {
	return img.format
}

// Planes returns the single plane.
func (img *Image) Planes() []platform.Plane {
	return []platform.Plane{plane{img: img}}
}

// TimestampNs returns the capture timestamp.
func (img *Image) TimestampNs() int64 {
	return img.timestampNs
}

// Close closes the image.
func (img *Image) Close() {
	img.closed.Store(true)
}

// Closed reports whether Close was called.
func (img *Image) Closed() bool {
	return img.closed.Load()
}

type plane struct {
	img *Image
}

// Bytes returns nil once the image is closed, like a buffer that has been handed back.
func (p plane) Bytes() []byte {
	if p.img.closed.Load() {
		return nil
	}
	return p.img.data
}

func (p plane) RowStride() int {
	return 0
}

func (p plane) PixelStride() int {
	return 0
}
