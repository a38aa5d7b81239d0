package platform

// ImageFormat is the pixel or encoding format of an ImageReader.
type ImageFormat int

// Image formats.
const (
	ImageFormatYUV420888 ImageFormat = 0x23
	ImageFormatJPEG      ImageFormat = 0x100
)

// ImageReaderFactory creates image readers.
type ImageReaderFactory interface {
	NewImageReader(width, height int, format ImageFormat, maxImages int) (ImageReader, error)
}

// ImageReader receives still images through its surface.
type ImageReader interface {
	Surface() Surface
	Width() int
	Height() int
	// SetOnImageAvailableListener replaces the listener, which is called on handler whenever an
	// image is ready.
	SetOnImageAvailableListener(listener func(reader ImageReader), handler Handler)
	// AcquireLatestImage returns the newest image, dropping older ones. It returns nil when no
	// image is available.
	AcquireLatestImage() (Image, error)
	Close()
}

// Image is an image acquired from an ImageReader. It must be closed.
type Image interface {
	Format() ImageFormat
	Planes() []Plane
	TimestampNs() int64
	Close()
}

// Plane is one plane of an image. Its bytes are only valid until the image is closed.
type Plane interface {
	Bytes() []byte
	RowStride() int
	PixelStride() int
}
