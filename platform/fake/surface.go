package fake

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/camsession/platform"
	"go.viam.com/camsession/video"
)

// Surface is a fake platform.Surface. Surfaces made by an ImageReader route captures to it.
type Surface struct {
	id       string
	released atomic.Bool
	reader   *ImageReader
}

func newSurface(reader *ImageReader) *Surface {
	return &Surface{id: uuid.NewString(), reader: reader}
}

// ID returns a unique id.
func (s *Surface) ID() string {
	return s.id
}

// Release releases the surface.
func (s *Surface) Release() {
	s.released.Store(true)
}

// Released reports whether Release was called.
func (s *Surface) Released() bool {
	return s.released.Load()
}

// ErrAlreadyListening is returned by StartListening while a listener is installed.
var ErrAlreadyListening = errors.New("texture helper already has a listener")

// SurfaceTextureHelper is a fake platform.SurfaceTextureHelper. Frames are pushed with
// DeliverFrame and handed to the listener on the helper's handler.
type SurfaceTextureHelper struct {
	handler   platform.Handler
	textureID int

	mu         sync.Mutex
	width      int
	height     int
	listener   func(frame *video.Frame)
	surfaces   []*Surface
	stopCalls  int
	stoppedAll bool

	livingBuffers atomic.Int32
}

// NewSurfaceTextureHelper returns a helper that delivers frames on handler.
func NewSurfaceTextureHelper(handler platform.Handler, textureID int) *SurfaceTextureHelper {
	return &SurfaceTextureHelper{handler: handler, textureID: textureID}
}

// SetTextureSize sets the size of delivered frames.
func (h *SurfaceTextureHelper) SetTextureSize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
}

// TextureSize returns the size set by SetTextureSize.
func (h *SurfaceTextureHelper) TextureSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// NewSurface returns a surface over the helper's texture.
func (h *SurfaceTextureHelper) NewSurface() (platform.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := newSurface(nil)
	h.surfaces = append(h.surfaces, s)
	return s, nil
}

// Surfaces returns every surface made so far.
func (h *SurfaceTextureHelper) Surfaces() []*Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Surface(nil), h.surfaces...)
}

// StartListening installs listener.
func (h *SurfaceTextureHelper) StartListening(listener func(frame *video.Frame)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return ErrAlreadyListening
	}
	h.listener = listener
	return nil
}

// StopListening removes the listener. Surfaces released while a listener is still installed make
// StoppedBeforeRelease report false.
func (h *SurfaceTextureHelper) StopListening() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listener = nil
	h.stopCalls++
	h.stoppedAll = true
	for _, s := range h.surfaces {
		if s.Released() {
			h.stoppedAll = false
		}
	}
}

// StoppedBeforeRelease reports whether, on the last StopListening call, none of the helper's
// surfaces had been released yet.
func (h *SurfaceTextureHelper) StoppedBeforeRelease() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stoppedAll
}

// StopCalls returns how many times StopListening was called.
func (h *SurfaceTextureHelper) StopCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopCalls
}

// Listening reports whether a listener is installed.
func (h *SurfaceTextureHelper) Listening() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listener != nil
}

// LivingBuffers returns how many delivered texture buffers still hold references.
func (h *SurfaceTextureHelper) LivingBuffers() int {
	return int(h.livingBuffers.Load())
}

// DeliverFrame posts a frame with timestampNs to the listener. Frames posted without a listener
// are dropped when they run.
func (h *SurfaceTextureHelper) DeliverFrame(timestampNs int64) bool {
	return h.handler.Post(func() {
		h.mu.Lock()
		listener, width, height := h.listener, h.width, h.height
		h.mu.Unlock()
		if listener == nil {
			return
		}

		h.livingBuffers.Inc()
		buffer := video.NewTextureBuffer(width, height, video.TextureTypeOES, h.textureID, mgl32.Ident3(), func() {
			h.livingBuffers.Dec()
		})
		frame := video.NewFrame(buffer, 0, timestampNs)
		listener(frame)
		frame.Release()
	})
}
