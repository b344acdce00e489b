package frameshare

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceOptions describes the shared backing store to allocate.
type SurfaceOptions struct {
	// Width and Height are the surface dimensions in pixels.
	Width  uint32
	Height uint32

	// Format is the rendering pixel format the server draws with.
	Format gputypes.TextureFormat

	// SurfaceFormat is the cross-process surface format tag derived
	// from Format via MapPixelFormat.
	SurfaceFormat SurfaceFormat

	// BytesPerElement is the per-pixel byte count of SurfaceFormat,
	// required by surface APIs that size their backing plane explicitly.
	BytesPerElement int

	// Label is an optional debug name for GPU tooling.
	Label string
}

// SharedSurface is one cross-process-importable GPU surface together
// with the device-local texture and view bound onto it. Implementations
// wrap the platform surface primitive (IOSurface, dma-buf, D3D shared
// handle).
//
// The bound texture must be usable both as a render target and as a
// shader-readable source, since either publish path may write it and
// consumers sample it.
type SharedSurface interface {
	// Handle returns the opaque handle consumer processes import.
	Handle() uintptr

	// Texture returns the device texture bound onto the backing store.
	Texture() hal.Texture

	// View returns a texture view onto the bound texture.
	View() hal.TextureView

	// Release drops the backing store, the bound texture, and the view.
	// Release must be safe to call more than once.
	Release()
}

// SurfaceAllocator creates shared backing stores. The allocator is a
// platform collaborator: frameshare decides when to (re)allocate, the
// allocator decides how.
//
// Allocate failures are recoverable from the server's point of view; the
// publish cycle that triggered the allocation is skipped and the next
// cycle retries.
type SurfaceAllocator interface {
	Allocate(opts SurfaceOptions) (SharedSurface, error)
}

// Renderer draws an arbitrary source texture into a destination texture,
// honoring region crop and vertical flip. It is the fallback used when a
// direct copy cannot satisfy a publish request: format conversion,
// flipping, and sample-count resolves all happen inside Render.
//
// The renderer submits its own GPU work; it must not block on completion.
type Renderer interface {
	Render(src, dst *Texture, region image.Rectangle, flip bool) error
}

// RendererFactory builds the Renderer for a server's device and pixel
// format at construction time. A factory error is fatal to NewServer:
// a server that cannot fall back to rendered publishes would fail
// unpredictably later, so it is never constructed at all.
type RendererFactory func(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) (Renderer, error)

// Transport is the base-server abstraction the publisher announces
// through. AnnounceFrame is invoked strictly after the shared surface has
// been fully written on the device; SendMetadata is invoked before any
// GPU work for the cycle is issued.
type Transport interface {
	// AnnounceFrame makes the latest published surface discoverable by
	// consumers.
	AnnounceFrame()

	// SendMetadata delivers an opaque, frame-scoped string through the
	// out-of-band metadata channel.
	SendMetadata(meta string)

	// HasClients reports whether any consumer is currently attached.
	HasClients() bool
}

// Service is the read-only server identity exposed to discovery
// collaborators.
type Service interface {
	// Name returns the server's published name.
	Name() string

	// HasClients reports whether any consumer is currently attached.
	HasClients() bool
}
