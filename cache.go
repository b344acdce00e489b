package frameshare

import "github.com/gogpu/gputypes"

// destUsage is the usage the cached surface texture is created for: the
// fast path copies into it, the slow path renders into it, and consumers
// sample it.
const destUsage = gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageTextureBinding

// surfaceCache owns at most one live shared surface per server. The
// surface is replaced wholesale, never resized in place, whenever the
// requested dimensions differ from the current ones; the pixel format is
// fixed for the cache's lifetime.
//
// All methods must be called with the owning server's mutex held.
type surfaceCache struct {
	alloc           SurfaceAllocator
	format          gputypes.TextureFormat
	surfaceFormat   SurfaceFormat
	bytesPerElement int
	label           string

	surface SharedSurface
	texture *Texture
	width   uint32
	height  uint32

	// allocs counts lifetime surface allocations; liveBytes tracks the
	// backing size of the current surface. Both feed Stats.
	allocs    uint64
	liveBytes uint64
}

func newSurfaceCache(alloc SurfaceAllocator, format gputypes.TextureFormat, label string) *surfaceCache {
	sf, bpe := MapPixelFormat(format)
	return &surfaceCache{
		alloc:           alloc,
		format:          format,
		surfaceFormat:   sf,
		bytesPerElement: bpe,
		label:           label,
	}
}

// ensure returns a surface texture of exactly w by h pixels, reallocating
// the shared surface only when the size changed. A nil return means the
// allocator failed (or none is configured); the caller skips the cycle
// and the previous surface, if any, is already gone.
func (c *surfaceCache) ensure(w, h uint32) *Texture {
	if c.surface != nil && c.width == w && c.height == h {
		return c.texture
	}
	c.release()

	if c.alloc == nil {
		Logger().Warn("frameshare: no surface allocator configured")
		return nil
	}

	surface, err := c.alloc.Allocate(SurfaceOptions{
		Width:           w,
		Height:          h,
		Format:          c.format,
		SurfaceFormat:   c.surfaceFormat,
		BytesPerElement: c.bytesPerElement,
		Label:           c.label,
	})
	if err != nil || surface == nil {
		Logger().Warn("frameshare: surface allocation failed",
			"width", w, "height", h, "format", c.surfaceFormat, "err", err)
		return nil
	}

	c.surface = surface
	c.texture = NewTexture(surface.Texture(), surface.View(), TextureDescriptor{
		Width:       w,
		Height:      h,
		Format:      c.format,
		SampleCount: 1,
		Usage:       destUsage,
	})
	c.width = w
	c.height = h
	c.allocs++
	c.liveBytes = uint64(w) * uint64(h) * uint64(c.bytesPerElement)
	return c.texture
}

// current returns the texture bound onto the live surface, or nil.
func (c *surfaceCache) current() *Texture { return c.texture }

// handle returns the cross-process handle of the live surface, or zero.
func (c *surfaceCache) handle() uintptr {
	if c.surface == nil {
		return 0
	}
	return c.surface.Handle()
}

// release unconditionally drops the current surface and its texture.
// Safe to call on an empty cache.
func (c *surfaceCache) release() {
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	c.texture = nil
	c.width = 0
	c.height = 0
	c.liveBytes = 0
}
