package frameshare

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TextureDescriptor carries the properties of a texture that the publish
// decision logic needs. It mirrors the WebGPU texture descriptor fields
// that matter for copy eligibility; everything else stays with the
// underlying HAL texture.
type TextureDescriptor struct {
	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// SampleCount is the number of samples per pixel (1 for non-MSAA).
	SampleCount uint32

	// Usage specifies how the texture may be used.
	Usage gputypes.TextureUsage
}

// Texture pairs a HAL texture with the descriptor it was created from.
// The HAL layer does not expose creation parameters after the fact, so
// the publisher keeps them alongside the handle; the descriptor is
// immutable after construction.
//
// A Texture does not own its HAL resources unless it was produced by the
// server's surface cache, in which case the cache releases them.
type Texture struct {
	tex  hal.Texture
	view hal.TextureView
	desc TextureDescriptor
}

// NewTexture wraps an existing HAL texture and optional view with its
// descriptor. A zero SampleCount is normalized to 1.
func NewTexture(tex hal.Texture, view hal.TextureView, desc TextureDescriptor) *Texture {
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	return &Texture{tex: tex, view: view, desc: desc}
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.desc.Height }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.desc.Format }

// SampleCount returns the number of samples per pixel.
func (t *Texture) SampleCount() uint32 { return t.desc.SampleCount }

// Usage returns the usage flags the texture was created with.
func (t *Texture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// Bounds returns the texture extent as a rectangle anchored at the
// origin, in the form publish regions are clipped against.
func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(t.desc.Width), int(t.desc.Height))
}

// RenderTargetOnly reports whether the texture is restricted to
// render-attachment use. Such textures cannot serve as a blit source and
// always route through the renderer fallback.
func (t *Texture) RenderTargetOnly() bool {
	return t.desc.Usage == gputypes.TextureUsageRenderAttachment
}

// HAL returns the underlying HAL texture handle.
func (t *Texture) HAL() hal.Texture { return t.tex }

// View returns the texture view bound onto the texture, or nil if none
// was supplied.
func (t *Texture) View() hal.TextureView { return t.view }

// String returns a short description for logs.
func (t *Texture) String() string {
	return fmt.Sprintf("Texture[%dx%d %v samples=%d]",
		t.desc.Width, t.desc.Height, t.desc.Format, t.desc.SampleCount)
}
