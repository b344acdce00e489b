package frameshare

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// DefaultPixelFormat is the rendering pixel format used when a server is
// constructed without WithPixelFormat. High-precision float keeps the
// shared surface lossless for HDR and linear-light producers.
const DefaultPixelFormat = gputypes.TextureFormatRGBA32Float

// SurfaceFormat tags the pixel layout of the shared, cross-process
// backing store. Allocators translate the tag into whatever their
// platform's surface API expects.
type SurfaceFormat uint8

const (
	// SurfaceFormatBGRA32 is 8-bit-per-channel BGRA, 4 bytes per element.
	// This is the baseline every platform surface API supports.
	SurfaceFormatBGRA32 SurfaceFormat = iota

	// SurfaceFormatRGB30 is 10-bit RGB with 2-bit alpha packed into
	// 4 bytes per element.
	SurfaceFormatRGB30

	// SurfaceFormatRGBA64Half is 16-bit half-float RGBA, 8 bytes per
	// element.
	SurfaceFormatRGBA64Half

	// SurfaceFormatRGBA128 is 32-bit float RGBA, 16 bytes per element.
	SurfaceFormatRGBA128
)

// String returns a human-readable name for the surface format.
func (f SurfaceFormat) String() string {
	switch f {
	case SurfaceFormatBGRA32:
		return "BGRA32"
	case SurfaceFormatRGB30:
		return "RGB30"
	case SurfaceFormatRGBA64Half:
		return "RGBA64Half"
	case SurfaceFormatRGBA128:
		return "RGBA128"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// MapPixelFormat maps a rendering pixel format to the equivalent shared
// surface format tag and its bytes per element. The mapping is total:
// formats outside the supported set fall back to the 8-bit BGRA baseline
// rather than failing, so an unusual source format degrades to a
// universally importable surface instead of aborting the server.
func MapPixelFormat(format gputypes.TextureFormat) (SurfaceFormat, int) {
	switch format {
	case gputypes.TextureFormatRGBA32Float:
		return SurfaceFormatRGBA128, 16
	case gputypes.TextureFormatRGBA16Float:
		return SurfaceFormatRGBA64Half, 8
	case gputypes.TextureFormatRGB10A2Unorm:
		return SurfaceFormatRGB30, 4
	default:
		return SurfaceFormatBGRA32, 4
	}
}
