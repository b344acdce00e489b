package frameshare

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameshare/directory"
)

// Option configures a Server during creation.
//
// Example:
//
//	srv, err := frameshare.NewServer("preview", dev,
//	    frameshare.WithPixelFormat(gputypes.TextureFormatRGBA16Float),
//	    frameshare.WithAllocator(iosurfaceAllocator),
//	)
type Option func(*serverOptions)

// serverOptions holds optional configuration for Server creation.
type serverOptions struct {
	format          gputypes.TextureFormat
	allocator       SurfaceAllocator
	renderer        Renderer
	rendererFactory RendererFactory
	transport       Transport
	description     map[string]string
	directory       *directory.Directory
}

// defaultOptions returns the default server options.
func defaultOptions() serverOptions {
	return serverOptions{
		format:    DefaultPixelFormat,
		directory: directory.Default(),
	}
}

// WithPixelFormat sets the rendering pixel format of the shared surface.
// The format is fixed for the server's lifetime; the default is
// [DefaultPixelFormat].
func WithPixelFormat(format gputypes.TextureFormat) Option {
	return func(o *serverOptions) {
		o.format = format
	}
}

// WithAllocator sets the cross-process surface allocator. Without an
// allocator every publish cycle is skipped, so production servers always
// supply one; tests may omit it to exercise skip behavior.
func WithAllocator(a SurfaceAllocator) Option {
	return func(o *serverOptions) {
		o.allocator = a
	}
}

// WithRenderer injects a ready-made fallback renderer. Takes precedence
// over WithRendererFactory.
func WithRenderer(r Renderer) Option {
	return func(o *serverOptions) {
		o.renderer = r
	}
}

// WithRendererFactory sets the factory that builds the fallback renderer
// for the server's device and pixel format. A factory error fails
// NewServer with [ErrRendererInit].
func WithRendererFactory(f RendererFactory) Option {
	return func(o *serverOptions) {
		o.rendererFactory = f
	}
}

// WithTransport sets the announce/metadata transport. By default the
// server announces through its directory entry.
func WithTransport(t Transport) Option {
	return func(o *serverOptions) {
		o.transport = t
	}
}

// WithDescription supplies the base identity description from the
// hosting collaborator. The mapping is copied; base entries are
// immutable for the server's lifetime. Use
// [Server.SetDescriptionValue] for entries that change later.
func WithDescription(base map[string]string) Option {
	return func(o *serverOptions) {
		o.description = base
	}
}

// WithDirectory registers the server in a specific directory instead of
// [directory.Default]. Tests use this to avoid cross-test leakage
// through the process-wide directory.
func WithDirectory(d *directory.Directory) Option {
	return func(o *serverOptions) {
		o.directory = d
	}
}
