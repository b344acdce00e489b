package frameshare

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"

	"github.com/gogpu/frameshare/directory"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host implements gpucontext.DeviceProvider and hands it to
// NewServer; frameshare receives the device, it does not create one.
// Providers that also expose the HAL bridge (HalDevice()/HalQueue()
// returning hal.Device and hal.Queue) enable the direct-copy fast path;
// without the bridge every publish routes through the renderer.
type DeviceHandle = gpucontext.DeviceProvider

// Server publishes frames from one producer to any number of same-host
// consumers through a shared, cross-process GPU surface.
//
// A Server is constructed with NewServer, fed frames with Publish from a
// single rendering-control goroutine, and torn down with Stop. The
// consumer-facing accessors are safe from any goroutine.
type Server struct {
	name string
	id   string

	// mu guards the surface cache, the metadata slot, and the device,
	// queue, submitter and renderer references. GPU work is never
	// submitted while holding it, so consumer reads are not blocked
	// behind rendering.
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	submit   submitter
	renderer Renderer
	cache    *surfaceCache
	meta     string
	hasMeta  bool
	stopped  bool

	transport Transport
	desc      *description
	dir       *directory.Directory
	entry     *directory.Entry
}

var _ Service = (*Server)(nil)

// NewServer creates a frame server named name on the host-provided
// device. The pixel format defaults to [DefaultPixelFormat] and is fixed
// for the server's lifetime.
//
// NewServer fails only for invalid arguments or a renderer factory
// error; every later failure is per-cycle and absorbed.
func NewServer(name string, device DeviceHandle, opts ...Option) (*Server, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if device == nil {
		return nil, ErrNilDevice
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	halDevice, halQueue := resolveHAL(device)

	s := &Server{
		name:   name,
		id:     uuid.NewString(),
		device: halDevice,
		queue:  halQueue,
		cache:  newSurfaceCache(o.allocator, o.format, name),
		dir:    o.directory,
	}
	if halDevice != nil && halQueue != nil {
		s.submit = newHALSubmitter(halDevice, halQueue)
	}

	switch {
	case o.renderer != nil:
		s.renderer = o.renderer
	case o.rendererFactory != nil:
		r, err := o.rendererFactory(halDevice, halQueue, o.format)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRendererInit, err)
		}
		s.renderer = r
	}

	surfaceFormat, _ := MapPixelFormat(o.format)
	s.desc = newDescription(o.description)
	s.desc.setBase(DescriptionName, name)
	s.desc.setBase(DescriptionUUID, s.id)
	s.desc.setBase(DescriptionSurfaceFormat, surfaceFormat.String())

	if s.dir != nil {
		s.entry = s.dir.Register(name, s.id, s.Description)
	}
	s.transport = o.transport
	if s.transport == nil {
		s.transport = s.entry
	}

	Logger().Info("frameshare: server created",
		"name", name, "uuid", s.id, "format", o.format, "surfaceFormat", surfaceFormat)
	return s, nil
}

// resolveHAL extracts the HAL device and queue from a provider that
// exposes them. Providers without the bridge yield nil, which disables
// the direct-copy path but not the server.
func resolveHAL(provider DeviceHandle) (hal.Device, hal.Queue) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil
	}
	device, _ := hp.HalDevice().(hal.Device)
	queue, _ := hp.HalQueue().(hal.Queue)
	return device, queue
}

// PublishOption configures a single publish cycle.
type PublishOption func(*publishOptions)

type publishOptions struct {
	meta       string
	hasMeta    bool
	onComplete func()
}

// WithMetadata attaches an opaque, frame-scoped string to this publish
// cycle. It is stored in the metadata slot and delivered out-of-band
// before any GPU work is issued; cycles without metadata leave the slot
// untouched.
func WithMetadata(meta string) PublishOption {
	return func(o *publishOptions) {
		o.meta = meta
		o.hasMeta = true
	}
}

// WithCompletion registers a hook invoked on the completion goroutine
// after the frame has been announced. Cycles that are skipped or fail
// never invoke it.
func WithCompletion(fn func()) PublishOption {
	return func(o *publishOptions) {
		o.onComplete = fn
	}
}

// Publish makes region of src the next shared frame. The region is
// clipped to the source bounds; flip requests a vertical flip, which
// always routes through the renderer.
//
// Publish submits GPU work and returns without waiting for it; the
// frame is announced to consumers from a completion goroutine once the
// work has retired on the device. Every per-cycle failure (nil source,
// empty region, allocation failure, renderer failure) abandons the
// cycle, leaving the previous frame observable, and is logged rather
// than returned.
//
// Publish does not serialize overlapping cycles beyond the surface
// critical section: callers that overlap publishes without waiting for
// completion own the resulting announce order.
func (s *Server) Publish(src *Texture, region image.Rectangle, flip bool, opts ...PublishOption) {
	var po publishOptions
	for _, opt := range opts {
		opt(&po)
	}

	if src == nil {
		Logger().Debug("frameshare: publish skipped, no source texture", "server", s.name)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		Logger().Debug("frameshare: publish after stop", "server", s.name)
		return
	}
	if po.hasMeta {
		s.meta = po.meta
		s.hasMeta = true
	}
	transport := s.transport
	s.mu.Unlock()

	// Metadata visibility never waits for GPU completion.
	if po.hasMeta && transport != nil {
		transport.SendMetadata(po.meta)
	}

	clipped := region.Intersect(src.Bounds())
	if clipped.Empty() {
		Logger().Debug("frameshare: publish skipped, empty region",
			"server", s.name, "region", region, "source", src.Bounds())
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	dst := s.cache.ensure(uint32(clipped.Dx()), uint32(clipped.Dy())) //nolint:gosec // clipped is non-empty
	submit := s.submit
	renderer := s.renderer
	s.mu.Unlock()

	if dst == nil {
		return // allocation failure already logged by the cache
	}

	done, err := s.writeSurface(src, dst, clipped, flip, submit, renderer)
	if err != nil {
		Logger().Warn("frameshare: publish cycle failed", "server", s.name, "err", err)
		return
	}
	if done == nil {
		return // no usable path; already logged
	}

	go func() {
		if err := done(); err != nil {
			Logger().Warn("frameshare: frame did not complete", "server", s.name, "err", err)
			return
		}
		if transport != nil {
			transport.AnnounceFrame()
		}
		if po.onComplete != nil {
			po.onComplete()
		}
	}()
}

// writeSurface gets src's clipped region into dst, choosing the direct
// copy when it is sufficient and the renderer otherwise.
func (s *Server) writeSurface(src, dst *Texture, region image.Rectangle, flip bool, submit submitter, renderer Renderer) (completion, error) {
	if fastPathEligible(src, dst, flip) && submit != nil {
		return submit.blit(src, dst, region)
	}

	if renderer == nil {
		Logger().Warn("frameshare: no renderer for fallback publish",
			"server", s.name, "flip", flip,
			"srcFormat", src.Format(), "dstFormat", dst.Format())
		return nil, nil
	}
	if err := renderer.Render(src, dst, region, flip); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if submit == nil {
		// Renderer owns the queue; nothing further to wait on here.
		return func() error { return nil }, nil
	}
	return submit.signal()
}

// fastPathEligible reports whether a direct region copy can satisfy the
// request: no flip, identical formats and sample counts, and a source
// that is not restricted to render-target-only use.
func fastPathEligible(src, dst *Texture, flip bool) bool {
	return !flip &&
		src.Format() == dst.Format() &&
		src.SampleCount() == dst.SampleCount() &&
		!src.RenderTargetOnly()
}

// CurrentFrame returns the texture bound onto the current shared
// surface, or nil when no frame has been published (or the server is
// stopped).
func (s *Server) CurrentFrame() *Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.current()
}

// CurrentMetadata returns the metadata attached to the most recent
// publish cycle that supplied any.
func (s *Server) CurrentMetadata() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, s.hasMeta
}

// SurfaceHandle returns the cross-process handle of the current shared
// surface, or zero when none is live. Transports embed it in their
// announce payloads.
func (s *Server) SurfaceHandle() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.handle()
}

// Description returns the server's identity description: the base
// mapping from the hosting collaborator merged with extension entries,
// extension winning on collision. The merge is computed fresh on every
// call.
func (s *Server) Description() map[string]string {
	return s.desc.merged()
}

// SetDescriptionValue sets an extension description entry, visible on
// the next Description call.
func (s *Server) SetDescriptionValue(key, value string) {
	s.desc.set(key, value)
}

// Device returns the server's HAL device, or nil after Stop (or when
// the provider exposed no HAL bridge).
func (s *Server) Device() hal.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Name returns the server's published name.
func (s *Server) Name() string { return s.name }

// UUID returns the server's stable identity token, also present in the
// description under [DescriptionUUID].
func (s *Server) UUID() string { return s.id }

// HasClients reports whether any consumer is attached to the server's
// transport.
func (s *Server) HasClients() bool {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()
	if transport == nil {
		return false
	}
	return transport.HasClients()
}

// Stats reports surface-cache observability counters.
type Stats struct {
	// SurfaceAllocations counts lifetime shared-surface allocations.
	SurfaceAllocations uint64

	// SurfaceBytes is the backing size of the live surface, zero when
	// none exists.
	SurfaceBytes uint64
}

// Stats returns the server's current counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		SurfaceAllocations: s.cache.allocs,
		SurfaceBytes:       s.cache.liveBytes,
	}
}

// Stop releases the shared surface and drops the device and renderer
// references, leaving the server inert: subsequent publishes are
// ignored and CurrentFrame returns nil. Stop is idempotent and safe to
// call concurrently with in-flight publishes.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cache.release()
	s.device = nil
	s.queue = nil
	s.submit = nil
	s.renderer = nil
	dir := s.dir
	s.mu.Unlock()

	if dir != nil {
		dir.Unregister(s.id)
	}
	Logger().Info("frameshare: server stopped", "name", s.name, "uuid", s.id)
}
