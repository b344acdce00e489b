package frameshare

import (
	"errors"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without the HAL
// bridge; servers built on it submit through an injected stub submitter.
type mockProvider struct {
	device  gpucontext.Device
	queue   gpucontext.Queue
	adapter gpucontext.Adapter
	format  gputypes.TextureFormat
}

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

func newMockProvider() *mockProvider {
	return &mockProvider{
		device:  &mockDevice{},
		queue:   &mockQueue{},
		adapter: &mockAdapter{},
		format:  gputypes.TextureFormatUndefined,
	}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return m.queue }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return m.adapter }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// stubSurface implements SharedSurface and records releases.
type stubSurface struct {
	handle   uintptr
	released int
}

func (s *stubSurface) Handle() uintptr       { return s.handle }
func (s *stubSurface) Texture() hal.Texture  { return nil }
func (s *stubSurface) View() hal.TextureView { return nil }
func (s *stubSurface) Release()              { s.released++ }

// stubAllocator implements SurfaceAllocator and records every request.
type stubAllocator struct {
	requests []SurfaceOptions
	surfaces []*stubSurface
	fail     bool
}

var errAllocFailed = errors.New("stub allocator: backing store creation failed")

func (a *stubAllocator) Allocate(opts SurfaceOptions) (SharedSurface, error) {
	if a.fail {
		return nil, errAllocFailed
	}
	s := &stubSurface{handle: uintptr(len(a.surfaces) + 1)}
	a.requests = append(a.requests, opts)
	a.surfaces = append(a.surfaces, s)
	return s, nil
}

// stubSubmitter implements submitter and records which path ran. When
// gate is non-nil, completions block until the gate is closed, letting
// tests observe the window between submit and announce.
type stubSubmitter struct {
	mu      sync.Mutex
	blits   []image.Rectangle
	signals int
	gate    chan struct{}
	failure error
}

func (s *stubSubmitter) blit(src, dst *Texture, region image.Rectangle) (completion, error) {
	s.mu.Lock()
	s.blits = append(s.blits, region)
	gate := s.gate
	failure := s.failure
	s.mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	return func() error {
		if gate != nil {
			<-gate
		}
		return nil
	}, nil
}

func (s *stubSubmitter) signal() (completion, error) {
	s.mu.Lock()
	s.signals++
	gate := s.gate
	s.mu.Unlock()
	return func() error {
		if gate != nil {
			<-gate
		}
		return nil
	}, nil
}

func (s *stubSubmitter) blitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blits)
}

func (s *stubSubmitter) signalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signals
}

// recordingRenderer implements Renderer and records invocations.
type recordingRenderer struct {
	mu         sync.Mutex
	calls      int
	lastRegion image.Rectangle
	lastFlip   bool
	err        error
}

func (r *recordingRenderer) Render(src, dst *Texture, region image.Rectangle, flip bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls++
	r.lastRegion = region
	r.lastFlip = flip
	return nil
}

func (r *recordingRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// recordingTransport implements Transport. Each announce is signaled on
// announced so tests can wait for completion goroutines.
type recordingTransport struct {
	mu        sync.Mutex
	announces int
	metadata  []string
	clients   bool
	announced chan struct{}
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{announced: make(chan struct{}, 16)}
}

func (t *recordingTransport) AnnounceFrame() {
	t.mu.Lock()
	t.announces++
	t.mu.Unlock()
	t.announced <- struct{}{}
}

func (t *recordingTransport) SendMetadata(meta string) {
	t.mu.Lock()
	t.metadata = append(t.metadata, meta)
	t.mu.Unlock()
}

func (t *recordingTransport) HasClients() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clients
}

func (t *recordingTransport) announceCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.announces
}

func (t *recordingTransport) sentMetadata() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.metadata))
	copy(out, t.metadata)
	return out
}
