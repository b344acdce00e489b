package frameshare

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// gpuWaitTimeout bounds how long a completion waits for submitted work
// to retire before the cycle is abandoned.
const gpuWaitTimeout = 5 * time.Second

// pollInterval is the sleep between completion polls of the queue.
const pollInterval = 100 * time.Microsecond

// completion blocks until the GPU work it was returned for has retired
// on the device, then releases the per-cycle resources it holds.
type completion func() error

// submitter issues the GPU work of a publish cycle. Production servers
// use the HAL-backed implementation; tests substitute a recording stub
// so no device is needed.
type submitter interface {
	// blit copies region (in source coordinates) to the destination
	// origin with no resampling and no shader pass.
	blit(src, dst *Texture, region image.Rectangle) (completion, error)

	// signal places a marker behind all work already submitted to the
	// queue, covering renderer-submitted draws.
	signal() (completion, error)
}

// halSubmitter submits through a HAL device queue. Completion tracking
// rides on the queue's monotonic submission index: Submit returns the
// index and PollCompleted reports the highest index the GPU has retired.
type halSubmitter struct {
	device hal.Device
	queue  hal.Queue
}

func newHALSubmitter(device hal.Device, queue hal.Queue) *halSubmitter {
	return &halSubmitter{device: device, queue: queue}
}

func (s *halSubmitter) blit(src, dst *Texture, region image.Rectangle) (completion, error) {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frameshare_blit",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frameshare_blit"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.CopyTextureToTexture(src.HAL(), dst.HAL(), []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{
			Texture:  src.HAL(),
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(region.Min.X), Y: uint32(region.Min.Y), Z: 0}, //nolint:gosec // region is clipped to texture bounds
		},
		DstBase: hal.ImageCopyTexture{
			Texture:  dst.HAL(),
			MipLevel: 0,
		},
		Size: hal.Extent3D{
			Width:              uint32(region.Dx()), //nolint:gosec // clipped, non-negative
			Height:             uint32(region.Dy()), //nolint:gosec // clipped, non-negative
			DepthOrArrayLayers: 1,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}

	index, err := s.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		s.device.FreeCommandBuffer(cmdBuf)
		return nil, fmt.Errorf("submit: %w", err)
	}

	return func() error {
		defer s.device.FreeCommandBuffer(cmdBuf)
		return s.awaitSubmission(index, gpuWaitTimeout)
	}, nil
}

// signal covers work the renderer already submitted to the queue. An
// empty Submit does not produce a trackable index, so the completion
// waits for the device to go idle instead.
func (s *halSubmitter) signal() (completion, error) {
	return func() error {
		if err := s.device.WaitIdle(); err != nil {
			return fmt.Errorf("wait for GPU idle: %w", err)
		}
		return nil
	}, nil
}

// awaitSubmission polls the queue until the given submission index has
// retired on the GPU, or the timeout elapses.
func (s *halSubmitter) awaitSubmission(index uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for s.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for GPU: submission %d not completed within %v", index, timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}
