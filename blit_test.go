package frameshare

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// pollQueue implements hal.Queue with index-based completion tracking:
// Submit hands out monotonic indexes and PollCompleted reports whatever
// the test marks as retired.
type pollQueue struct {
	submitted atomic.Uint64
	completed atomic.Uint64

	// completeAfterPolls, when positive, marks everything submitted as
	// retired once PollCompleted has been called that many times.
	completeAfterPolls int64
	polls              atomic.Int64
}

var _ hal.Queue = (*pollQueue)(nil)

func (q *pollQueue) Submit(commandBuffers []hal.CommandBuffer) (uint64, error) {
	if len(commandBuffers) == 0 {
		return 0, nil
	}
	return q.submitted.Add(1), nil
}

func (q *pollQueue) PollCompleted() uint64 {
	if q.completeAfterPolls > 0 && q.polls.Add(1) >= q.completeAfterPolls {
		q.completed.Store(q.submitted.Load())
	}
	return q.completed.Load()
}

func (q *pollQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	return nil
}

func (q *pollQueue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	return nil
}

func (q *pollQueue) Present(surface hal.Surface, texture hal.SurfaceTexture, damageRects []image.Rectangle) error {
	return nil
}

func (q *pollQueue) GetTimestampPeriod() float32       { return 1 }
func (q *pollQueue) SupportsCommandBufferCopies() bool { return false }
func (q *pollQueue) SetSwapchainSuppressed(bool)       {}

func TestAwaitSubmissionCompletes(t *testing.T) {
	queue := &pollQueue{completeAfterPolls: 3}
	s := &halSubmitter{queue: queue}

	index, err := queue.Submit(make([]hal.CommandBuffer, 1))
	if err != nil || index == 0 {
		t.Fatalf("Submit() = %d, %v", index, err)
	}

	if err := s.awaitSubmission(index, time.Second); err != nil {
		t.Errorf("awaitSubmission(%d) = %v, want nil", index, err)
	}
	if queue.polls.Load() < queue.completeAfterPolls {
		t.Errorf("completion returned after %d polls, retirement needed %d",
			queue.polls.Load(), queue.completeAfterPolls)
	}
}

func TestAwaitSubmissionAlreadyRetired(t *testing.T) {
	queue := &pollQueue{}
	s := &halSubmitter{queue: queue}

	index, _ := queue.Submit(make([]hal.CommandBuffer, 1))
	queue.completed.Store(index)

	if err := s.awaitSubmission(index, time.Second); err != nil {
		t.Errorf("awaitSubmission on retired index = %v, want nil", err)
	}
}

func TestAwaitSubmissionTimeout(t *testing.T) {
	queue := &pollQueue{} // never retires anything
	s := &halSubmitter{queue: queue}

	index, _ := queue.Submit(make([]hal.CommandBuffer, 1))
	if err := s.awaitSubmission(index, 5*time.Millisecond); err == nil {
		t.Error("awaitSubmission on stuck queue returned nil, want timeout error")
	}
}

func TestSubmissionIndexOrdering(t *testing.T) {
	queue := &pollQueue{}

	first, _ := queue.Submit(make([]hal.CommandBuffer, 1))
	second, _ := queue.Submit(make([]hal.CommandBuffer, 1))
	if second <= first {
		t.Fatalf("submission indexes not monotonic: %d then %d", first, second)
	}

	// Retiring the first submission must not satisfy a wait on the
	// second.
	queue.completed.Store(first)
	s := &halSubmitter{queue: queue}
	if err := s.awaitSubmission(second, 5*time.Millisecond); err == nil {
		t.Error("wait on later submission satisfied by earlier retirement")
	}
	if err := s.awaitSubmission(first, time.Second); err != nil {
		t.Errorf("wait on retired submission = %v, want nil", err)
	}
}
