package clearvk

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestRenderFrameCommandOrder(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	if err := r.RenderFrame(); err != nil {
		t.Fatalf("frame failed: %v", err)
	}
	wantOps(t, f.ops, frameOpSequence)

	if len(f.barriers) != 2 {
		t.Fatalf("recorded %d barriers, want 2", len(f.barriers))
	}
	// First ever use of a buffer transitions out of the undefined layout.
	if f.barriers[0].oldLayout != vk.ImageLayoutUndefined || f.barriers[0].newLayout != vk.ImageLayoutTransferDstOptimal {
		t.Fatalf("opening barrier %v -> %v", f.barriers[0].oldLayout, f.barriers[0].newLayout)
	}
	if f.barriers[1].oldLayout != vk.ImageLayoutTransferDstOptimal || f.barriers[1].newLayout != vk.ImageLayoutPresentSrc {
		t.Fatalf("closing barrier %v -> %v", f.barriers[1].oldLayout, f.barriers[1].newLayout)
	}
	if len(f.clears) != 1 || f.clears[0] != ClearColor {
		t.Fatalf("cleared with %v, want %v", f.clears, ClearColor)
	}
}

func TestRenderFrameReusedBufferTransitionsFromPresent(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	// Three frames on two buffers: the third reuses buffer 0.
	for frame := 0; frame < 3; frame++ {
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d failed: %v", frame, err)
		}
	}
	opening := f.barriers[4]
	if opening.oldLayout != vk.ImageLayoutPresentSrc {
		t.Fatalf("reused buffer transitioned from %v, want PresentSrc", opening.oldLayout)
	}
}

func TestRenderFrameFenceValuesStrictlyIncrease(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	var last uint64
	for frame := 0; frame < 10; frame++ {
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d failed: %v", frame, err)
		}
		completed := r.Fence().CompletedValue()
		if completed <= last {
			t.Fatalf("frame %d completed fence value %d, last was %d", frame, completed, last)
		}
		if completed != uint64(frame+1) {
			t.Fatalf("frame %d completed fence value %d", frame, completed)
		}
		last = completed
	}
}

func TestRenderFrameIndexAlternates(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	var indices []uint32
	for frame := 0; frame < 8; frame++ {
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d failed: %v", frame, err)
		}
		indices = append(indices, r.Surface().CurrentIndex())
	}
	for i, index := range indices {
		if index != uint32(i%2) {
			t.Fatalf("frame %d targeted buffer %d, want strict 0/1 alternation (%v)", i, index, indices)
		}
	}
}

func TestRenderFrameHundredFramesStayBounded(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	for frame := 0; frame < 100; frame++ {
		waitsBefore := f.waits
		if err := r.RenderFrame(); err != nil {
			t.Fatalf("frame %d failed: %v", frame, err)
		}
		if !r.Idle() {
			t.Fatalf("frame %d left the pipeline busy", frame)
		}
		// Never blocks on more than the one in-flight frame.
		if waits := f.waits - waitsBefore; waits > 1 {
			t.Fatalf("frame %d waited %d times", frame, waits)
		}
	}
	if r.Fence().CompletedValue() != 100 {
		t.Fatalf("completed fence value %d after 100 frames", r.Fence().CompletedValue())
	}
}

func TestRenderFrameCloseFailure(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	f.failEnd = vk.ErrorOutOfDeviceMemory
	err := r.RenderFrame()
	if err == nil {
		t.Fatal("expected the frame to fail")
	}
	var perr *PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is not a *PlatformError", err)
	}
	if perr.Code() != vk.ErrorOutOfDeviceMemory {
		t.Fatalf("carried code %d", perr.Code())
	}
	if !r.Idle() {
		t.Fatal("failed frame left the pipeline busy")
	}

	// The next frame starts from a clean allocator/list pair.
	f.failEnd = vk.Success
	f.ops = nil
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("recovery frame failed: %v", err)
	}
	wantOps(t, f.ops, frameOpSequence)
}

func TestRenderFrameSubmitFailure(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	f.failSubmit = vk.ErrorDeviceLost
	err := r.RenderFrame()
	var perr *PlatformError
	if !errors.As(err, &perr) || perr.Code() != vk.ErrorDeviceLost {
		t.Fatalf("got %v, want device lost", err)
	}
	if !r.Idle() {
		t.Fatal("failed frame left the pipeline busy")
	}
	if got := r.Fence().NextValue(); got != 1 {
		t.Fatalf("failed submit advanced the fence counter to %d", got)
	}
}

func TestRenderFrameAcquireFailure(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	f.failAcquire = vk.ErrorSurfaceLost
	err := r.RenderFrame()
	var perr *PlatformError
	if !errors.As(err, &perr) || perr.Code() != vk.ErrorSurfaceLost {
		t.Fatalf("got %v, want surface lost", err)
	}
	if !r.Idle() {
		t.Fatal("failed acquire left the pipeline busy")
	}
	if len(f.barriers) != 0 {
		t.Fatal("recorded commands without an acquired buffer")
	}
}

func TestRenderFramePresentFailureStillDrains(t *testing.T) {
	f := newFakeOps(2)
	r := newTestRenderer(f)

	f.failPresent = vk.ErrorSurfaceLost
	err := r.RenderFrame()
	var perr *PlatformError
	if !errors.As(err, &perr) || perr.Code() != vk.ErrorSurfaceLost {
		t.Fatalf("got %v, want surface lost", err)
	}
	// The submitted frame was drained before the error was reported.
	if r.Fence().CompletedValue() != 1 {
		t.Fatalf("completed fence value %d, want 1", r.Fence().CompletedValue())
	}
	if !r.Idle() {
		t.Fatal("failed present left the pipeline busy")
	}
}
