package clearvk

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

// fakeOps stands in for the platform on the per-frame path. It records the
// operation stream, rotates the back buffer cursor the way a two-deep flip
// swapchain would, and models the fence as pending-signal state so that a
// wait without a prior submission surfaces as a device loss.
type fakeOps struct {
	bufferCount uint32
	cursor      uint32

	ops      []string
	barriers []barrier
	clears   [][4]float32
	waits    int

	signaled bool

	failAcquire vk.Result
	failEnd     vk.Result
	failSubmit  vk.Result
	failPresent vk.Result
}

func newFakeOps(bufferCount uint32) *fakeOps {
	return &fakeOps{bufferCount: bufferCount}
}

func (f *fakeOps) WaitForFence(device vk.Device, fence vk.Fence) vk.Result {
	f.ops = append(f.ops, "wait")
	f.waits++
	if !f.signaled {
		return vk.ErrorDeviceLost
	}
	return vk.Success
}

func (f *fakeOps) ResetFence(device vk.Device, fence vk.Fence) vk.Result {
	f.ops = append(f.ops, "reset-fence")
	f.signaled = false
	return vk.Success
}

func (f *fakeOps) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result) {
	f.ops = append(f.ops, "acquire")
	if f.failAcquire != vk.Success {
		return 0, f.failAcquire
	}
	return f.cursor, vk.Success
}

func (f *fakeOps) ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	f.ops = append(f.ops, "reset")
	return vk.Success
}

func (f *fakeOps) BeginCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	f.ops = append(f.ops, "begin")
	return vk.Success
}

func (f *fakeOps) CmdBarrier(cmd vk.CommandBuffer, b barrier) {
	f.ops = append(f.ops, "barrier")
	f.barriers = append(f.barriers, b)
}

func (f *fakeOps) CmdClearColor(cmd vk.CommandBuffer, image vk.Image, color [4]float32) {
	f.ops = append(f.ops, "clear")
	f.clears = append(f.clears, color)
}

func (f *fakeOps) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	f.ops = append(f.ops, "end")
	return f.failEnd
}

func (f *fakeOps) QueueSubmit(queue vk.Queue, cmd vk.CommandBuffer, wait, signal vk.Semaphore, fence vk.Fence) vk.Result {
	f.ops = append(f.ops, "submit")
	if f.failSubmit != vk.Success {
		return f.failSubmit
	}
	f.signaled = true
	return vk.Success
}

func (f *fakeOps) QueuePresent(queue vk.Queue, swapchain vk.Swapchain, imageIndex uint32, wait vk.Semaphore) vk.Result {
	f.ops = append(f.ops, "present")
	if f.failPresent != vk.Success {
		return f.failPresent
	}
	// The platform rotates ownership after each accepted present.
	f.cursor = (f.cursor + 1) % f.bufferCount
	return vk.Success
}

// newTestRenderer wires a CoreRenderer over the fake with bufferCount
// zero-handle back buffers. Construction paths are covered by the
// integration test; these components never touch the platform directly.
func newTestRenderer(f *fakeOps) *CoreRenderer {
	device := &CoreDevice{}
	surface := &CoreSurface{
		device:      device,
		bufferCount: f.bufferCount,
		ops:         f,
	}
	targets := &CoreTargets{}
	for i := uint32(0); i < f.bufferCount; i++ {
		targets.targets = append(targets.targets, Target{Index: i})
	}
	return &CoreRenderer{
		device:   device,
		surface:  surface,
		targets:  targets,
		commands: &CoreCommands{ops: f},
		fence:    &CoreFence{pending: 1, ops: f},
		firstUse: newFirstUse(f.bufferCount),
	}
}

func wantOps(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("recorded %d ops %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d is %q, want %q (stream %v)", i, got[i], want[i], got)
		}
	}
}

// frameOpSequence is the exact platform call order of one successful frame.
var frameOpSequence = []string{
	"acquire",
	"reset", "begin",
	"barrier", "clear", "barrier",
	"end", "submit",
	"present",
	"wait", "reset-fence",
}
