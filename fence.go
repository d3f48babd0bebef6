package clearvk

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CoreFence is the CPU/GPU handshake guarding back buffer reuse. The CPU
// owns a monotonically increasing 64-bit counter; each submitted frame is
// tagged with the next value and the GPU signals the fence once the frame's
// work drained. Waiting on a value blocks the calling thread until the GPU
// caught up. This is the only synchronization primitive keeping the CPU
// from racing ahead of the GPU.
type CoreFence struct {
	device vk.Device
	fence  vk.Fence

	pending   uint64
	completed uint64

	ops frameOps
}

// NewCoreFence creates the fence unsignaled. The first frame is tagged 1 so
// that a zero completed counter means nothing finished yet.
func NewCoreFence(device *CoreDevice) (*CoreFence, error) {
	core := &CoreFence{
		device:  device.handle,
		pending: 1,
		ops:     vulkanOps{},
	}
	var fence vk.Fence
	ret := vk.CreateFence(device.handle, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	core.fence = fence
	return core, nil
}

// Handle returns the fence passed to the queue at submission, the signal
// instruction for the value NextValue reports.
func (core *CoreFence) Handle() vk.Fence {
	return core.fence
}

// NextValue returns the value the coming submission will signal.
func (core *CoreFence) NextValue() uint64 {
	return core.pending
}

// MarkSubmitted captures the value tagged onto the frame just handed to the
// queue and advances the counter for the next one. Values are strictly
// increasing across the process lifetime.
func (core *CoreFence) MarkSubmitted() uint64 {
	value := core.pending
	core.pending++
	return value
}

// Wait blocks until the GPU reached value, then resets the fence for the
// next frame. Returns immediately when the value already completed. No
// timeout: if the signal never arrives the wait hangs indefinitely.
func (core *CoreFence) Wait(value uint64) error {
	if value >= core.pending {
		return fmt.Errorf("fence value %d was never submitted (pending %d)", value, core.pending)
	}
	if core.completed >= value {
		return nil
	}
	if ret := core.ops.WaitForFence(core.device, core.fence); isError(ret) {
		return NewError(ret)
	}
	if ret := core.ops.ResetFence(core.device, core.fence); isError(ret) {
		return NewError(ret)
	}
	// Every submission is waited on before the next begins, so reaching the
	// fence means everything up to and including value is done.
	core.completed = value
	return nil
}

// CompletedValue returns the highest value the GPU is known to have reached.
func (core *CoreFence) CompletedValue() uint64 {
	return core.completed
}

// Destroy releases the fence.
func (core *CoreFence) Destroy() {
	if core.fence != vk.NullFence {
		vk.DestroyFence(core.device, core.fence, nil)
		core.fence = vk.NullFence
	}
}
