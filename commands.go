package clearvk

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// cmdState tracks where the frame pipeline is between two presents.
type cmdState int

const (
	cmdIdle cmdState = iota
	cmdRecording
	cmdSubmitted
)

func (s cmdState) String() string {
	switch s {
	case cmdIdle:
		return "Idle"
	case cmdRecording:
		return "Recording"
	case cmdSubmitted:
		return "Submitted"
	}
	return fmt.Sprintf("cmdState(%d)", int(s))
}

// CoreCommands is the frame submission pipeline: one command pool and one
// primary command buffer reused every frame, reset rather than recreated.
// The caller must not reset the buffer while the GPU still consumes it; the
// frame fence wait is what makes the reset safe.
type CoreCommands struct {
	device vk.Device
	pool   vk.CommandPool
	buffer vk.CommandBuffer
	state  cmdState

	ops frameOps
}

// NewCoreCommands creates the pool on the direct queue family and allocates
// the single primary command buffer from it.
func NewCoreCommands(device *CoreDevice) (*CoreCommands, error) {
	core := &CoreCommands{
		device: device.handle,
		ops:    vulkanOps{},
	}

	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device.handle, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: device.queueFamily,
		// ResetCommandBufferBit allows the buffer to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	core.pool = pool

	buffers := make([]vk.CommandBuffer, 1)
	ret = vk.AllocateCommandBuffers(device.handle, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	core.buffer = buffers[0]

	return core, nil
}

// Begin resets the command buffer and opens it for recording. The pipeline
// must be Idle, which the caller guarantees by waiting on the frame fence
// before reuse.
func (core *CoreCommands) Begin() error {
	if core.state != cmdIdle {
		return fmt.Errorf("frame pipeline must be Idle to begin recording, is %s", core.state)
	}
	if ret := core.ops.ResetCommandBuffer(core.buffer); isError(ret) {
		return NewError(ret)
	}
	if ret := core.ops.BeginCommandBuffer(core.buffer); isError(ret) {
		return NewError(ret)
	}
	core.state = cmdRecording
	return nil
}

// RecordClear records the fixed per-frame command sequence against target:
// transition to the clearable layout, clear to color over the whole image,
// transition back to the presentable layout. The order is mandated by the
// platform: an image is cleared only in TransferDstOptimal and presented
// only from PresentSrc. firstUse must be true the first time a buffer is
// ever recorded into, when its content and layout are still undefined.
func (core *CoreCommands) RecordClear(target Target, color [4]float32, firstUse bool) error {
	if core.state != cmdRecording {
		return fmt.Errorf("frame pipeline must be Recording to record a clear, is %s", core.state)
	}

	oldLayout := vk.ImageLayoutPresentSrc
	if firstUse {
		oldLayout = vk.ImageLayoutUndefined
	}

	core.ops.CmdBarrier(core.buffer, barrier{
		image:     target.Image,
		oldLayout: oldLayout,
		newLayout: vk.ImageLayoutTransferDstOptimal,
		srcAccess: vk.AccessFlags(vk.AccessMemoryReadBit),
		dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	})

	core.ops.CmdClearColor(core.buffer, target.Image, color)

	core.ops.CmdBarrier(core.buffer, barrier{
		image:     target.Image,
		oldLayout: vk.ImageLayoutTransferDstOptimal,
		newLayout: vk.ImageLayoutPresentSrc,
		srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		dstAccess: vk.AccessFlags(vk.AccessMemoryReadBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
	})

	return nil
}

// Submit closes the command buffer and hands it to the queue as the sole
// entry in the batch. The submission waits on acquireSem before touching
// the buffer, signals releaseSem for presentation and fence when the GPU
// finished the frame. Any failure leaves the pipeline back in Idle so the
// next frame starts from a clean pair.
func (core *CoreCommands) Submit(queue vk.Queue, acquireSem, releaseSem vk.Semaphore, fence vk.Fence) error {
	if core.state != cmdRecording {
		return fmt.Errorf("frame pipeline must be Recording to submit, is %s", core.state)
	}
	if ret := core.ops.EndCommandBuffer(core.buffer); isError(ret) {
		core.state = cmdIdle
		return NewError(ret)
	}
	if ret := core.ops.QueueSubmit(queue, core.buffer, acquireSem, releaseSem, fence); isError(ret) {
		core.state = cmdIdle
		return NewError(ret)
	}
	core.state = cmdSubmitted
	return nil
}

// Retire moves the pipeline from Submitted back to Idle. Only legal once
// the frame fence confirmed the GPU is done with the buffer.
func (core *CoreCommands) Retire() error {
	if core.state != cmdSubmitted {
		return fmt.Errorf("frame pipeline must be Submitted to retire, is %s", core.state)
	}
	core.state = cmdIdle
	return nil
}

// abort forces the pipeline back to Idle after a failed frame. The buffer
// contents are discarded by the reset at the next Begin.
func (core *CoreCommands) abort() {
	core.state = cmdIdle
}

// Idle reports whether the pipeline is between frames.
func (core *CoreCommands) Idle() bool {
	return core.state == cmdIdle
}

// Destroy frees the command buffer and pool.
func (core *CoreCommands) Destroy() {
	if core.buffer != nil {
		vk.FreeCommandBuffers(core.device, core.pool, 1, []vk.CommandBuffer{core.buffer})
		core.buffer = nil
	}
	if core.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(core.device, core.pool, nil)
		core.pool = vk.NullCommandPool
	}
}
