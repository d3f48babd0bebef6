package clearvk

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// frameOps is the slice of the platform API the per-frame path goes through.
// Everything touched between two presents funnels through here so the frame
// loop's ordering and synchronization contracts can be exercised without a
// live GPU. Construction and teardown call the platform directly.
type frameOps interface {
	WaitForFence(device vk.Device, fence vk.Fence) vk.Result
	ResetFence(device vk.Device, fence vk.Fence) vk.Result
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result)
	ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result
	BeginCommandBuffer(cmd vk.CommandBuffer) vk.Result
	CmdBarrier(cmd vk.CommandBuffer, b barrier)
	CmdClearColor(cmd vk.CommandBuffer, image vk.Image, color [4]float32)
	EndCommandBuffer(cmd vk.CommandBuffer) vk.Result
	QueueSubmit(queue vk.Queue, cmd vk.CommandBuffer, wait, signal vk.Semaphore, fence vk.Fence) vk.Result
	QueuePresent(queue vk.Queue, swapchain vk.Swapchain, imageIndex uint32, wait vk.Semaphore) vk.Result
}

// barrier is one image layout transition as the frame pipeline records it.
type barrier struct {
	image     vk.Image
	oldLayout vk.ImageLayout
	newLayout vk.ImageLayout
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

// fullColorRange covers the whole single-mip, single-layer swapchain image.
var fullColorRange = vk.ImageSubresourceRange{
	AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	BaseMipLevel:   0,
	LevelCount:     1,
	BaseArrayLayer: 0,
	LayerCount:     1,
}

// vulkanOps is the live implementation of frameOps.
type vulkanOps struct{}

func (vulkanOps) WaitForFence(device vk.Device, fence vk.Fence) vk.Result {
	// No timeout: a lost GPU signal hangs the calling thread indefinitely.
	return vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
}

func (vulkanOps) ResetFence(device vk.Device, fence vk.Fence) vk.Result {
	return vk.ResetFences(device, 1, []vk.Fence{fence})
}

func (vulkanOps) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, semaphore vk.Semaphore) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(device, swapchain, vk.MaxUint64, semaphore, vk.NullFence, &index)
	return index, ret
}

func (vulkanOps) ResetCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.ResetCommandBuffer(cmd, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
}

func (vulkanOps) BeginCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
}

func (vulkanOps) CmdBarrier(cmd vk.CommandBuffer, b barrier) {
	vk.CmdPipelineBarrier(cmd,
		b.srcStage, b.dstStage,
		vk.DependencyFlags(0),
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       b.srcAccess,
			DstAccessMask:       b.dstAccess,
			OldLayout:           b.oldLayout,
			NewLayout:           b.newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               b.image,
			SubresourceRange:    fullColorRange,
		}},
	)
}

func (vulkanOps) CmdClearColor(cmd vk.CommandBuffer, image vk.Image, color [4]float32) {
	var value vk.ClearColorValue
	*(*[4]float32)(unsafe.Pointer(&value)) = color
	vk.CmdClearColorImage(cmd, image, vk.ImageLayoutTransferDstOptimal,
		&value, 1, []vk.ImageSubresourceRange{fullColorRange})
}

func (vulkanOps) EndCommandBuffer(cmd vk.CommandBuffer) vk.Result {
	return vk.EndCommandBuffer(cmd)
}

func (vulkanOps) QueueSubmit(queue vk.Queue, cmd vk.CommandBuffer, wait, signal vk.Semaphore, fence vk.Fence) vk.Result {
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if wait != vk.NullSemaphore {
		submit.WaitSemaphoreCount = 1
		submit.PWaitSemaphores = []vk.Semaphore{wait}
		submit.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}
	}
	if signal != vk.NullSemaphore {
		submit.SignalSemaphoreCount = 1
		submit.PSignalSemaphores = []vk.Semaphore{signal}
	}
	return vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submit}, fence)
}

func (vulkanOps) QueuePresent(queue vk.Queue, swapchain vk.Swapchain, imageIndex uint32, wait vk.Semaphore) vk.Result {
	return vk.QueuePresent(queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain},
		PImageIndices:      []uint32{imageIndex},
	})
}
