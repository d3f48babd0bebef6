package clearvk

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CoreSurface owns the swapchain bound to the window surface and the fixed
// set of back buffers rotating through it. The buffers form a ring whose
// rotation policy belongs to the platform: the current index is only ever
// refreshed from what the platform reports at acquire time, never computed
// locally.
type CoreSurface struct {
	device *CoreDevice

	surface   vk.Surface
	swapchain vk.Swapchain
	images    []vk.Image

	format vk.SurfaceFormat
	extent vk.Extent2D

	bufferCount uint32
	frameIndex  uint32

	// One semaphore pair is enough: the frame fence fully drains the GPU
	// before a buffer is reused, so neither semaphore is ever in flight
	// when the next frame needs it.
	acquireSem vk.Semaphore
	releaseSem vk.Semaphore

	ops frameOps
}

// NewCoreSurface creates a swapchain over the given surface with bufferCount
// back buffers, 8-bit RGBA, no multisampling, FIFO (vsync) presentation and
// flip-style ownership rotation. The surface capabilities may clamp the
// buffer count. Ownership of surface transfers to the returned CoreSurface.
func NewCoreSurface(device *CoreDevice, surface vk.Surface, width, height int, bufferCount uint32) (*CoreSurface, error) {
	core := &CoreSurface{
		device:  device,
		surface: surface,
		ops:     vulkanOps{},
	}

	// The direct queue doubles as the present queue, so its family must be
	// able to present to this surface.
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(device.gpu, device.queueFamily, surface, &supportsPresent)
	if !supportsPresent.B() {
		core.Destroy()
		return nil, fmt.Errorf("vulkan error: queue family %d cannot present to the window surface", device.queueFamily)
	}

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(device.gpu, surface, &caps)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	format, err := selectSurfaceFormat(device.gpu, surface)
	if err != nil {
		core.Destroy()
		return nil, err
	}
	core.format = format

	// Match the swapchain extent to the surface; the window size is only a
	// fallback for platforms that leave the current extent unspecified.
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		core.extent = caps.CurrentExtent
	} else {
		core.extent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	}

	// Clamp the requested depth into what the surface supports.
	count := bufferCount
	if count < caps.MinImageCount {
		count = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}

	var preTransform vk.SurfaceTransformFlagBits
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	} else {
		preTransform = caps.CurrentTransform
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			compositeAlpha = flag
			break
		}
	}

	var swapchain vk.Swapchain
	ret = vk.CreateSwapchain(device.handle, &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         surface,
		MinImageCount:   count,
		ImageFormat:     format.Format,
		ImageColorSpace: format.ColorSpace,
		ImageExtent:     core.extent,
		// Transfer destination for the clear, color attachment for display.
		ImageUsage: vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit |
			vk.ImageUsageTransferDstBit),
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   compositeAlpha,
		// FIFO ties presentation to the display refresh and is always there.
		PresentMode:  vk.PresentModeFifo,
		Clipped:      vk.True,
		OldSwapchain: vk.NullSwapchain,
	}, nil, &swapchain)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	core.swapchain = swapchain

	var imageCount uint32
	ret = vk.GetSwapchainImages(device.handle, swapchain, &imageCount, nil)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	core.images = make([]vk.Image, imageCount)
	ret = vk.GetSwapchainImages(device.handle, swapchain, &imageCount, core.images)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	core.bufferCount = imageCount

	for _, sem := range []*vk.Semaphore{&core.acquireSem, &core.releaseSem} {
		ret = vk.CreateSemaphore(device.handle, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, sem)
		if err := NewError(ret); err != nil {
			core.Destroy()
			return nil, err
		}
	}

	return core, nil
}

func selectSurfaceFormat(gpu vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceFormat, error) {
	var formatCount uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	if err := NewError(ret); err != nil {
		return vk.SurfaceFormat{}, err
	}
	if formatCount == 0 {
		return vk.SurfaceFormat{}, fmt.Errorf("vulkan error: no surface color formats reported for display")
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
	if err := NewError(ret); err != nil {
		return vk.SurfaceFormat{}, err
	}

	// Prefer plain 8-bit RGBA unorm, fall back to BGRA, then to whatever is
	// first. A lone undefined entry means the surface takes any format.
	formats[0].Deref()
	if formats[0].Format == vk.FormatUndefined {
		chosen := formats[0]
		chosen.Format = vk.FormatR8g8b8a8Unorm
		return chosen, nil
	}
	for i := uint32(0); i < formatCount; i++ {
		formats[i].Deref()
		if formats[i].Format == vk.FormatR8g8b8a8Unorm || formats[i].Format == vk.FormatB8g8r8a8Unorm {
			return formats[i], nil
		}
	}
	return formats[0], nil
}

// AcquireNext blocks until the platform hands out the next presentable back
// buffer and refreshes the current index from it. Returns the refreshed
// index. An out-of-date surface is reported as an error; the surface is
// never recreated mid-run.
func (core *CoreSurface) AcquireNext() (uint32, error) {
	index, ret := core.ops.AcquireNextImage(core.device.handle, core.swapchain, core.acquireSem)
	// Suboptimal still acquired an image, keep going with it.
	if ret != vk.Success && ret != vk.Suboptimal {
		return 0, NewError(ret)
	}
	core.frameIndex = index
	return index, nil
}

// CurrentIndex returns the back buffer index the next frame must target,
// exactly as last reported by the platform.
func (core *CoreSurface) CurrentIndex() uint32 {
	return core.frameIndex
}

// Present submits the current back buffer for display, blocking the calling
// thread until the display pipeline accepts the request. Presentation is
// tied to the display refresh by the FIFO swapchain.
func (core *CoreSurface) Present(queue vk.Queue) error {
	ret := core.ops.QueuePresent(queue, core.swapchain, core.frameIndex, core.releaseSem)
	if ret != vk.Success && ret != vk.Suboptimal {
		return NewError(ret)
	}
	return nil
}

// Count returns the number of back buffers in the ring.
func (core *CoreSurface) Count() uint32 {
	return core.bufferCount
}

// Image returns back buffer i. The image is owned by the swapchain.
func (core *CoreSurface) Image(i uint32) vk.Image {
	return core.images[i]
}

// Format returns the surface pixel format the swapchain was created with.
func (core *CoreSurface) Format() vk.SurfaceFormat {
	return core.format
}

// Extent returns the pixel dimensions of the back buffers.
func (core *CoreSurface) Extent() vk.Extent2D {
	return core.extent
}

// AcquireSemaphore returns the semaphore signaled when the acquired buffer
// is ready; submissions targeting the buffer must wait on it.
func (core *CoreSurface) AcquireSemaphore() vk.Semaphore {
	return core.acquireSem
}

// ReleaseSemaphore returns the semaphore presentation waits on; submissions
// must signal it when rendering to the buffer completed.
func (core *CoreSurface) ReleaseSemaphore() vk.Semaphore {
	return core.releaseSem
}

// Destroy releases the semaphores, swapchain and surface. Safe to call on a
// partially constructed CoreSurface.
func (core *CoreSurface) Destroy() {
	if core.acquireSem != vk.NullSemaphore {
		vk.DestroySemaphore(core.device.handle, core.acquireSem, nil)
		core.acquireSem = vk.NullSemaphore
	}
	if core.releaseSem != vk.NullSemaphore {
		vk.DestroySemaphore(core.device.handle, core.releaseSem, nil)
		core.releaseSem = vk.NullSemaphore
	}
	if core.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(core.device.handle, core.swapchain, nil)
		core.swapchain = vk.NullSwapchain
	}
	if core.surface != vk.NullSurface {
		vk.DestroySurface(core.device.instance, core.surface, nil)
		core.surface = vk.NullSurface
	}
	core.images = nil
}
