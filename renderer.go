package clearvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceSource is what the window collaborator provides: the instance
// extensions its surface needs and a way to wrap the native window handle
// into a Vulkan surface once the instance exists. The handle and client
// dimensions must be stable before NewCoreRenderer is called.
type SurfaceSource interface {
	// InstanceExtensions lists the instance extensions surface creation
	// requires on this platform.
	InstanceExtensions() []string
	// CreateSurface wraps the window into a surface owned by the caller.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// CoreRenderer owns the whole rendering core: device context, presentation
// surface, target registry, frame pipeline and frame fence. Everything is
// created once at startup and destroyed together; nothing is recreated
// mid-run. All methods must be called from the thread that owns the window
// event pump.
type CoreRenderer struct {
	device   *CoreDevice
	surface  *CoreSurface
	targets  *CoreTargets
	commands *CoreCommands
	fence    *CoreFence

	// firstUse marks back buffers that were never recorded into, whose
	// layout is still undefined rather than presentable.
	firstUse []bool
}

// NewCoreRenderer initializes the five core components in dependency order.
// Initialization is all-or-nothing: a failure at any step unwinds what was
// created and returns the error.
func NewCoreRenderer(source SurfaceSource, width, height int, cfg Config) (*CoreRenderer, error) {
	if cfg.BufferCount == 0 {
		cfg.BufferCount = FrameCount
	}

	device, err := NewCoreDevice(cfg, source.InstanceExtensions())
	if err != nil {
		return nil, err
	}

	surfaceHandle, err := source.CreateSurface(device.Instance())
	if err != nil {
		device.Destroy()
		return nil, err
	}

	surface, err := NewCoreSurface(device, surfaceHandle, width, height, cfg.BufferCount)
	if err != nil {
		device.Destroy()
		return nil, err
	}

	targets, err := NewCoreTargets(device, surface)
	if err != nil {
		surface.Destroy()
		device.Destroy()
		return nil, err
	}

	commands, err := NewCoreCommands(device)
	if err != nil {
		targets.Destroy()
		surface.Destroy()
		device.Destroy()
		return nil, err
	}

	fence, err := NewCoreFence(device)
	if err != nil {
		commands.Destroy()
		targets.Destroy()
		surface.Destroy()
		device.Destroy()
		return nil, err
	}

	return &CoreRenderer{
		device:   device,
		surface:  surface,
		targets:  targets,
		commands: commands,
		fence:    fence,
		firstUse: newFirstUse(surface.Count()),
	}, nil
}

func newFirstUse(count uint32) []bool {
	first := make([]bool, count)
	for i := range first {
		first[i] = true
	}
	return first
}

// RenderFrame renders and presents one frame: acquire the platform-reported
// back buffer, record the transition/clear/transition sequence against it,
// submit the list as the sole batch entry, present, then block until the
// GPU signals the frame's fence value. On return the frame pipeline is back
// in Idle and the surface index reflects the last platform report. Any
// platform failure is returned as is, with no retry and no partial-frame
// recovery.
func (r *CoreRenderer) RenderFrame() error {
	index, err := r.surface.AcquireNext()
	if err != nil {
		return err
	}
	target := r.targets.TargetFor(index)

	if err := r.commands.Begin(); err != nil {
		return err
	}
	if err := r.commands.RecordClear(target, ClearColor, r.firstUse[index]); err != nil {
		r.commands.abort()
		return err
	}
	if err := r.commands.Submit(r.device.Queue(),
		r.surface.AcquireSemaphore(), r.surface.ReleaseSemaphore(),
		r.fence.Handle()); err != nil {
		return err
	}
	value := r.fence.MarkSubmitted()
	r.firstUse[index] = false

	presentErr := r.surface.Present(r.device.Queue())

	// The frame was submitted either way; drain it before the buffer can
	// be touched again.
	if err := r.fence.Wait(value); err != nil {
		r.commands.abort()
		return err
	}
	if err := r.commands.Retire(); err != nil {
		return err
	}
	return presentErr
}

// Device returns the device context.
func (r *CoreRenderer) Device() *CoreDevice {
	return r.device
}

// Surface returns the presentation surface.
func (r *CoreRenderer) Surface() *CoreSurface {
	return r.surface
}

// Targets returns the render target registry.
func (r *CoreRenderer) Targets() *CoreTargets {
	return r.targets
}

// Fence returns the frame fence.
func (r *CoreRenderer) Fence() *CoreFence {
	return r.fence
}

// Idle reports whether the frame pipeline is between frames.
func (r *CoreRenderer) Idle() bool {
	return r.commands.Idle()
}

// Destroy waits for the device to drain and releases every component in
// reverse creation order.
func (r *CoreRenderer) Destroy() {
	if r.device != nil {
		r.device.WaitIdle()
	}
	if r.fence != nil {
		r.fence.Destroy()
		r.fence = nil
	}
	if r.commands != nil {
		r.commands.Destroy()
		r.commands = nil
	}
	if r.targets != nil {
		r.targets.Destroy()
		r.targets = nil
	}
	if r.surface != nil {
		r.surface.Destroy()
		r.surface = nil
	}
	if r.device != nil {
		r.device.Destroy()
		r.device = nil
	}
}
