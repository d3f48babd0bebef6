package clearvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// Target pairs back buffer i with its renderable-target view.
type Target struct {
	Index uint32
	Image vk.Image
	View  vk.ImageView
}

// CoreTargets is the render target registry: one renderable-target view per
// back buffer, bound 1:1 by index. Built once at startup from the surface's
// buffers and never resized.
type CoreTargets struct {
	device  vk.Device
	targets []Target
}

// NewCoreTargets creates a view for each of the surface's back buffers.
func NewCoreTargets(device *CoreDevice, surface *CoreSurface) (*CoreTargets, error) {
	core := &CoreTargets{device: device.handle}

	for i := uint32(0); i < surface.Count(); i++ {
		var view vk.ImageView
		ret := vk.CreateImageView(device.handle, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    surface.Image(i),
			ViewType: vk.ImageViewType2d,
			Format:   surface.Format().Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleR,
				G: vk.ComponentSwizzleG,
				B: vk.ComponentSwizzleB,
				A: vk.ComponentSwizzleA,
			},
			SubresourceRange: fullColorRange,
		}, nil, &view)
		if err := NewError(ret); err != nil {
			core.Destroy()
			return nil, err
		}
		core.targets = append(core.targets, Target{
			Index: i,
			Image: surface.Image(i),
			View:  view,
		})
	}

	return core, nil
}

// TargetFor returns the target bound to back buffer index. Pure, no side
// effects; the frame pipeline calls it every frame.
func (core *CoreTargets) TargetFor(index uint32) Target {
	return core.targets[index]
}

// Count returns the number of registered targets.
func (core *CoreTargets) Count() int {
	return len(core.targets)
}

// Destroy releases every view. The images belong to the swapchain.
func (core *CoreTargets) Destroy() {
	for i := range core.targets {
		if core.targets[i].View != vk.NullImageView {
			vk.DestroyImageView(core.device, core.targets[i].View, nil)
			core.targets[i].View = vk.NullImageView
		}
	}
	core.targets = nil
}
