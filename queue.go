package clearvk

import (
	vk "github.com/vulkan-go/vulkan"
)

// CoreQueue lists the queue families of a physical device and selects the
// one all command submission goes through.
type CoreQueue struct {
	properties []vk.QueueFamilyProperties
	gpu        vk.PhysicalDevice
}

// NewCoreQueue gathers queue family properties for a physical device.
// Returns nil when the device exposes no queue families at all.
func NewCoreQueue(gpu vk.PhysicalDevice) *CoreQueue {
	var q CoreQueue
	var count uint32
	q.gpu = gpu
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	if count == 0 {
		return nil
	}
	q.properties = make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, q.properties)
	return &q
}

// IsDeviceSuitable reports whether any family carries all the given flag bits.
func (q *CoreQueue) IsDeviceSuitable(flag_bits vk.QueueFlags) bool {
	_, ok := q.FindSuitableQueue(flag_bits)
	return ok
}

// FindSuitableQueue returns the first family index carrying all the given
// flag bits. The direct queue family doubles as the present family; whether
// it can actually present is verified against the surface once that exists.
func (q *CoreQueue) FindSuitableQueue(flag_bits vk.QueueFlags) (uint32, bool) {
	for index := 0; index < len(q.properties); index++ {
		family := q.properties[index]
		family.Deref()
		if family.QueueFlags&flag_bits == flag_bits {
			return uint32(index), true
		}
	}
	return 0, false
}

// GetCreateInfos builds a single-queue create info for the selected family.
func (q *CoreQueue) GetCreateInfos(family uint32) []vk.DeviceQueueCreateInfo {
	return []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
}
