package clearvk

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CoreDevice owns the Vulkan instance, the logical device and the direct
// (graphics) queue every command list is submitted to. All three are created
// once and outlive every other component; creation is all-or-nothing and any
// failure unwinds what was already created.
type CoreDevice struct {
	instance      vk.Instance
	debugCallback vk.DebugReportCallback

	gpu              vk.PhysicalDevice
	gpuProperties    vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties

	handle      vk.Device
	queue       vk.Queue
	queueFamily uint32

	validation bool
}

var deviceExtensionsWanted = []string{"VK_KHR_swapchain"}

// NewCoreDevice creates the instance, selects the first graphics-capable
// physical device, and creates the logical device with its direct queue.
// requiredInstanceExtensions come from the windowing collaborator (surface
// extensions); missing one of these is fatal.
func NewCoreDevice(cfg Config, requiredInstanceExtensions []string) (*CoreDevice, error) {
	core := &CoreDevice{validation: cfg.EnableValidation}

	// Select validation layers
	var layers []string
	if cfg.EnableValidation {
		actual, err := ValidationLayers()
		if err != nil {
			return nil, err
		}
		wanted := []string{"VK_LAYER_KHRONOS_validation"}
		var missing int
		layers, missing = checkExisting(actual, wanted)
		if missing > 0 {
			log.Printf("vulkan warning: missing %d validation layers during init", missing)
		}
	}

	// Select instance extensions. The required names belong to the windowing
	// collaborator, so the working set is a copy.
	wanted := append([]string{}, requiredInstanceExtensions...)
	if cfg.EnableValidation && cfg.Debug {
		wanted = append(wanted, "VK_EXT_debug_report")
	}
	actual, err := InstanceExtensions()
	if err != nil {
		return nil, err
	}
	extensions, missing := checkExisting(actual, wanted)
	if missing > 0 {
		return nil, fmt.Errorf("vulkan error: missing %d required instance extensions during init", missing)
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(DefaultAPIVersion),
			ApplicationVersion: uint32(DefaultAppVersion),
			PApplicationName:   safeString(cfg.AppName),
			PEngineName:        "clearvk\x00",
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &instance)
	if err := NewError(ret); err != nil {
		return nil, err
	}
	core.instance = instance
	vk.InitInstance(instance)

	if cfg.EnableValidation && cfg.Debug {
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}, nil, &core.debugCallback)
		if err := NewError(ret); err != nil {
			core.Destroy()
			return nil, err
		}
	}

	// Find a suitable GPU, first one wins. Multiple GPUs not supported.
	var gpuCount uint32
	ret = vk.EnumeratePhysicalDevices(core.instance, &gpuCount, nil)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	if gpuCount == 0 {
		core.Destroy()
		return nil, fmt.Errorf("vulkan error: no GPU devices found")
	}
	gpus := make([]vk.PhysicalDevice, gpuCount)
	ret = vk.EnumeratePhysicalDevices(core.instance, &gpuCount, gpus)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}

	var queue *CoreQueue
	for i := range gpus {
		q := NewCoreQueue(gpus[i])
		if q != nil && q.IsDeviceSuitable(vk.QueueFlags(vk.QueueGraphicsBit)) {
			core.gpu = gpus[i]
			queue = q
			break
		}
	}
	if queue == nil {
		core.Destroy()
		return nil, fmt.Errorf("vulkan error: could not find a GPU with a graphics queue family")
	}
	family, _ := queue.FindSuitableQueue(vk.QueueFlags(vk.QueueGraphicsBit))
	core.queueFamily = family

	vk.GetPhysicalDeviceProperties(core.gpu, &core.gpuProperties)
	core.gpuProperties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(core.gpu, &core.memoryProperties)
	core.memoryProperties.Deref()

	// Select device extensions, the swapchain one is required
	actualDev, err := DeviceExtensions(core.gpu)
	if err != nil {
		core.Destroy()
		return nil, err
	}
	devExtensions, missing := checkExisting(actualDev, deviceExtensionsWanted)
	if missing > 0 {
		core.Destroy()
		return nil, fmt.Errorf("vulkan error: missing %d required device extensions during init", missing)
	}

	var device vk.Device
	ret = vk.CreateDevice(core.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       queue.GetCreateInfos(family),
		EnabledExtensionCount:   uint32(len(devExtensions)),
		PpEnabledExtensionNames: safeStrings(devExtensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &device)
	if err := NewError(ret); err != nil {
		core.Destroy()
		return nil, err
	}
	core.handle = device

	var q vk.Queue
	vk.GetDeviceQueue(core.handle, core.queueFamily, 0, &q)
	core.queue = q

	return core, nil
}

// Instance returns the Vulkan instance.
func (core *CoreDevice) Instance() vk.Instance {
	return core.instance
}

// Handle returns the logical device.
func (core *CoreDevice) Handle() vk.Device {
	return core.handle
}

// Queue returns the direct queue all frames are submitted to.
func (core *CoreDevice) Queue() vk.Queue {
	return core.queue
}

// QueueFamily returns the family index of the direct queue.
func (core *CoreDevice) QueueFamily() uint32 {
	return core.queueFamily
}

// PhysicalDevice returns the selected GPU.
func (core *CoreDevice) PhysicalDevice() vk.PhysicalDevice {
	return core.gpu
}

// WaitIdle blocks until the GPU drained all submitted work.
func (core *CoreDevice) WaitIdle() {
	if core.handle != nil {
		vk.DeviceWaitIdle(core.handle)
	}
}

// Destroy releases the device, debug callback and instance, in that order.
// Safe to call on a partially constructed CoreDevice.
func (core *CoreDevice) Destroy() {
	if core.handle != nil {
		vk.DeviceWaitIdle(core.handle)
		vk.DestroyDevice(core.handle, nil)
		core.handle = nil
	}
	if core.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(core.instance, core.debugCallback, nil)
		core.debugCallback = vk.NullDebugReportCallback
	}
	if core.instance != nil {
		vk.DestroyInstance(core.instance, nil)
		core.instance = nil
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Printf("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		log.Printf("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
