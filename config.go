package clearvk

import vk "github.com/vulkan-go/vulkan"

// FrameCount is the default number of presentable back buffers.
const FrameCount = 2

// ClearColor is the fixed color every frame is cleared to, opaque red.
var ClearColor = [4]float32{1.0, 0.0, 0.0, 1.0}

var (
	DefaultAppVersion = vk.MakeVersion(1, 0, 0)
	DefaultAPIVersion = vk.MakeVersion(1, 1, 0)
)

// Config holds the startup options for a renderer. Resolved once at startup;
// no component consults it after initialization.
type Config struct {
	// AppName is reported to the Vulkan instance.
	AppName string
	// BufferCount is the number of swapchain back buffers requested. The
	// platform may clamp it to the surface capabilities.
	BufferCount uint32
	// EnableValidation loads VK_LAYER_KHRONOS_validation when available.
	EnableValidation bool
	// Debug registers a debug report callback forwarding layer messages to
	// the process log. Only meaningful together with EnableValidation.
	Debug bool
}

// DefaultConfig returns the configuration matching the reference setup:
// two back buffers, validation off.
func DefaultConfig(name string) Config {
	return Config{
		AppName:     name,
		BufferCount: FrameCount,
	}
}
