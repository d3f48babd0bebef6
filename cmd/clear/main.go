// Command clear opens a window and presents a solid red frame on every
// iteration of the event loop. It is the thin host glue around clearvk:
// window creation, the Vulkan loader handshake and the message pump.
package main

import (
	"flag"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/clearvk"
)

func init() {
	// GLFW event handling and rendering must stay on the main thread.
	runtime.LockOSThread()
}

type windowSurface struct {
	window *glfw.Window
}

func (w windowSurface) InstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w windowSurface) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

func main() {
	width := flag.Int("width", 800, "client width in pixels")
	height := flag.Int("height", 600, "client height in pixels")
	validation := flag.Bool("validation", false, "enable the Khronos validation layer")
	debug := flag.Bool("debug", false, "log validation layer reports")
	flag.Parse()

	clearvk.Fatal(glfw.Init())
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(*width, *height, "clearvk", nil, nil)
	clearvk.Fatal(err)
	defer window.Destroy()

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	clearvk.Fatal(vk.Init())

	cfg := clearvk.DefaultConfig("clearvk")
	cfg.EnableValidation = *validation
	cfg.Debug = *debug

	core, err := clearvk.NewBaseCore(cfg, windowSurface{window}, *width, *height)
	clearvk.Fatal(err)
	defer core.Release()

	for !window.ShouldClose() {
		clearvk.Fatal(core.Render(), core.Release)
		glfw.PollEvents()
	}
}
