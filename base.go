// Package clearvk drives a Vulkan swapchain to present a single solid color
// into a window. It owns the device, the presentable surface, the per-frame
// target views and the CPU/GPU synchronization that keeps an in-flight back
// buffer from being reused; windowing and the event pump stay outside, a
// collaborator hands in the surface and calls Render on every redraw.
package clearvk

import (
	"log"
	"os"
)

// BaseCore is the top-level shell around a CoreRenderer: it owns the
// process loggers and the startup configuration. Light host glue only, the
// rendering contracts all live on CoreRenderer.
type BaseCore struct {
	cfg      Config
	renderer *CoreRenderer

	info_log  *log.Logger
	error_log *log.Logger
	warn_log  *log.Logger
}

// NewBaseCore opens the log sinks and initializes the rendering core against
// the window collaborator's surface.
func NewBaseCore(cfg Config, source SurfaceSource, width, height int) (*BaseCore, error) {
	var base BaseCore
	base.cfg = cfg

	info_file, err := os.OpenFile("info_log.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	error_file, err := os.OpenFile("error_log.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	warn_file, err := os.OpenFile("warn_log.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}

	base.info_log = log.New(info_file, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	base.error_log = log.New(error_file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	base.warn_log = log.New(warn_file, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)

	renderer, err := NewCoreRenderer(source, width, height, cfg)
	if err != nil {
		base.error_log.Print(err)
		return nil, err
	}
	base.renderer = renderer
	base.info_log.Printf("renderer initialized, %d back buffers at %dx%d",
		renderer.Surface().Count(), renderer.Surface().Extent().Width, renderer.Surface().Extent().Height)

	return &base, nil
}

// Render draws one frame, logging any platform failure before returning it.
func (base *BaseCore) Render() error {
	if err := base.renderer.RenderFrame(); err != nil {
		base.error_log.Print(err)
		return err
	}
	return nil
}

// Renderer returns the rendering core.
func (base *BaseCore) Renderer() *CoreRenderer {
	return base.renderer
}

// Release tears the rendering core down.
func (base *BaseCore) Release() {
	if base.renderer != nil {
		base.renderer.Destroy()
		base.renderer = nil
	}
}
