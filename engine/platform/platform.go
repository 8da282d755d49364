package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/vkboot/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
	// Set once glfw.Init succeeded.
	initialized bool
}

func New() *Platform {
	return &Platform{
		Window: nil,
	}
}

// Startup creates a fixed size window with no client API, so no OpenGL
// context is attached.
func (p *Platform) Startup(applicationName string, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return fmt.Errorf("%w: %s", core.ErrWindowCreation, err)
	}
	p.initialized = true

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return fmt.Errorf("%w: %s", core.ErrWindowCreation, err)
	}
	p.Window = window

	core.LogInfo("Window '%s' created (%dx%d).", applicationName, width, height)
	return nil
}

// Shutdown destroys the window and then releases glfw.
func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	if p.initialized {
		glfw.Terminate()
		p.initialized = false
	}
	return nil
}

func (p *Platform) ShouldClose() bool {
	return p.Window == nil || p.Window.ShouldClose()
}

// PumpMessages polls and dispatches pending window events.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) GetRequiredExtensionNames() []string {
	if p.Window == nil {
		return nil
	}
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) GetInstanceProcAddress() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	if p.Window == nil {
		return 0, fmt.Errorf("no window to create a surface for")
	}
	return p.Window.CreateWindowSurface(instance, allocCallbacks)
}
