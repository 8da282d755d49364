package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/vkboot/engine/core"
)

// WindowSystem is the part of the windowing platform the renderer needs.
type WindowSystem interface {
	SurfaceTarget
	// GetRequiredExtensionNames lists the instance extensions the window
	// system needs to present.
	GetRequiredExtensionNames() []string
	// GetInstanceProcAddress returns the loader's vkGetInstanceProcAddr.
	GetInstanceProcAddress() unsafe.Pointer
}

type VulkanRenderer struct {
	driver  Driver
	window  WindowSystem
	context *VulkanContext
	appName string
	// Layers enabled on the instance, repeated on the device.
	layers []string

	validation bool
}

type Option func(*VulkanRenderer)

// WithValidation overrides the compile-time ValidationEnabled switch.
func WithValidation(enabled bool) Option {
	return func(vr *VulkanRenderer) {
		vr.validation = enabled
	}
}

func New(driver Driver, window WindowSystem, opts ...Option) *VulkanRenderer {
	vr := &VulkanRenderer{
		driver:     driver,
		window:     window,
		context:    &VulkanContext{},
		validation: ValidationEnabled,
	}
	for _, opt := range opts {
		opt(vr)
	}
	return vr
}

func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

// Initialize brings Vulkan up in order: instance, debug messenger, surface,
// physical device, logical device. On failure everything acquired so far is
// released before the error is returned.
func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) (err error) {
	vr.appName = appName

	defer func() {
		if err != nil {
			vr.release()
		}
	}()

	if err := vr.driver.Load(vr.window.GetInstanceProcAddress()); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return fmt.Errorf("%w: %s", core.ErrInstanceCreation, err)
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if err := vr.setupDebugMessenger(); err != nil {
		return err
	}

	core.LogDebug("Creating Vulkan surface...")
	if err := vr.createSurface(); err != nil {
		return err
	}
	core.LogDebug("Vulkan surface created.")

	if err := SelectPhysicalDevice(vr.driver, vr.context); err != nil {
		return err
	}

	if err := DeviceCreate(vr.driver, vr.context, vr.layers); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully (%dx%d).", appWidth, appHeight)
	return nil
}

// Shutdown destroys in the opposite order of creation.
func (vr *VulkanRenderer) Shutdown() error {
	vr.release()
	return nil
}

func (vr *VulkanRenderer) release() {
	DeviceDestroy(vr.driver, vr.context)

	vr.destroyDebugMessenger()

	if vr.context.Surface != NullHandle {
		core.LogDebug("Destroying Vulkan surface...")
		vr.driver.DestroySurface(vr.context.Instance, vr.context.Surface)
		vr.context.Surface = NullHandle
	}

	if vr.context.Instance != NullHandle {
		core.LogDebug("Destroying Vulkan instance...")
		vr.driver.DestroyInstance(vr.context.Instance)
		vr.context.Instance = NullHandle
		vr.context.procs = nil
	}
	vr.layers = nil
}

func (vr *VulkanRenderer) createSurface() error {
	surface, err := vr.driver.CreateSurface(vr.context.Instance, vr.window)
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrSurfaceCreation, err)
		core.LogError(err.Error())
		return err
	}
	vr.context.Surface = surface
	return nil
}
