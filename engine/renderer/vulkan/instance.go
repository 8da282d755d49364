package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkboot/engine/core"
	"golang.org/x/exp/slices"
)

// ValidationLayers are requested on the instance and device when validation
// is enabled.
var ValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// CheckValidationLayerSupport fails unless every requested layer is
// offered by the driver.
func CheckValidationLayerSupport(driver Driver, requested []string) error {
	core.LogInfo("Validation layers enabled. Enumerating...")

	available, err := driver.InstanceLayers()
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrValidationLayerUnsupported, err)
	}

	for _, name := range requested {
		core.LogDebug("Searching for layer: %s...", name)
		if !slices.Contains(available, name) {
			core.LogError("Required validation layer is missing: %s", name)
			return fmt.Errorf("%w: %s", core.ErrValidationLayerUnsupported, name)
		}
	}
	core.LogInfo("All required validation layers are present.")
	return nil
}

// RequiredInstanceExtensions merges the windowing extensions with the debug
// report extension, keeping the first occurrence of each name. Debug utils is
// not requested: the bindings only expose the debug report callback.
func RequiredInstanceExtensions(windowExtensions []string, validation bool) []string {
	extensions := slices.Clone(windowExtensions)
	if validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}

	unique := make([]string, 0, len(extensions))
	for _, name := range extensions {
		if !slices.Contains(unique, name) {
			unique = append(unique, name)
		}
	}
	return unique
}

// DebugMessengerCallback forwards warnings and errors to the error stream and
// drops everything less severe.
func DebugMessengerCallback(severity DebugSeverity, message string) {
	if !SurfaceDebugMessage(severity) {
		return
	}
	if severity >= DebugSeverityError {
		core.LogError("validation layer: %s", message)
		return
	}
	core.LogWarn("validation layer: %s", message)
}

func SurfaceDebugMessage(severity DebugSeverity) bool {
	return severity >= DebugSeverityWarning
}

func debugMessengerCreateInfo() *DebugMessengerCreateInfo {
	return &DebugMessengerCreateInfo{Callback: DebugMessengerCallback}
}

func (vr *VulkanRenderer) createInstance() error {
	layers := []string{}
	if vr.validation {
		if err := CheckValidationLayerSupport(vr.driver, ValidationLayers); err != nil {
			return err
		}
		layers = slices.Clone(ValidationLayers)
	}

	if available, err := vr.driver.InstanceExtensions(); err == nil {
		core.LogDebug("Available Vulkan extensions: %s", strings.Join(available, ", "))
	}

	extensions := RequiredInstanceExtensions(vr.window.GetRequiredExtensionNames(), vr.validation)
	core.LogInfo("Required extensions: %s", strings.Join(extensions, ", "))

	createInfo := &InstanceCreateInfo{
		Application: ApplicationInfo{
			ApplicationName:    vr.appName,
			ApplicationVersion: uint32(vk.MakeVersion(0, 1, 0)),
			EngineName:         "No Engine",
			EngineVersion:      uint32(vk.MakeVersion(0, 1, 0)),
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		},
		Extensions: extensions,
		Layers:     layers,
	}
	if vr.validation {
		createInfo.Debug = debugMessengerCreateInfo()
	}

	instance, err := vr.driver.CreateInstance(createInfo)
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrInstanceCreation, err)
		core.LogError(err.Error())
		return err
	}
	vr.context.Instance = instance
	vr.context.procs = vr.driver.InstanceProcs(instance)
	vr.layers = layers

	core.LogInfo("Vulkan Instance created.")
	return nil
}

func (vr *VulkanRenderer) setupDebugMessenger() error {
	if !vr.validation {
		return nil
	}
	core.LogDebug("Creating Vulkan debugger...")

	create, ok := Resolve[CreateDebugMessengerFunc](vr.context.procs, ProcCreateDebugMessenger).Get()
	if !ok {
		err := fmt.Errorf("%w: %w: %s", core.ErrDebugMessenger, core.ErrExtensionNotPresent, ProcCreateDebugMessenger)
		core.LogError(err.Error())
		return err
	}

	messenger, err := create(vr.context.Instance, debugMessengerCreateInfo())
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrDebugMessenger, err)
		core.LogError(err.Error())
		return err
	}
	vr.context.debugMessenger = messenger

	core.LogDebug("Vulkan debugger created.")
	return nil
}

func (vr *VulkanRenderer) destroyDebugMessenger() {
	if vr.context.debugMessenger == NullHandle {
		return
	}
	core.LogDebug("Destroying Vulkan debugger...")
	if destroy, ok := Resolve[DestroyDebugMessengerFunc](vr.context.procs, ProcDestroyDebugMessenger).Get(); ok {
		destroy(vr.context.Instance, vr.context.debugMessenger)
	}
	vr.context.debugMessenger = NullHandle
}
