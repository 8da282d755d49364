package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

// Handles are opaque to everything except the Driver that issued them.
// Zero is the null handle.
type (
	InstanceHandle       uint64
	DebugMessengerHandle uint64
	SurfaceHandle        uint64
	PhysicalDeviceHandle uint64
	DeviceHandle         uint64
	QueueHandle          uint64
)

const NullHandle = 0

// DebugSeverity orders validation messages from least to most severe.
type DebugSeverity uint8

const (
	DebugSeverityVerbose DebugSeverity = iota
	DebugSeverityInfo
	DebugSeverityWarning
	DebugSeverityError
)

func (s DebugSeverity) String() string {
	switch s {
	case DebugSeverityVerbose:
		return "verbose"
	case DebugSeverityInfo:
		return "info"
	case DebugSeverityWarning:
		return "warning"
	case DebugSeverityError:
		return "error"
	}
	return "unknown"
}

// DebugCallback receives every message the validation layers emit.
type DebugCallback func(severity DebugSeverity, message string)

// DebugMessengerCreateInfo subscribes Callback to messages of every severity.
type DebugMessengerCreateInfo struct {
	Callback DebugCallback
}

type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	ApiVersion         uint32
}

type InstanceCreateInfo struct {
	Application ApplicationInfo
	Extensions  []string
	Layers      []string
	// Chained onto the instance create info so messages emitted while the
	// instance is being created or destroyed are captured as well.
	Debug *DebugMessengerCreateInfo
}

type DeviceQueueCreateInfo struct {
	QueueFamilyIndex uint32
	QueuePriorities  []float32
}

type DeviceCreateInfo struct {
	QueueCreateInfos []DeviceQueueCreateInfo
	Extensions       []string
	// Device layers are deprecated; they are passed for older drivers.
	Layers []string
}

type PhysicalDeviceProperties struct {
	DeviceName string
	DeviceType vk.PhysicalDeviceType
	ApiVersion uint32
}

// SurfaceTarget is something a Vulkan surface can be created for. *glfw.Window
// satisfies it.
type SurfaceTarget interface {
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (surface uintptr, err error)
}

// Driver is the native graphics API as seen by the bootstrapper. All calls
// are synchronous and must happen on the thread that owns the window.
type Driver interface {
	// Load resolves the global entry points through vkGetInstanceProcAddr.
	Load(getInstanceProcAddr unsafe.Pointer) error

	InstanceLayers() ([]string, error)
	InstanceExtensions() ([]string, error)
	CreateInstance(info *InstanceCreateInfo) (InstanceHandle, error)
	DestroyInstance(instance InstanceHandle)
	// InstanceProcs returns the extension entry points available on instance.
	InstanceProcs(instance InstanceHandle) *ProcTable

	CreateSurface(instance InstanceHandle, target SurfaceTarget) (SurfaceHandle, error)
	DestroySurface(instance InstanceHandle, surface SurfaceHandle)

	PhysicalDevices(instance InstanceHandle) ([]PhysicalDeviceHandle, error)
	PhysicalDeviceProperties(device PhysicalDeviceHandle) PhysicalDeviceProperties
	QueueFamilies(device PhysicalDeviceHandle) []vk.QueueFamilyProperties
	SurfaceSupport(device PhysicalDeviceHandle, queueFamily uint32, surface SurfaceHandle) (bool, error)
	DeviceExtensions(device PhysicalDeviceHandle) ([]string, error)
	SurfaceCapabilities(device PhysicalDeviceHandle, surface SurfaceHandle) (vk.SurfaceCapabilities, error)
	SurfaceFormats(device PhysicalDeviceHandle, surface SurfaceHandle) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(device PhysicalDeviceHandle, surface SurfaceHandle) ([]vk.PresentMode, error)

	CreateDevice(physicalDevice PhysicalDeviceHandle, info *DeviceCreateInfo) (DeviceHandle, error)
	DestroyDevice(device DeviceHandle)
	DeviceQueue(device DeviceHandle, queueFamily, queueIndex uint32) QueueHandle
}
