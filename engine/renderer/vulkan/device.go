package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkboot/engine/core"
	"golang.org/x/exp/slices"
)

// RequiredDeviceExtensions must all be offered by a device for it to be picked.
var RequiredDeviceExtensions = []string{vk.KhrSwapchainExtensionName}

const queuePriority float32 = 1.0

// QueueFamilyIndices records the first family found for each capability.
// Graphics and Present may name the same family.
type QueueFamilyIndices struct {
	Graphics core.Optional[uint32]
	Present  core.Optional[uint32]
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.Graphics.HasValue() && q.Present.HasValue()
}

// Unique returns the distinct family indices in ascending order. Only call it
// on complete indices.
func (q QueueFamilyIndices) Unique() []uint32 {
	families := []uint32{q.Graphics.MustValue(), q.Present.MustValue()}
	slices.Sort(families)
	return slices.Compact(families)
}

// FindQueueFamilies scans the families of device in index order.
func FindQueueFamilies(driver Driver, device PhysicalDeviceHandle, surface SurfaceHandle) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}

	for i, family := range driver.QueueFamilies(device) {
		index := uint32(i)

		if !indices.Graphics.HasValue() && vk.QueueFlagBits(family.QueueFlags)&vk.QueueGraphicsBit != 0 {
			indices.Graphics = core.Some(index)
		}

		if !indices.Present.HasValue() {
			supported, err := driver.SurfaceSupport(device, index, surface)
			if err != nil {
				return indices, fmt.Errorf("failed to query present support of queue family %d: %w", index, err)
			}
			if supported {
				indices.Present = core.Some(index)
			}
		}

		if indices.IsComplete() {
			break
		}
	}
	return indices, nil
}

// MissingExtensions returns the required names absent from available, in the
// order they were required.
func MissingExtensions(required, available []string) []string {
	remaining := make(map[string]struct{}, len(required))
	for _, name := range required {
		remaining[name] = struct{}{}
	}
	for _, name := range available {
		delete(remaining, name)
	}

	missing := []string{}
	for _, name := range required {
		if _, ok := remaining[name]; ok {
			missing = append(missing, name)
			delete(remaining, name)
		}
	}
	return missing
}

func DeviceExtensionsSupported(driver Driver, device PhysicalDeviceHandle) bool {
	available, err := driver.DeviceExtensions(device)
	if err != nil {
		core.LogWarn("Failed to enumerate device extensions: %s", err)
		return false
	}
	missing := MissingExtensions(RequiredDeviceExtensions, available)
	for _, name := range missing {
		core.LogInfo("Required extension not found: '%s', skipping device.", name)
	}
	return len(missing) == 0
}

// IsDeviceSuitable requires complete queue families, every required device
// extension and an adequate swapchain. Swapchain support is only queried once
// the extensions are known to be there.
func IsDeviceSuitable(driver Driver, device PhysicalDeviceHandle, surface SurfaceHandle) bool {
	indices, err := FindQueueFamilies(driver, device, surface)
	if err != nil {
		core.LogWarn(err.Error())
		return false
	}

	extensionsSupported := DeviceExtensionsSupported(driver, device)

	swapchainAdequate := false
	if extensionsSupported {
		support, err := QuerySwapchainSupport(driver, device, surface)
		if err != nil {
			core.LogWarn(err.Error())
		} else {
			swapchainAdequate = support.Adequate()
		}
		if !swapchainAdequate {
			core.LogInfo("Required swapchain support not present, skipping device.")
		}
	}

	if !indices.IsComplete() {
		core.LogInfo("Device lacks a graphics or present queue family, skipping.")
	}

	return indices.IsComplete() && extensionsSupported && swapchainAdequate
}

// SelectPhysicalDevice picks the first suitable device in enumeration order.
// Devices are not ranked.
func SelectPhysicalDevice(driver Driver, context *VulkanContext) error {
	devices, err := driver.PhysicalDevices(context.Instance)
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrNoGPUs, err)
		core.LogError(err.Error())
		return err
	}
	if len(devices) == 0 {
		core.LogError("No devices which support Vulkan were found.")
		return core.ErrNoGPUs
	}

	for _, device := range devices {
		if !IsDeviceSuitable(driver, device, context.Surface) {
			continue
		}

		properties := driver.PhysicalDeviceProperties(device)
		context.Device = &VulkanDevice{
			PhysicalDevice: device,
			Properties:     properties,
		}
		logDeviceProperties(properties)
		core.LogInfo("Physical device selected.")
		return nil
	}

	core.LogError("No physical devices were found which meet the requirements.")
	return core.ErrNoSuitableGPU
}

func logDeviceProperties(properties PhysicalDeviceProperties) {
	core.LogInfo("Selected device: '%s'.", properties.DeviceName)
	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}
	version := vk.Version(properties.ApiVersion)
	core.LogInfo("Vulkan API version: %d.%d.%d", version.Major(), version.Minor(), version.Patch())
}

// QueueCreateInfos requests one queue per distinct family.
func QueueCreateInfos(indices QueueFamilyIndices) []DeviceQueueCreateInfo {
	families := indices.Unique()
	infos := make([]DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		infos = append(infos, DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{queuePriority},
		})
	}
	return infos
}

func DeviceCreate(driver Driver, context *VulkanContext, layers []string) error {
	core.LogInfo("Creating logical device...")

	device := context.Device
	if device == nil {
		err := fmt.Errorf("%w: no physical device selected", core.ErrLogicalDevice)
		core.LogError(err.Error())
		return err
	}
	indices, err := FindQueueFamilies(driver, device.PhysicalDevice, context.Surface)
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrLogicalDevice, err)
		core.LogError(err.Error())
		return err
	}
	if !indices.IsComplete() {
		err := fmt.Errorf("%w: graphics or present queue family missing", core.ErrLogicalDevice)
		core.LogError(err.Error())
		return err
	}
	device.QueueFamilies = indices

	createInfo := &DeviceCreateInfo{
		QueueCreateInfos: QueueCreateInfos(indices),
		Extensions:       slices.Clone(RequiredDeviceExtensions),
		Layers:           slices.Clone(layers),
	}

	logical, err := driver.CreateDevice(device.PhysicalDevice, createInfo)
	if err != nil {
		err = fmt.Errorf("%w: %s", core.ErrLogicalDevice, err)
		core.LogError(err.Error())
		return err
	}
	device.LogicalDevice = logical
	core.LogInfo("Logical device created.")

	device.GraphicsQueue = driver.DeviceQueue(logical, indices.Graphics.MustValue(), 0)
	device.PresentQueue = driver.DeviceQueue(logical, indices.Present.MustValue(), 0)
	core.LogInfo("Queues obtained.")

	return nil
}

func DeviceDestroy(driver Driver, context *VulkanContext) {
	device := context.Device
	if device == nil {
		return
	}

	// Queues go away with the device.
	device.GraphicsQueue = NullHandle
	device.PresentQueue = NullHandle

	if device.LogicalDevice != NullHandle {
		core.LogInfo("Destroying logical device...")
		driver.DestroyDevice(device.LogicalDevice)
		device.LogicalDevice = NullHandle
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = NullHandle
	device.QueueFamilies = QueueFamilyIndices{}
	context.Device = nil
}
