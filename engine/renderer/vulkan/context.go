package vulkan

// VulkanContext owns every handle the bootstrapper creates. Fields are reset
// to the null handle once released, so teardown only touches what exists.
type VulkanContext struct {
	Instance InstanceHandle
	Surface  SurfaceHandle

	// Only set when validation is enabled.
	debugMessenger DebugMessengerHandle

	Device *VulkanDevice

	// Extension entry points of Instance.
	procs *ProcTable
}

func (vc *VulkanContext) DebugMessenger() DebugMessengerHandle {
	return vc.debugMessenger
}

type VulkanDevice struct {
	// Not owned. Enumerated by the driver and never destroyed here.
	PhysicalDevice PhysicalDeviceHandle
	LogicalDevice  DeviceHandle

	QueueFamilies QueueFamilyIndices

	GraphicsQueue QueueHandle
	PresentQueue  QueueHandle

	Properties PhysicalDeviceProperties
}
