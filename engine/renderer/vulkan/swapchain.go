package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// SwapchainSupportDetails describes whether a device can present to a surface.
type SwapchainSupportDetails struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether at least one format and one present mode exist.
func (d *SwapchainSupportDetails) Adequate() bool {
	return len(d.Formats) > 0 && len(d.PresentModes) > 0
}

func QuerySwapchainSupport(driver Driver, device PhysicalDeviceHandle, surface SurfaceHandle) (*SwapchainSupportDetails, error) {
	details := &SwapchainSupportDetails{}

	capabilities, err := driver.SurfaceCapabilities(device, surface)
	if err != nil {
		return nil, fmt.Errorf("failed to get physical device surface capabilities: %w", err)
	}
	details.Capabilities = capabilities

	formats, err := driver.SurfaceFormats(device, surface)
	if err != nil {
		return nil, fmt.Errorf("failed to get physical device surface formats: %w", err)
	}
	details.Formats = formats

	presentModes, err := driver.SurfacePresentModes(device, surface)
	if err != nil {
		return nil, fmt.Errorf("failed to get physical device surface present modes: %w", err)
	}
	details.PresentModes = presentModes

	return details, nil
}
