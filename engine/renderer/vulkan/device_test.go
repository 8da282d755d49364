package vulkan_test

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkboot/engine/core"
	"github.com/spaghettifunk/vkboot/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkboot/engine/renderer/vulkan/vulkantest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSurface vulkan.SurfaceHandle = 7

func firstDevice() vulkan.PhysicalDeviceHandle {
	return vulkan.PhysicalDeviceHandle(1)
}

func TestDeviceWithoutGraphicsFamilyIsUnsuitable(t *testing.T) {
	dev := vulkantest.SuitableDevice("gpu")
	dev.QueueFamilies = []vulkantest.QueueFamily{{Present: true}}
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, dev)

	assert.False(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
}

func TestDeviceWithoutPresentFamilyIsUnsuitable(t *testing.T) {
	dev := vulkantest.SuitableDevice("gpu")
	dev.QueueFamilies = []vulkantest.QueueFamily{{Graphics: true}, {Graphics: true}}
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, dev)

	assert.False(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
}

func TestDeviceWithoutQueueFamiliesIsUnsuitable(t *testing.T) {
	dev := vulkantest.SuitableDevice("gpu")
	dev.QueueFamilies = nil
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, dev)

	assert.False(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
}

func TestMissingExtensionSkipsSwapchainQuery(t *testing.T) {
	rec := &vulkantest.Recorder{}
	dev := vulkantest.SuitableDevice("gpu")
	dev.Extensions = []string{"VK_KHR_maintenance1"}
	driver := vulkantest.NewDriver(rec, dev)

	assert.False(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
	assert.True(t, rec.Contains("DeviceExtensions:gpu"))
	assert.Empty(t, rec.Filter("SurfaceCapabilities", "SurfaceFormats", "SurfacePresentModes"),
		"swapchain support must not be queried without the swapchain extension")
}

func TestSwapchainAdequacy(t *testing.T) {
	noFormats := vulkantest.SuitableDevice("no-formats")
	noFormats.Formats = nil
	noModes := vulkantest.SuitableDevice("no-modes")
	noModes.PresentModes = []vk.PresentMode{}

	for _, dev := range []vulkantest.Device{noFormats, noModes} {
		t.Run(dev.Name, func(t *testing.T) {
			rec := &vulkantest.Recorder{}
			driver := vulkantest.NewDriver(rec, dev)

			assert.False(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
			assert.True(t, rec.Contains("SurfaceCapabilities:"+dev.Name))
		})
	}
}

func TestSuitableDevice(t *testing.T) {
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, vulkantest.SuitableDevice("gpu"))

	assert.True(t, vulkan.IsDeviceSuitable(driver, firstDevice(), testSurface))
}

func TestFindQueueFamiliesTakesFirstOfEach(t *testing.T) {
	dev := vulkantest.SuitableDevice("gpu")
	dev.QueueFamilies = []vulkantest.QueueFamily{
		{Present: true},
		{Graphics: true},
		{Graphics: true, Present: true},
	}
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, dev)

	indices, err := vulkan.FindQueueFamilies(driver, firstDevice(), testSurface)
	require.NoError(t, err)
	require.True(t, indices.IsComplete())

	graphics, _ := indices.Graphics.Value()
	present, _ := indices.Present.Value()
	assert.Equal(t, uint32(1), graphics)
	assert.Equal(t, uint32(0), present)
}

func TestSelectPhysicalDeviceFirstMatchWins(t *testing.T) {
	a := vulkantest.SuitableDevice("a")
	b := vulkantest.SuitableDevice("b")
	broken := vulkantest.SuitableDevice("broken")
	broken.Extensions = nil

	orders := [][]vulkantest.Device{
		{a, b},
		{b, a},
		{broken, b, a},
		{broken, a, b},
	}
	for _, devices := range orders {
		want := devices[0].Name
		if want == "broken" {
			want = devices[1].Name
		}
		t.Run(want, func(t *testing.T) {
			driver := vulkantest.NewDriver(&vulkantest.Recorder{}, devices...)
			context := &vulkan.VulkanContext{Surface: testSurface}

			require.NoError(t, vulkan.SelectPhysicalDevice(driver, context))
			assert.Equal(t, want, context.Device.Properties.DeviceName)
		})
	}
}

func TestSelectPhysicalDeviceStopsAtFirstMatch(t *testing.T) {
	rec := &vulkantest.Recorder{}
	driver := vulkantest.NewDriver(rec, vulkantest.SuitableDevice("a"), vulkantest.SuitableDevice("b"))

	require.NoError(t, vulkan.SelectPhysicalDevice(driver, &vulkan.VulkanContext{Surface: testSurface}))
	assert.False(t, rec.Contains("QueueFamilies:b"), "later devices are not inspected")
}

func TestSelectPhysicalDeviceNoGPUs(t *testing.T) {
	driver := vulkantest.NewDriver(&vulkantest.Recorder{})
	context := &vulkan.VulkanContext{Surface: testSurface}

	err := vulkan.SelectPhysicalDevice(driver, context)
	assert.ErrorIs(t, err, core.ErrNoGPUs)
	assert.Nil(t, context.Device)
}

func TestSelectPhysicalDeviceNoneSuitable(t *testing.T) {
	dev := vulkantest.SuitableDevice("gpu")
	dev.PresentModes = nil
	driver := vulkantest.NewDriver(&vulkantest.Recorder{}, dev)
	context := &vulkan.VulkanContext{Surface: testSurface}

	err := vulkan.SelectPhysicalDevice(driver, context)
	assert.ErrorIs(t, err, core.ErrNoSuitableGPU)
	assert.Nil(t, context.Device)
}

func TestDeviceCreateSharedFamilyRequestsOneQueue(t *testing.T) {
	rec := &vulkantest.Recorder{}
	driver := vulkantest.NewDriver(rec, vulkantest.SuitableDevice("gpu"))
	context := &vulkan.VulkanContext{Surface: testSurface}
	require.NoError(t, vulkan.SelectPhysicalDevice(driver, context))

	require.NoError(t, vulkan.DeviceCreate(driver, context, nil))

	require.Len(t, driver.DeviceInfo.QueueCreateInfos, 1)
	assert.Equal(t, []float32{1.0}, driver.DeviceInfo.QueueCreateInfos[0].QueuePriorities)
	assert.Equal(t, []string{vk.KhrSwapchainExtensionName}, driver.DeviceInfo.Extensions)
	assert.Empty(t, driver.DeviceInfo.Layers)
	assert.Equal(t, context.Device.GraphicsQueue, context.Device.PresentQueue)
	assert.Equal(t, []string{"DeviceQueue:0:0", "DeviceQueue:0:0"}, rec.Filter("DeviceQueue"))
}

func TestDeviceCreateSeparateFamilies(t *testing.T) {
	rec := &vulkantest.Recorder{}
	dev := vulkantest.SuitableDevice("gpu")
	dev.QueueFamilies = []vulkantest.QueueFamily{{Graphics: true}, {Present: true}}
	driver := vulkantest.NewDriver(rec, dev)
	context := &vulkan.VulkanContext{Surface: testSurface}
	require.NoError(t, vulkan.SelectPhysicalDevice(driver, context))

	require.NoError(t, vulkan.DeviceCreate(driver, context, []string{"VK_LAYER_KHRONOS_validation"}))

	require.Len(t, driver.DeviceInfo.QueueCreateInfos, 2)
	assert.Equal(t, uint32(0), driver.DeviceInfo.QueueCreateInfos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(1), driver.DeviceInfo.QueueCreateInfos[1].QueueFamilyIndex)
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"}, driver.DeviceInfo.Layers)
	assert.NotEqual(t, context.Device.GraphicsQueue, context.Device.PresentQueue)
	assert.Equal(t, []string{"DeviceQueue:0:0", "DeviceQueue:1:0"}, rec.Filter("DeviceQueue"))
}

func TestDeviceDestroyLeavesPhysicalDeviceAlone(t *testing.T) {
	rec := &vulkantest.Recorder{}
	driver := vulkantest.NewDriver(rec, vulkantest.SuitableDevice("gpu"))
	context := &vulkan.VulkanContext{Surface: testSurface}
	require.NoError(t, vulkan.SelectPhysicalDevice(driver, context))
	require.NoError(t, vulkan.DeviceCreate(driver, context, nil))

	vulkan.DeviceDestroy(driver, context)
	vulkan.DeviceDestroy(driver, context)

	assert.Equal(t, []string{"DestroyDevice"}, rec.Filter("Destroy"))
	assert.Nil(t, context.Device)
}

func TestDeviceCreateWithoutSelectedDevice(t *testing.T) {
	rec := &vulkantest.Recorder{}
	driver := vulkantest.NewDriver(rec, vulkantest.SuitableDevice("gpu"))
	context := &vulkan.VulkanContext{Surface: testSurface}

	var err error
	require.NotPanics(t, func() { err = vulkan.DeviceCreate(driver, context, nil) })

	assert.ErrorIs(t, err, core.ErrLogicalDevice)
	assert.Empty(t, rec.Filter("QueueFamilies", "CreateDevice"))
	assert.Nil(t, context.Device)
}
