package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"
	"golang.org/x/exp/slices"
)

// handleTable hands out opaque handles for native objects.
type handleTable[T comparable] struct {
	next    uint64
	objects map[uint64]T
}

func newHandleTable[T comparable]() *handleTable[T] {
	return &handleTable[T]{objects: make(map[uint64]T)}
}

// put returns the existing handle when obj is already registered.
func (t *handleTable[T]) put(obj T) uint64 {
	for h, o := range t.objects {
		if o == obj {
			return h
		}
	}
	t.next++
	t.objects[t.next] = obj
	return t.next
}

func (t *handleTable[T]) get(h uint64) (T, bool) {
	obj, ok := t.objects[h]
	return obj, ok
}

func (t *handleTable[T]) drop(h uint64) {
	delete(t.objects, h)
}

type vkDriver struct {
	instances       *handleTable[vk.Instance]
	messengers      *handleTable[vk.DebugReportCallback]
	surfaces        *handleTable[vk.Surface]
	physicalDevices *handleTable[vk.PhysicalDevice]
	devices         *handleTable[vk.Device]
	queues          *handleTable[vk.Queue]

	// Extensions enabled per instance handle.
	instanceExtensions map[InstanceHandle][]string
	// Queue handles issued per device handle.
	deviceQueues map[DeviceHandle][]QueueHandle
}

// NewDriver returns the goki/vulkan backed Driver. No allocator callbacks are
// ever passed to the API.
func NewDriver() Driver {
	return &vkDriver{
		instances:          newHandleTable[vk.Instance](),
		messengers:         newHandleTable[vk.DebugReportCallback](),
		surfaces:           newHandleTable[vk.Surface](),
		physicalDevices:    newHandleTable[vk.PhysicalDevice](),
		devices:            newHandleTable[vk.Device](),
		queues:             newHandleTable[vk.Queue](),
		instanceExtensions: make(map[InstanceHandle][]string),
		deviceQueues:       make(map[DeviceHandle][]QueueHandle),
	}
}

func (d *vkDriver) Load(getInstanceProcAddr unsafe.Pointer) error {
	if getInstanceProcAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	return vk.Init()
}

func (d *vkDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, resultError("vkEnumerateInstanceLayerProperties", res)
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return nil, resultError("vkEnumerateInstanceLayerProperties", res)
	}

	names := make([]string, 0, count)
	for i := range layers[:count] {
		layers[i].Deref()
		names = append(names, vk.ToString(layers[i].LayerName[:]))
	}
	return names, nil
}

func (d *vkDriver) InstanceExtensions() ([]string, error) {
	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &count, nil); res != vk.Success {
		return nil, resultError("vkEnumerateInstanceExtensionProperties", res)
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateInstanceExtensionProperties("", &count, extensions); res != vk.Success {
		return nil, resultError("vkEnumerateInstanceExtensionProperties", res)
	}
	return extensionNames(extensions[:count]), nil
}

func (d *vkDriver) CreateInstance(info *InstanceCreateInfo) (InstanceHandle, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   VulkanSafeString(info.Application.ApplicationName),
		ApplicationVersion: info.Application.ApplicationVersion,
		PEngineName:        VulkanSafeString(info.Application.EngineName),
		EngineVersion:      info.Application.EngineVersion,
		ApiVersion:         info.Application.ApiVersion,
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(info.Layers),
	}

	if info.Debug != nil {
		ref, allocs := debugReportCreateInfo(info.Debug).PassRef()
		createInfo.PNext = unsafe.Pointer(ref)
		// The chained struct lives in C memory owned by allocs.
		defer runtime.KeepAlive(allocs)
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return NullHandle, resultError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return NullHandle, err
	}

	handle := InstanceHandle(d.instances.put(instance))
	d.instanceExtensions[handle] = slices.Clone(info.Extensions)
	return handle, nil
}

func (d *vkDriver) DestroyInstance(instance InstanceHandle) {
	if inst, ok := d.instances.get(uint64(instance)); ok {
		vk.DestroyInstance(inst, nil)
	}
	d.instances.drop(uint64(instance))
	delete(d.instanceExtensions, instance)
}

// InstanceProcs only lists the debug entry points when the debug report
// extension was enabled on the instance.
func (d *vkDriver) InstanceProcs(instance InstanceHandle) *ProcTable {
	procs := NewProcTable()
	if slices.Contains(d.instanceExtensions[instance], vk.ExtDebugReportExtensionName) {
		procs.Register(ProcCreateDebugMessenger, CreateDebugMessengerFunc(d.createDebugMessenger))
		procs.Register(ProcDestroyDebugMessenger, DestroyDebugMessengerFunc(d.destroyDebugMessenger))
	}
	return procs
}

func (d *vkDriver) createDebugMessenger(instance InstanceHandle, info *DebugMessengerCreateInfo) (DebugMessengerHandle, error) {
	inst, ok := d.instances.get(uint64(instance))
	if !ok {
		return NullHandle, fmt.Errorf("unknown instance handle %d", instance)
	}
	var callback vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(inst, debugReportCreateInfo(info), nil, &callback); res != vk.Success {
		return NullHandle, resultError("vkCreateDebugReportCallbackEXT", res)
	}
	return DebugMessengerHandle(d.messengers.put(callback)), nil
}

func (d *vkDriver) destroyDebugMessenger(instance InstanceHandle, messenger DebugMessengerHandle) {
	inst, ok := d.instances.get(uint64(instance))
	callback, found := d.messengers.get(uint64(messenger))
	if ok && found {
		vk.DestroyDebugReportCallback(inst, callback, nil)
	}
	d.messengers.drop(uint64(messenger))
}

func debugReportCreateInfo(info *DebugMessengerCreateInfo) *vk.DebugReportCallbackCreateInfo {
	callback := info.Callback
	return &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportDebugBit | vk.DebugReportInformationBit |
			vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit | vk.DebugReportErrorBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
			if callback != nil {
				callback(debugReportSeverity(flags), pMessage)
			}
			return vk.Bool32(vk.False)
		},
	}
}

// debugReportSeverity maps report flags onto the most severe bit set.
func debugReportSeverity(flags vk.DebugReportFlags) DebugSeverity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return DebugSeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return DebugSeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return DebugSeverityInfo
	default:
		return DebugSeverityVerbose
	}
}

func (d *vkDriver) CreateSurface(instance InstanceHandle, target SurfaceTarget) (SurfaceHandle, error) {
	inst, ok := d.instances.get(uint64(instance))
	if !ok {
		return NullHandle, fmt.Errorf("unknown instance handle %d", instance)
	}
	ptr, err := target.CreateWindowSurface(inst, nil)
	if err != nil {
		return NullHandle, err
	}
	return SurfaceHandle(d.surfaces.put(vk.SurfaceFromPointer(ptr))), nil
}

func (d *vkDriver) DestroySurface(instance InstanceHandle, surface SurfaceHandle) {
	inst, ok := d.instances.get(uint64(instance))
	s, found := d.surfaces.get(uint64(surface))
	if ok && found {
		vk.DestroySurface(inst, s, nil)
	}
	d.surfaces.drop(uint64(surface))
}

func (d *vkDriver) PhysicalDevices(instance InstanceHandle) ([]PhysicalDeviceHandle, error) {
	inst, ok := d.instances.get(uint64(instance))
	if !ok {
		return nil, fmt.Errorf("unknown instance handle %d", instance)
	}

	var count uint32
	if res := vk.EnumeratePhysicalDevices(inst, &count, nil); res != vk.Success {
		return nil, resultError("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return nil, nil
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(inst, &count, devices); res != vk.Success {
		return nil, resultError("vkEnumeratePhysicalDevices", res)
	}

	handles := make([]PhysicalDeviceHandle, 0, count)
	for _, device := range devices[:count] {
		handles = append(handles, PhysicalDeviceHandle(d.physicalDevices.put(device)))
	}
	return handles, nil
}

func (d *vkDriver) physicalDevice(device PhysicalDeviceHandle) vk.PhysicalDevice {
	pd, _ := d.physicalDevices.get(uint64(device))
	return pd
}

func (d *vkDriver) surface(surface SurfaceHandle) vk.Surface {
	s, _ := d.surfaces.get(uint64(surface))
	return s
}

func (d *vkDriver) PhysicalDeviceProperties(device PhysicalDeviceHandle) PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.physicalDevice(device), &properties)
	properties.Deref()

	return PhysicalDeviceProperties{
		DeviceName: vk.ToString(properties.DeviceName[:]),
		DeviceType: properties.DeviceType,
		ApiVersion: properties.ApiVersion,
	}
}

func (d *vkDriver) QueueFamilies(device PhysicalDeviceHandle) []vk.QueueFamilyProperties {
	pd := d.physicalDevice(device)

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i := range families {
		families[i].Deref()
	}
	return families
}

func (d *vkDriver) SurfaceSupport(device PhysicalDeviceHandle, queueFamily uint32, surface SurfaceHandle) (bool, error) {
	var supported vk.Bool32 = vk.False
	if res := vk.GetPhysicalDeviceSurfaceSupport(d.physicalDevice(device), queueFamily, d.surface(surface), &supported); res != vk.Success {
		return false, resultError("vkGetPhysicalDeviceSurfaceSupportKHR", res)
	}
	return supported == vk.True, nil
}

func (d *vkDriver) DeviceExtensions(device PhysicalDeviceHandle) ([]string, error) {
	pd := d.physicalDevice(device)

	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil); res != vk.Success {
		return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, extensions); res != vk.Success {
		return nil, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	return extensionNames(extensions[:count]), nil
}

func (d *vkDriver) SurfaceCapabilities(device PhysicalDeviceHandle, surface SurfaceHandle) (vk.SurfaceCapabilities, error) {
	var capabilities vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(d.physicalDevice(device), d.surface(surface), &capabilities); res != vk.Success {
		return capabilities, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	capabilities.Deref()
	return capabilities, nil
}

func (d *vkDriver) SurfaceFormats(device PhysicalDeviceHandle, surface SurfaceHandle) ([]vk.SurfaceFormat, error) {
	pd, s := d.physicalDevice(device), d.surface(surface)

	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if count == 0 {
		return nil, nil
	}
	formats := make([]vk.SurfaceFormat, count)
	if res := vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, formats); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats[:count], nil
}

func (d *vkDriver) SurfacePresentModes(device PhysicalDeviceHandle, surface SurfaceHandle) ([]vk.PresentMode, error) {
	pd, s := d.physicalDevice(device), d.surface(surface)

	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if count == 0 {
		return nil, nil
	}
	modes := make([]vk.PresentMode, count)
	if res := vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, modes); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	return modes[:count], nil
}

func (d *vkDriver) CreateDevice(physicalDevice PhysicalDeviceHandle, info *DeviceCreateInfo) (DeviceHandle, error) {
	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(info.QueueCreateInfos))
	for i, queue := range info.QueueCreateInfos {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: queue.QueueFamilyIndex,
			QueueCount:       uint32(len(queue.QueuePriorities)),
			PQueuePriorities: queue.QueuePriorities,
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(info.Layers),
	}

	var device vk.Device
	if res := vk.CreateDevice(d.physicalDevice(physicalDevice), &deviceCreateInfo, nil, &device); res != vk.Success {
		return NullHandle, resultError("vkCreateDevice", res)
	}
	return DeviceHandle(d.devices.put(device)), nil
}

func (d *vkDriver) DestroyDevice(device DeviceHandle) {
	if dev, ok := d.devices.get(uint64(device)); ok {
		vk.DestroyDevice(dev, nil)
	}
	for _, queue := range d.deviceQueues[device] {
		d.queues.drop(uint64(queue))
	}
	delete(d.deviceQueues, device)
	d.devices.drop(uint64(device))
}

func (d *vkDriver) DeviceQueue(device DeviceHandle, queueFamily, queueIndex uint32) QueueHandle {
	dev, ok := d.devices.get(uint64(device))
	if !ok {
		return NullHandle
	}
	var queue vk.Queue
	vk.GetDeviceQueue(dev, queueFamily, queueIndex, &queue)

	handle := QueueHandle(d.queues.put(queue))
	if !slices.Contains(d.deviceQueues[device], handle) {
		d.deviceQueues[device] = append(d.deviceQueues[device], handle)
	}
	return handle
}

func extensionNames(extensions []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(extensions))
	for i := range extensions {
		extensions[i].Deref()
		names = append(names, vk.ToString(extensions[i].ExtensionName[:]))
	}
	return names
}
