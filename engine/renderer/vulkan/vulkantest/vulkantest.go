// Package vulkantest provides an in-memory Driver and window for exercising
// the Vulkan bootstrap without a GPU. Every collaborator call is appended to a
// shared Recorder so tests can assert on ordering.
package vulkantest

import (
	"fmt"
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkboot/engine/renderer/vulkan"
)

type Recorder struct {
	calls []string
}

func (r *Recorder) Record(call string) {
	r.calls = append(r.calls, call)
}

func (r *Recorder) Calls() []string {
	return append([]string(nil), r.calls...)
}

// Filter returns the recorded calls starting with any of prefixes.
func (r *Recorder) Filter(prefixes ...string) []string {
	out := []string{}
	for _, call := range r.calls {
		for _, prefix := range prefixes {
			if strings.HasPrefix(call, prefix) {
				out = append(out, call)
				break
			}
		}
	}
	return out
}

func (r *Recorder) Contains(call string) bool {
	return r.Index(call) >= 0
}

// Index returns the position of the first call equal to call, or -1.
func (r *Recorder) Index(call string) int {
	for i, c := range r.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type QueueFamily struct {
	Graphics bool
	Present  bool
}

// Device describes one fake GPU.
type Device struct {
	Name          string
	Type          vk.PhysicalDeviceType
	QueueFamilies []QueueFamily
	Extensions    []string
	Formats       []vk.SurfaceFormat
	PresentModes  []vk.PresentMode
}

// SuitableDevice passes every suitability check with one combined family.
func SuitableDevice(name string) Device {
	return Device{
		Name:          name,
		Type:          vk.PhysicalDeviceTypeDiscreteGpu,
		QueueFamilies: []QueueFamily{{Graphics: true, Present: true}},
		Extensions:    []string{vk.KhrSwapchainExtensionName},
		Formats:       []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		PresentModes:  []vk.PresentMode{vk.PresentModeFifo},
	}
}

type DebugMessage struct {
	Severity vulkan.DebugSeverity
	Text     string
}

type Driver struct {
	Recorder *Recorder

	Layers     []string
	Extensions []string
	Devices    []Device

	// Leaves the debug entry points out of InstanceProcs.
	OmitDebugProcs bool
	// Delivered through the chained debug callback during CreateInstance.
	InstanceCreationMessages []DebugMessage

	FailLoad      error
	FailInstance  error
	FailMessenger error
	FailDevice    error
	FailDevices   error

	// Captured arguments.
	InstanceInfo  *vulkan.InstanceCreateInfo
	DeviceInfo    *vulkan.DeviceCreateInfo
	SelectedGPU   string
	DebugCallback vulkan.DebugCallback

	next uint64
}

var _ vulkan.Driver = (*Driver)(nil)

func NewDriver(rec *Recorder, devices ...Device) *Driver {
	return &Driver{
		Recorder: rec,
		Layers:   []string{"VK_LAYER_KHRONOS_validation"},
		Extensions: []string{
			"VK_KHR_surface", vk.ExtDebugReportExtensionName,
		},
		Devices: devices,
	}
}

func (d *Driver) handle() uint64 {
	d.next++
	return d.next
}

func (d *Driver) device(h vulkan.PhysicalDeviceHandle) Device {
	return d.Devices[int(h)-1]
}

func (d *Driver) Load(getInstanceProcAddr unsafe.Pointer) error {
	d.Recorder.Record("Load")
	if getInstanceProcAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	return d.FailLoad
}

func (d *Driver) InstanceLayers() ([]string, error) {
	d.Recorder.Record("InstanceLayers")
	return d.Layers, nil
}

func (d *Driver) InstanceExtensions() ([]string, error) {
	d.Recorder.Record("InstanceExtensions")
	return d.Extensions, nil
}

func (d *Driver) CreateInstance(info *vulkan.InstanceCreateInfo) (vulkan.InstanceHandle, error) {
	d.Recorder.Record("CreateInstance")
	d.InstanceInfo = info
	if info.Debug != nil {
		for _, msg := range d.InstanceCreationMessages {
			info.Debug.Callback(msg.Severity, msg.Text)
		}
	}
	if d.FailInstance != nil {
		return vulkan.NullHandle, d.FailInstance
	}
	return vulkan.InstanceHandle(d.handle()), nil
}

func (d *Driver) DestroyInstance(instance vulkan.InstanceHandle) {
	d.Recorder.Record("DestroyInstance")
}

func (d *Driver) InstanceProcs(instance vulkan.InstanceHandle) *vulkan.ProcTable {
	procs := vulkan.NewProcTable()
	if d.OmitDebugProcs {
		return procs
	}
	procs.Register(vulkan.ProcCreateDebugMessenger, vulkan.CreateDebugMessengerFunc(
		func(instance vulkan.InstanceHandle, info *vulkan.DebugMessengerCreateInfo) (vulkan.DebugMessengerHandle, error) {
			d.Recorder.Record("CreateDebugMessenger")
			if d.FailMessenger != nil {
				return vulkan.NullHandle, d.FailMessenger
			}
			d.DebugCallback = info.Callback
			return vulkan.DebugMessengerHandle(d.handle()), nil
		}))
	procs.Register(vulkan.ProcDestroyDebugMessenger, vulkan.DestroyDebugMessengerFunc(
		func(instance vulkan.InstanceHandle, messenger vulkan.DebugMessengerHandle) {
			d.Recorder.Record("DestroyDebugMessenger")
		}))
	return procs
}

func (d *Driver) CreateSurface(instance vulkan.InstanceHandle, target vulkan.SurfaceTarget) (vulkan.SurfaceHandle, error) {
	d.Recorder.Record("CreateSurface")
	if _, err := target.CreateWindowSurface(instance, nil); err != nil {
		return vulkan.NullHandle, err
	}
	return vulkan.SurfaceHandle(d.handle()), nil
}

func (d *Driver) DestroySurface(instance vulkan.InstanceHandle, surface vulkan.SurfaceHandle) {
	d.Recorder.Record("DestroySurface")
}

func (d *Driver) PhysicalDevices(instance vulkan.InstanceHandle) ([]vulkan.PhysicalDeviceHandle, error) {
	d.Recorder.Record("PhysicalDevices")
	if d.FailDevices != nil {
		return nil, d.FailDevices
	}
	handles := make([]vulkan.PhysicalDeviceHandle, len(d.Devices))
	for i := range d.Devices {
		handles[i] = vulkan.PhysicalDeviceHandle(i + 1)
	}
	return handles, nil
}

func (d *Driver) PhysicalDeviceProperties(device vulkan.PhysicalDeviceHandle) vulkan.PhysicalDeviceProperties {
	dev := d.device(device)
	d.Recorder.Record("PhysicalDeviceProperties:" + dev.Name)
	return vulkan.PhysicalDeviceProperties{
		DeviceName: dev.Name,
		DeviceType: dev.Type,
		ApiVersion: uint32(vk.MakeVersion(1, 0, 0)),
	}
}

func (d *Driver) QueueFamilies(device vulkan.PhysicalDeviceHandle) []vk.QueueFamilyProperties {
	dev := d.device(device)
	d.Recorder.Record("QueueFamilies:" + dev.Name)
	families := make([]vk.QueueFamilyProperties, len(dev.QueueFamilies))
	for i, family := range dev.QueueFamilies {
		families[i].QueueCount = 1
		if family.Graphics {
			families[i].QueueFlags = vk.QueueFlags(vk.QueueGraphicsBit)
		} else {
			families[i].QueueFlags = vk.QueueFlags(vk.QueueTransferBit)
		}
	}
	return families
}

func (d *Driver) SurfaceSupport(device vulkan.PhysicalDeviceHandle, queueFamily uint32, surface vulkan.SurfaceHandle) (bool, error) {
	dev := d.device(device)
	d.Recorder.Record(fmt.Sprintf("SurfaceSupport:%s:%d", dev.Name, queueFamily))
	return dev.QueueFamilies[queueFamily].Present, nil
}

func (d *Driver) DeviceExtensions(device vulkan.PhysicalDeviceHandle) ([]string, error) {
	dev := d.device(device)
	d.Recorder.Record("DeviceExtensions:" + dev.Name)
	return dev.Extensions, nil
}

func (d *Driver) SurfaceCapabilities(device vulkan.PhysicalDeviceHandle, surface vulkan.SurfaceHandle) (vk.SurfaceCapabilities, error) {
	dev := d.device(device)
	d.Recorder.Record("SurfaceCapabilities:" + dev.Name)
	return vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 3}, nil
}

func (d *Driver) SurfaceFormats(device vulkan.PhysicalDeviceHandle, surface vulkan.SurfaceHandle) ([]vk.SurfaceFormat, error) {
	dev := d.device(device)
	d.Recorder.Record("SurfaceFormats:" + dev.Name)
	return dev.Formats, nil
}

func (d *Driver) SurfacePresentModes(device vulkan.PhysicalDeviceHandle, surface vulkan.SurfaceHandle) ([]vk.PresentMode, error) {
	dev := d.device(device)
	d.Recorder.Record("SurfacePresentModes:" + dev.Name)
	return dev.PresentModes, nil
}

func (d *Driver) CreateDevice(physicalDevice vulkan.PhysicalDeviceHandle, info *vulkan.DeviceCreateInfo) (vulkan.DeviceHandle, error) {
	dev := d.device(physicalDevice)
	d.Recorder.Record("CreateDevice:" + dev.Name)
	d.DeviceInfo = info
	if d.FailDevice != nil {
		return vulkan.NullHandle, d.FailDevice
	}
	d.SelectedGPU = dev.Name
	return vulkan.DeviceHandle(d.handle()), nil
}

func (d *Driver) DestroyDevice(device vulkan.DeviceHandle) {
	d.Recorder.Record("DestroyDevice")
}

func (d *Driver) DeviceQueue(device vulkan.DeviceHandle, queueFamily, queueIndex uint32) vulkan.QueueHandle {
	d.Recorder.Record(fmt.Sprintf("DeviceQueue:%d:%d", queueFamily, queueIndex))
	// Same family and index, same queue.
	return vulkan.QueueHandle(1000 + uint64(queueFamily)*10 + uint64(queueIndex))
}

// Window is a fake glfw window. It satisfies both vulkan.WindowSystem and the
// engine's Platform.
type Window struct {
	Recorder *Recorder

	Extensions []string
	// ShouldClose reports true after this many PumpMessages calls.
	CloseAfter int

	FailStartup error
	FailSurface error

	Title       string
	initialized bool
	created     bool
	polls       int
	procAddr    byte
}

var _ vulkan.WindowSystem = (*Window)(nil)

func NewWindow(rec *Recorder) *Window {
	return &Window{
		Recorder:   rec,
		Extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		CloseAfter: 1,
	}
}

func (w *Window) Startup(applicationName string, width uint32, height uint32) error {
	w.Recorder.Record("InitWindowSystem")
	w.initialized = true
	if w.FailStartup != nil {
		return w.FailStartup
	}
	w.Recorder.Record(fmt.Sprintf("CreateWindow:%dx%d", width, height))
	w.Title = applicationName
	w.created = true
	return nil
}

func (w *Window) Shutdown() error {
	if w.created {
		w.Recorder.Record("DestroyWindow")
		w.created = false
	}
	if w.initialized {
		w.Recorder.Record("TerminateWindowSystem")
		w.initialized = false
	}
	return nil
}

func (w *Window) ShouldClose() bool {
	return w.polls >= w.CloseAfter
}

func (w *Window) PumpMessages() {
	w.Recorder.Record("PollEvents")
	w.polls++
}

func (w *Window) Polls() int {
	return w.polls
}

func (w *Window) GetRequiredExtensionNames() []string {
	return w.Extensions
}

func (w *Window) GetInstanceProcAddress() unsafe.Pointer {
	return unsafe.Pointer(&w.procAddr)
}

func (w *Window) CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error) {
	w.Recorder.Record("CreateWindowSurface")
	if w.FailSurface != nil {
		return 0, w.FailSurface
	}
	return 0xbeef, nil
}
