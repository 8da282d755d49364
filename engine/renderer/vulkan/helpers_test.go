package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkboot/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFamilyIndicesIsComplete(t *testing.T) {
	assert.False(t, QueueFamilyIndices{}.IsComplete())
	assert.False(t, QueueFamilyIndices{Graphics: core.Some[uint32](0)}.IsComplete())
	assert.False(t, QueueFamilyIndices{Present: core.Some[uint32](0)}.IsComplete())
	assert.True(t, QueueFamilyIndices{Graphics: core.Some[uint32](0), Present: core.Some[uint32](0)}.IsComplete())
}

func TestQueueCreateInfosDeduplicatesSharedFamily(t *testing.T) {
	infos := QueueCreateInfos(QueueFamilyIndices{Graphics: core.Some[uint32](2), Present: core.Some[uint32](2)})

	require.Len(t, infos, 1)
	assert.Equal(t, uint32(2), infos[0].QueueFamilyIndex)
	assert.Equal(t, []float32{1.0}, infos[0].QueuePriorities)
}

func TestQueueCreateInfosSeparateFamilies(t *testing.T) {
	infos := QueueCreateInfos(QueueFamilyIndices{Graphics: core.Some[uint32](3), Present: core.Some[uint32](1)})

	require.Len(t, infos, 2)
	assert.Equal(t, uint32(1), infos[0].QueueFamilyIndex)
	assert.Equal(t, uint32(3), infos[1].QueueFamilyIndex)
	for _, info := range infos {
		assert.Equal(t, []float32{1.0}, info.QueuePriorities)
	}
}

func TestMissingExtensions(t *testing.T) {
	tests := []struct {
		name      string
		required  []string
		available []string
		want      []string
	}{
		{"all present", []string{"a", "b"}, []string{"b", "c", "a"}, []string{}},
		{"one missing", []string{"a", "b"}, []string{"a"}, []string{"b"}},
		{"nothing available", []string{"a"}, nil, []string{"a"}},
		{"nothing required", nil, []string{"a"}, []string{}},
		{"duplicate requirement", []string{"a", "a"}, nil, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingExtensions(tt.required, tt.available))
		})
	}
}

func TestRequiredInstanceExtensions(t *testing.T) {
	window := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}

	assert.Equal(t, window, RequiredInstanceExtensions(window, false))

	withDebug := RequiredInstanceExtensions(window, true)
	assert.Equal(t, []string{
		"VK_KHR_surface", "VK_KHR_xcb_surface",
		vk.ExtDebugReportExtensionName,
	}, withDebug)
	assert.NotContains(t, withDebug, vk.ExtDebugUtilsExtensionName)

	// The caller's slice is left alone.
	assert.Len(t, window, 2)
}

func TestRequiredInstanceExtensionsDropsDuplicates(t *testing.T) {
	got := RequiredInstanceExtensions([]string{"VK_KHR_surface", vk.ExtDebugReportExtensionName}, true)
	assert.Equal(t, []string{"VK_KHR_surface", vk.ExtDebugReportExtensionName}, got)
}

func TestSurfaceDebugMessage(t *testing.T) {
	assert.False(t, SurfaceDebugMessage(DebugSeverityVerbose))
	assert.False(t, SurfaceDebugMessage(DebugSeverityInfo))
	assert.True(t, SurfaceDebugMessage(DebugSeverityWarning))
	assert.True(t, SurfaceDebugMessage(DebugSeverityError))
}

func TestDebugReportSeverity(t *testing.T) {
	tests := []struct {
		flags vk.DebugReportFlagBits
		want  DebugSeverity
	}{
		{vk.DebugReportDebugBit, DebugSeverityVerbose},
		{vk.DebugReportInformationBit, DebugSeverityInfo},
		{vk.DebugReportWarningBit, DebugSeverityWarning},
		{vk.DebugReportPerformanceWarningBit, DebugSeverityWarning},
		{vk.DebugReportErrorBit, DebugSeverityError},
		{vk.DebugReportErrorBit | vk.DebugReportWarningBit, DebugSeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, debugReportSeverity(vk.DebugReportFlags(tt.flags)))
		})
	}
}

func TestResolveProc(t *testing.T) {
	procs := NewProcTable()
	called := false
	procs.Register(ProcDestroyDebugMessenger, DestroyDebugMessengerFunc(func(InstanceHandle, DebugMessengerHandle) {
		called = true
	}))

	destroy, ok := Resolve[DestroyDebugMessengerFunc](procs, ProcDestroyDebugMessenger).Get()
	require.True(t, ok)
	destroy(1, 2)
	assert.True(t, called)

	absent := Resolve[CreateDebugMessengerFunc](procs, ProcCreateDebugMessenger)
	assert.False(t, absent.Present())
	assert.Equal(t, ProcCreateDebugMessenger+" (absent)", absent.String())
}

func TestResolveProcWrongTypeIsAbsent(t *testing.T) {
	procs := NewProcTable()
	procs.Register(ProcCreateDebugMessenger, func() {})

	assert.False(t, Resolve[CreateDebugMessengerFunc](procs, ProcCreateDebugMessenger).Present())
	assert.False(t, Resolve[CreateDebugMessengerFunc](nil, ProcCreateDebugMessenger).Present())
}

func TestHandleTable(t *testing.T) {
	table := newHandleTable[uint64]()

	a := table.put(42)
	b := table.put(7)
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
	assert.Equal(t, a, table.put(42), "re-registering returns the same handle")

	obj, ok := table.get(b)
	require.True(t, ok)
	assert.Equal(t, uint64(7), obj)

	table.drop(b)
	_, ok = table.get(b)
	assert.False(t, ok)
}

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success, false))
	assert.Equal(t, "VK_ERROR_LAYER_NOT_PRESENT", VulkanResultString(vk.ErrorLayerNotPresent, false))
	assert.Contains(t, VulkanResultString(vk.ErrorExtensionNotPresent, true), "not supported")
	assert.NoError(t, resultError("vkCreateDevice", vk.Success))
	assert.EqualError(t, resultError("vkCreateDevice", vk.ErrorDeviceLost),
		"vkCreateDevice failed with VK_ERROR_DEVICE_LOST The logical or physical device has been lost.")
}

func TestVulkanSafeStrings(t *testing.T) {
	in := []string{"a", "b\x00", ""}
	out := VulkanSafeStrings(in)

	assert.Equal(t, []string{"a\x00", "b\x00", "\x00"}, out)
	assert.Equal(t, "a", in[0])
}
