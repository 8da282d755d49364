//go:build !release

package vulkan

// ValidationEnabled turns on the Khronos validation layer and the debug
// messenger. Build with -tags release to disable it.
const ValidationEnabled = true
