//go:build release

package vulkan

const ValidationEnabled = false
