package core

import (
	"errors"
)

var (
	ErrWindowCreation             = errors.New("failed to create window")
	ErrValidationLayerUnsupported = errors.New("requested validation layers are not supported")
	ErrInstanceCreation           = errors.New("failed to create Vulkan instance")
	ErrDebugMessenger             = errors.New("failed to set up Vulkan debug messenger")
	ErrExtensionNotPresent        = errors.New("extension not present")
	ErrSurfaceCreation            = errors.New("failed to create window surface")
	ErrNoGPUs                     = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableGPU              = errors.New("failed to find a suitable GPU")
	ErrLogicalDevice              = errors.New("failed to create logical device")
)
