package core

import "fmt"

// Kind enumerates the abstract failure categories of the Vulkan rendering
// core, one per named variant in the component design's error taxonomy.
// Construction failures are fatal to their caller; sync-file and parameter
// validation failures are recoverable; format mismatches are not errors at
// all, they panic at the type-assertion site (see renderer.AsImage).
type Kind int

const (
	ErrGbm Kind = iota
	ErrLoad
	ErrInstanceExtensions
	ErrInstanceLayers
	ErrDeviceExtensions
	ErrCreateDevice
	ErrCreateSemaphore
	ErrCreateFence
	ErrCreateBuffer
	ErrCreateShaderModule
	ErrMissingInstanceExtension
	ErrAllocateCommandPool
	ErrAllocateCommandBuffer
	ErrNoGraphicsQueue
	ErrMissingDeviceExtension
	ErrCreateInstance
	ErrMessenger
	ErrFstat
	ErrEnumeratePhysicalDevices
	ErrNoDeviceFound
	ErrLoadImageProperties
	ErrXRGB8888
	ErrSyncobjImport
	ErrBeginCommandBuffer
	ErrEndCommandBuffer
	ErrSubmit
	ErrCreateSampler
	ErrCreatePipelineLayout
	ErrCreateDescriptorSetLayout
	ErrCreatePipeline
	ErrFormatNotSupported
	ErrModifierNotSupported
	ErrModifierUseNotSupported
	ErrNonPositiveImageSize
	ErrImageTooLarge
	ErrGetDeviceProperties
	ErrBadPlaneCount
	ErrDisjointNotSupported
	ErrCreateImage
	ErrCreateImageView
	ErrMemoryFdProperties
	ErrMemoryType
	ErrDupfd
	ErrAllocateMemory
	ErrAllocateMemory2
	ErrBindImageMemory
	ErrShmNotSupported
	ErrBindBufferMemory
	ErrMapMemory
	ErrFlushMemory
	ErrIoctlExportSyncFile
	ErrImportSyncFile
	ErrIoctlImportSyncFile
	ErrExportSyncFile
	ErrFetchRenderNode
	ErrNoRenderNode
	ErrShmOverflow
	ErrInvalidStride
	ErrInvalidBufferSize
	ErrInvalidShmParameters
)

var kindText = map[Kind]string{
	ErrGbm:                       "could not create a GBM device",
	ErrLoad:                      "could not load libvulkan.so",
	ErrInstanceExtensions:        "could not list instance extensions",
	ErrInstanceLayers:            "could not list instance layers",
	ErrDeviceExtensions:          "could not list device extensions",
	ErrCreateDevice:              "could not create the device",
	ErrCreateSemaphore:           "could not create a semaphore",
	ErrCreateFence:               "could not create a fence",
	ErrCreateBuffer:              "could not create the buffer",
	ErrCreateShaderModule:        "could not create a shader module",
	ErrMissingInstanceExtension:  "missing required instance extension",
	ErrAllocateCommandPool:       "could not allocate a command pool",
	ErrAllocateCommandBuffer:     "could not allocate a command buffer",
	ErrNoGraphicsQueue:           "device does not have a graphics queue",
	ErrMissingDeviceExtension:    "missing required device extension",
	ErrCreateInstance:            "could not create an instance",
	ErrMessenger:                 "could not create a debug-utils messenger",
	ErrFstat:                     "could not fstat the DRM fd",
	ErrEnumeratePhysicalDevices:  "could not enumerate the physical devices",
	ErrNoDeviceFound:             "could not find a vulkan device matching the render node",
	ErrLoadImageProperties:       "could not load image properties",
	ErrXRGB8888:                  "device does not support rendering and texturing from XRGB8888",
	ErrSyncobjImport:             "device does not support syncobj import",
	ErrBeginCommandBuffer:        "could not start a command buffer",
	ErrEndCommandBuffer:          "could not end a command buffer",
	ErrSubmit:                    "could not submit a command buffer",
	ErrCreateSampler:             "could not create a sampler",
	ErrCreatePipelineLayout:      "could not create a pipeline layout",
	ErrCreateDescriptorSetLayout: "could not create a descriptor set layout",
	ErrCreatePipeline:            "could not create a pipeline",
	ErrFormatNotSupported:        "the format is not supported",
	ErrModifierNotSupported:      "the modifier is not supported",
	ErrModifierUseNotSupported:   "the modifier does not support this use-case",
	ErrNonPositiveImageSize:      "the image has a non-positive size",
	ErrImageTooLarge:             "the image is too large",
	ErrGetDeviceProperties:       "could not retrieve device properties",
	ErrBadPlaneCount:             "the dmabuf has an incorrect number of planes",
	ErrDisjointNotSupported:      "the dmabuf is disjoint but the modifier does not support disjoint buffers",
	ErrCreateImage:               "could not create the image",
	ErrCreateImageView:           "could not create an image view",
	ErrMemoryFdProperties:        "could not query the memory fd properties",
	ErrMemoryType:                "there is no matching memory type",
	ErrDupfd:                     "could not duplicate the DRM fd",
	ErrAllocateMemory:            "could not allocate memory",
	ErrAllocateMemory2:           "could not allocate memory",
	ErrBindImageMemory:           "could not bind memory to the image",
	ErrShmNotSupported:           "the format does not support shared memory images",
	ErrBindBufferMemory:          "could not bind memory to the buffer",
	ErrMapMemory:                 "could not map the memory",
	ErrFlushMemory:               "could not flush modified memory",
	ErrIoctlExportSyncFile:       "could not export a sync file from a dmabuf",
	ErrImportSyncFile:            "could not import a sync file into a semaphore",
	ErrIoctlImportSyncFile:       "could not import a sync file into a dmabuf",
	ErrExportSyncFile:            "could not export a sync file from a semaphore",
	ErrFetchRenderNode:           "could not fetch the render node of the device",
	ErrNoRenderNode:              "device has no render node",
	ErrShmOverflow:               "overflow while calculating shm buffer size",
	ErrInvalidStride:             "shm stride does not match format or width",
	ErrInvalidBufferSize:         "shm stride and height do not match buffer size",
	ErrInvalidShmParameters:      "the shm parameters are invalid",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error"
}

// GfxError is the Go rendering of the source taxonomy's VulkanError enum:
// one Kind per named failure, an optional wrapped cause, and optional
// named fields for the kinds that carry structured data (ErrNoDeviceFound,
// the two missing-extension kinds, and ErrInvalidShmParameters).
type GfxError struct {
	Kind  Kind
	Cause error

	// Populated only for ErrNoDeviceFound.
	DevT uint64
	// Populated only for ErrMissingInstanceExtension / ErrMissingDeviceExtension.
	Extension string
	// Populated only for ErrInvalidShmParameters.
	X, Y, Width, Height, Stride int32
}

func (e *GfxError) Error() string {
	switch e.Kind {
	case ErrNoDeviceFound:
		return fmt.Sprintf("%s: dev_t=%d", e.Kind, e.DevT)
	case ErrMissingInstanceExtension, ErrMissingDeviceExtension:
		return fmt.Sprintf("%s: %s", e.Kind, e.Extension)
	case ErrInvalidShmParameters:
		return fmt.Sprintf("%s: x=%d y=%d width=%d height=%d stride=%d", e.Kind, e.X, e.Y, e.Width, e.Height, e.Stride)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *GfxError) Unwrap() error { return e.Cause }

// Wrap builds a GfxError of the given kind around a lower-level cause,
// e.g. a vk.Result mapped to an error by vkResultError
// (engine/renderer/vulkan/vkresult.go).
func Wrap(kind Kind, cause error) error {
	return &GfxError{Kind: kind, Cause: cause}
}

// New builds a GfxError with no wrapped cause.
func New(kind Kind) error {
	return &GfxError{Kind: kind}
}

// NoDeviceFound builds the one taxonomy member that carries a dev_t.
func NoDeviceFound(devT uint64) error {
	return &GfxError{Kind: ErrNoDeviceFound, DevT: devT}
}

// MissingExtension builds either the instance- or device-extension variant
// depending on kind (must be ErrMissingInstanceExtension or
// ErrMissingDeviceExtension).
func MissingExtension(kind Kind, name string) error {
	return &GfxError{Kind: kind, Extension: name}
}

// InvalidShmParameters builds the structured readback-validation error.
func InvalidShmParameters(x, y, width, height, stride int32) error {
	return &GfxError{Kind: ErrInvalidShmParameters, X: x, Y: y, Width: width, Height: height, Stride: stride}
}
