package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// requiredInstanceExtensions matches component design §4.1: the four
// capability-query extensions needed before a device can be selected and
// before external memory/semaphore/fence handles can be imported.
var requiredInstanceExtensions = []string{
	"VK_KHR_external_memory_capabilities",
	"VK_KHR_external_semaphore_capabilities",
	"VK_KHR_external_fence_capabilities",
	"VK_KHR_get_physical_device_properties2",
}

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// Instance is the Go rendering of component design §4.1: a loaded Vulkan
// loader plus a created VkInstance, optionally with a VK_EXT_debug_report
// callback installed; no debug-utils messenger is created.
type Instance struct {
	Handle         vk.Instance
	Allocator      *vk.AllocationCallbacks
	ValidationOn   bool
	debugMessenger vk.DebugReportCallback
}

// NewInstance loads the Vulkan loader (vk.Init, no windowing-system proc
// loader involved: this backend has no window, see SPEC_FULL.md REDESIGN
// FLAGS), verifies every required instance extension is present, and
// creates the instance. validation enables VK_LAYER_KHRONOS_validation and
// a debug-report callback when the layer is actually available.
func NewInstance(appName string, validation bool) (*Instance, error) {
	if err := vk.Init(); err != nil {
		return nil, core.Wrap(core.ErrLoad, err)
	}

	var extCount uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &extCount, nil); res != vk.Success {
		return nil, core.Wrap(core.ErrInstanceExtensions, vkResultError(res))
	}
	available := make([]vk.ExtensionProperties, extCount)
	if res := vk.EnumerateInstanceExtensionProperties("", &extCount, available); res != vk.Success {
		return nil, core.Wrap(core.ErrInstanceExtensions, vkResultError(res))
	}
	have := make(map[string]bool, len(available))
	for i := range available {
		available[i].Deref()
		have[vk.ToString(available[i].ExtensionName[:])] = true
	}

	enabledExts := make([]string, 0, len(requiredInstanceExtensions)+1)
	for _, ext := range requiredInstanceExtensions {
		if !have[ext] {
			return nil, core.MissingExtension(core.ErrMissingInstanceExtension, ext)
		}
		enabledExts = append(enabledExts, ext)
	}

	layers := []string{}
	validationEnabled := false
	if validation {
		var layerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
			return nil, core.Wrap(core.ErrInstanceLayers, vkResultError(res))
		}
		layerProps := make([]vk.LayerProperties, layerCount)
		if res := vk.EnumerateInstanceLayerProperties(&layerCount, layerProps); res != vk.Success {
			return nil, core.Wrap(core.ErrInstanceLayers, vkResultError(res))
		}
		for i := range layerProps {
			layerProps[i].Deref()
			if vk.ToString(layerProps[i].LayerName[:]) == validationLayerName {
				layers = append(layers, validationLayerName)
				enabledExts = append(enabledExts, "VK_EXT_debug_report")
				validationEnabled = true
				break
			}
		}
		if !validationEnabled {
			core.LogWarn("vulkan: validation requested but %s is not installed; continuing without it", validationLayerName)
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: appName + "\x00",
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:   "vkgfx\x00",
		EngineVersion: vk.MakeVersion(1, 0, 0),
		ApiVersion:    vk.ApiVersion12,
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(enabledExts)),
		PpEnabledExtensionNames: vk.SafeStrings(enabledExts),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     vk.SafeStrings(layers),
	}

	var handle vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateInstance, vkResultError(res))
	}
	vk.InitInstance(handle)

	inst := &Instance{Handle: handle, ValidationOn: validationEnabled}
	if validationEnabled {
		if err := inst.installDebugMessenger(); err != nil {
			core.LogWarn("vulkan: could not install debug-report messenger: %v", err)
		}
	}
	return inst, nil
}

func (i *Instance) installDebugMessenger() error {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportCallback,
	}
	var messenger vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(i.Handle, &createInfo, nil, &messenger); res != vk.Success {
		return core.Wrap(core.ErrMessenger, vkResultError(res))
	}
	i.debugMessenger = messenger
	return nil
}

func debugReportCallback(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	pLayerPrefix string,
	pMessage string,
	pUserData unsafe.Pointer,
) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("vulkan[%s]: %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("vulkan[%s]: %s", pLayerPrefix, pMessage)
	default:
		core.LogDebug("vulkan[%s]: %s", pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}

// Destroy tears down the debug messenger (if any) and the instance itself.
// Must be the last Vulkan teardown call (component design §4.12: leaf-first,
// and the instance is the root).
func (i *Instance) Destroy() {
	if i.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.Handle, i.debugMessenger, nil)
	}
	vk.DestroyInstance(i.Handle, nil)
}
