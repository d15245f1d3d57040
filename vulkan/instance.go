package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// SurfaceSource creates a presentation surface for an instance. core.Window
// implements it.
type SurfaceSource interface {
	CreateWindowSurface(instance interface{}) (uintptr, error)
}

// Instance wraps a VkInstance and, when validation is on, its debug report
// callback.
type Instance struct {
	handle        vk.Instance
	debugCallback vk.DebugReportCallback
	validation    bool
}

// NewInstance creates an instance with the given extensions enabled. With
// validation, the Khronos validation layer and a debug report callback that
// forwards to the logger are added.
func NewInstance(appName string, extensions []string, validation bool) (*Instance, error) {
	if validation && !validationSupported() {
		logger.Warning("validation requested but ", ValidationLayer, " is not installed")
		validation = false
	}

	extensions = cstrs(extensions)
	var layers []string
	if validation {
		extensions = append(extensions, cstr(vk.ExtDebugReportExtensionName))
		layers = append(layers, cstr(ValidationLayer))
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cstr(appName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        cstr("vkrender"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.ApiVersion10,
	}
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var handle vk.Instance
	if err := newError("create instance", vk.CreateInstance(&createInfo, nil, &handle)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, nil)
		return nil, fmt.Errorf("init instance: %w", err)
	}

	inst := &Instance{handle: handle, validation: validation}
	if validation {
		if err := inst.setupDebugCallback(); err != nil {
			inst.Destroy()
			return nil, err
		}
	}
	logger.Infof("vulkan instance created (validation=%v)", validation)
	return inst, nil
}

func (i *Instance) setupDebugCallback() error {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 {
				logger.Errorf("[%s] %s (code=%d)", layerPrefix, message, messageCode)
			} else {
				logger.Warningf("[%s] %s (code=%d)", layerPrefix, message, messageCode)
			}
			return vk.False
		},
	}
	return newError("create debug report callback",
		vk.CreateDebugReportCallback(i.handle, &createInfo, nil, &i.debugCallback))
}

func validationSupported() bool {
	var count uint32
	if vk.EnumerateInstanceLayerProperties(&count, nil) != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if vk.EnumerateInstanceLayerProperties(&count, layers) != vk.Success {
		return false
	}
	for _, layer := range layers {
		layer.Deref()
		if vk.ToString(layer.LayerName[:]) == ValidationLayer {
			return true
		}
	}
	return false
}

// Handle returns the raw VkInstance.
func (i *Instance) Handle() vk.Instance { return i.handle }

// Validation reports whether the validation layer is active.
func (i *Instance) Validation() bool { return i.validation }

// CreateSurface creates a presentation surface for src.
func (i *Instance) CreateSurface(src SurfaceSource) (vk.Surface, error) {
	ptr, err := src.CreateWindowSurface(i.handle)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(ptr), nil
}

// DestroySurface releases a surface created by CreateSurface.
func (i *Instance) DestroySurface(surface vk.Surface) {
	if surface != vk.NullSurface {
		vk.DestroySurface(i.handle, surface, nil)
	}
}

// PhysicalDevices enumerates the GPUs visible to the instance.
func (i *Instance) PhysicalDevices() ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := newError("enumerate physical devices", vk.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, count)
	if count == 0 {
		return devices, nil
	}
	if err := newError("enumerate physical devices", vk.EnumeratePhysicalDevices(i.handle, &count, devices)); err != nil {
		return nil, err
	}
	return devices, nil
}

func (i *Instance) Destroy() {
	if i.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugCallback, nil)
		i.debugCallback = vk.NullDebugReportCallback
	}
	if i.handle != nil {
		vk.DestroyInstance(i.handle, nil)
		i.handle = nil
	}
}
