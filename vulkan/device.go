package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

// ErrNoSuitableGPU is returned when no device can render to the surface.
var ErrNoSuitableGPU = errors.New("failed to find a suitable GPU")

// Device is a logical device bound to one surface. It implements render.Device
// with a single command pool on the graphics queue family.
type Device struct {
	instance *Instance
	surface  vk.Surface

	physical    vk.PhysicalDevice
	properties  vk.PhysicalDeviceProperties
	memoryProps vk.PhysicalDeviceMemoryProperties

	handle         vk.Device
	graphicsFamily uint32
	presentFamily  uint32
	graphicsQueue  vk.Queue
	presentQueue   vk.Queue
	commandPool    vk.CommandPool

	// currentTransform is refreshed by SurfaceCapabilities and used as the
	// swapchain pre-transform.
	currentTransform vk.SurfaceTransformFlagBits
}

var _ render.Device = (*Device)(nil)

type queueFamilies struct {
	graphics, present       uint32
	hasGraphics, hasPresent bool
}

func (q queueFamilies) complete() bool { return q.hasGraphics && q.hasPresent }

func findQueueFamilies(pd vk.PhysicalDevice, surface vk.Surface) queueFamilies {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	var q queueFamilies
	for i, p := range props {
		p.Deref()
		if !q.hasGraphics && p.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			q.graphics, q.hasGraphics = uint32(i), true
		}
		if !q.hasPresent && surface != vk.NullSurface {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &supported)
			if supported.B() {
				q.present, q.hasPresent = uint32(i), true
			}
		}
		if q.complete() {
			break
		}
	}
	return q
}

func supportsSwapchainExtension(pd vk.PhysicalDevice) bool {
	var count uint32
	if vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil) != vk.Success {
		return false
	}
	exts := make([]vk.ExtensionProperties, count)
	if vk.EnumerateDeviceExtensionProperties(pd, "", &count, exts) != vk.Success {
		return false
	}
	want := vk.KhrSwapchainExtensionName
	for _, ext := range exts {
		ext.Deref()
		if cstr(vk.ToString(ext.ExtensionName[:])) == cstr(want) {
			return true
		}
	}
	return false
}

func surfaceFormatCount(pd vk.PhysicalDevice, surface vk.Surface) (formats, modes uint32) {
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formats, nil)
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &modes, nil)
	return formats, modes
}

// rateDevice returns 0 for unusable devices. Discrete GPUs are preferred and
// larger image limits break ties.
func rateDevice(pd vk.PhysicalDevice, surface vk.Surface) uint32 {
	if !findQueueFamilies(pd, surface).complete() || !supportsSwapchainExtension(pd) {
		return 0
	}
	if surface != vk.NullSurface {
		if formats, modes := surfaceFormatCount(pd, surface); formats == 0 || modes == 0 {
			return 0
		}
	}
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &props)
	props.Deref()
	props.Limits.Deref()

	score := props.Limits.MaxImageDimension2D
	if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
		score += 1000
	}
	return score
}

// NewDevice picks the best GPU for surface and creates a logical device with
// a graphics queue, a present queue and a resettable command pool.
func NewDevice(instance *Instance, surface vk.Surface) (*Device, error) {
	candidates, err := instance.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("failed to find GPUs with Vulkan support")
	}

	var best vk.PhysicalDevice
	var bestScore uint32
	for _, pd := range candidates {
		if score := rateDevice(pd, surface); score > bestScore {
			best, bestScore = pd, score
		}
	}
	if best == nil {
		return nil, ErrNoSuitableGPU
	}

	d := &Device{instance: instance, surface: surface, physical: best}
	vk.GetPhysicalDeviceProperties(best, &d.properties)
	d.properties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(best, &d.memoryProps)
	d.memoryProps.Deref()

	q := findQueueFamilies(best, surface)
	d.graphicsFamily, d.presentFamily = q.graphics, q.present
	if err := d.createLogicalDevice(); err != nil {
		return nil, err
	}
	logger.Noticef("using GPU %s (%s, api %s)", d.Name(), deviceTypeName(d.properties.DeviceType),
		versionString(d.properties.ApiVersion))
	return d, nil
}

func (d *Device) createLogicalDevice() error {
	families := []uint32{d.graphicsFamily}
	if d.graphicsFamily != d.presentFamily {
		families = append(families, d.presentFamily)
	}
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensions := []string{cstr(vk.KhrSwapchainExtensionName)}
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			FillModeNonSolid: vk.True,
		}},
	}
	if d.instance.Validation() {
		createInfo.EnabledLayerCount = 1
		createInfo.PpEnabledLayerNames = []string{cstr(ValidationLayer)}
	}

	var handle vk.Device
	if err := newError("create logical device", vk.CreateDevice(d.physical, &createInfo, nil, &handle)); err != nil {
		return err
	}
	d.handle = handle

	var gq, pq vk.Queue
	vk.GetDeviceQueue(handle, d.graphicsFamily, 0, &gq)
	vk.GetDeviceQueue(handle, d.presentFamily, 0, &pq)
	d.graphicsQueue, d.presentQueue = gq, pq

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.graphicsFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := newError("create command pool", vk.CreateCommandPool(handle, &poolInfo, nil, &pool)); err != nil {
		vk.DestroyDevice(handle, nil)
		d.handle = nil
		return err
	}
	d.commandPool = pool
	return nil
}

// Handle returns the raw VkDevice.
func (d *Device) Handle() vk.Device { return d.handle }

// Surface returns the presentation surface the device was created for.
func (d *Device) Surface() vk.Surface { return d.surface }

// Name returns the GPU name.
func (d *Device) Name() string {
	return vk.ToString(d.properties.DeviceName[:])
}

func (d *Device) SurfaceCapabilities() (render.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(d.physical, d.surface, &caps)
	if err := newError("query surface capabilities", res); err != nil {
		return render.SurfaceCapabilities{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	d.currentTransform = caps.CurrentTransform

	out := render.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  toExtent(caps.CurrentExtent),
		MinImageExtent: toExtent(caps.MinImageExtent),
		MaxImageExtent: toExtent(caps.MaxImageExtent),
	}

	var count uint32
	vk.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &count, nil)
	formats := make([]vk.SurfaceFormat, count)
	if err := newError("query surface formats", vk.GetPhysicalDeviceSurfaceFormats(d.physical, d.surface, &count, formats)); err != nil {
		return render.SurfaceCapabilities{}, err
	}
	for _, f := range formats {
		f.Deref()
		out.Formats = append(out.Formats, render.SurfaceFormat{
			Format:     render.Format(f.Format),
			ColorSpace: render.ColorSpace(f.ColorSpace),
		})
	}

	vk.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &count, nil)
	modes := make([]vk.PresentMode, count)
	if err := newError("query present modes", vk.GetPhysicalDeviceSurfacePresentModes(d.physical, d.surface, &count, modes)); err != nil {
		return render.SurfaceCapabilities{}, err
	}
	for _, m := range modes {
		out.PresentModes = append(out.PresentModes, render.PresentMode(m))
	}
	return out, nil
}

func (d *Device) SupportsDepthFormat(f render.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(d.physical, vk.Format(f), &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0
}

func (d *Device) findMemoryType(typeFilter uint32, properties render.MemoryProperty) (uint32, error) {
	want := vk.MemoryPropertyFlags(properties)
	for i := uint32(0); i < d.memoryProps.MemoryTypeCount; i++ {
		memType := d.memoryProps.MemoryTypes[i]
		memType.Deref()
		if typeFilter&(1<<i) != 0 && memType.PropertyFlags&want == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no memory type for properties %#x", render.ErrResourceCreationFailed, uint32(properties))
}

func (d *Device) WaitIdle() error {
	return newError("wait idle", vk.DeviceWaitIdle(d.handle))
}

// Destroy releases the command pool, the logical device and the surface.
func (d *Device) Destroy() {
	if d.handle == nil {
		return
	}
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.handle, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	vk.DestroyDevice(d.handle, nil)
	d.handle = nil
	d.instance.DestroySurface(d.surface)
	d.surface = vk.NullSurface
}

func toExtent(e vk.Extent2D) render.Extent {
	return render.Extent{Width: e.Width, Height: e.Height}
}

func toVkExtent(e render.Extent) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "Integrated GPU"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "Discrete GPU"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "Virtual GPU"
	case vk.PhysicalDeviceTypeCpu:
		return "CPU"
	default:
		return "Unknown"
	}
}

// GPUInfo describes one physical device as seen by the instance.
type GPUInfo struct {
	Name       string
	Type       string
	APIVersion string
	Driver     uint32
	Score      uint32
}

// Suitable reports whether the device can drive the surface it was rated for.
func (g GPUInfo) Suitable() bool { return g.Score > 0 }

// ListGPUs describes every physical device, rated against surface. Pass
// vk.NullSurface to skip the presentation checks.
func ListGPUs(instance *Instance, surface vk.Surface) ([]GPUInfo, error) {
	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	infos := make([]GPUInfo, 0, len(devices))
	for _, pd := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()
		score := uint32(0)
		if surface != vk.NullSurface {
			score = rateDevice(pd, surface)
		} else if supportsSwapchainExtension(pd) {
			score = 1
		}
		infos = append(infos, GPUInfo{
			Name:       vk.ToString(props.DeviceName[:]),
			Type:       deviceTypeName(props.DeviceType),
			APIVersion: versionString(props.ApiVersion),
			Driver:     props.DriverVersion,
			Score:      score,
		})
	}
	return infos, nil
}
