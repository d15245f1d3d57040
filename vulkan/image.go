package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

// image is a device-created 2D image bound to its own allocation. Swapchain
// images are plain vk.Image values and own no memory.
type image struct {
	handle vk.Image
	memory vk.DeviceMemory
}

func (d *Device) CreateImage(info render.ImageInfo) (render.Image, error) {
	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	img := &image{}
	if err := newError("create image", vk.CreateImage(d.handle, &createInfo, nil, &img.handle)); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.handle, img.handle, &req)
	req.Deref()
	memory, err := d.allocate(req, info.Properties)
	if err != nil {
		vk.DestroyImage(d.handle, img.handle, nil)
		return nil, err
	}
	img.memory = memory
	if err := newError("bind image memory", vk.BindImageMemory(d.handle, img.handle, memory, 0)); err != nil {
		vk.DestroyImage(d.handle, img.handle, nil)
		vk.FreeMemory(d.handle, memory, nil)
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return img, nil
}

func (d *Device) DestroyImage(i render.Image) {
	img, ok := i.(*image)
	if !ok || img == nil {
		return
	}
	if img.handle != vk.NullImage {
		vk.DestroyImage(d.handle, img.handle, nil)
		img.handle = vk.NullImage
	}
	if img.memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.handle, img.memory, nil)
		img.memory = vk.NullDeviceMemory
	}
}

// allocate finds a memory type that satisfies req and properties and allocates it.
func (d *Device) allocate(req vk.MemoryRequirements, properties render.MemoryProperty) (vk.DeviceMemory, error) {
	typeIndex, err := d.findMemoryType(req.MemoryTypeBits, properties)
	if err != nil {
		return vk.NullDeviceMemory, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}
	var memory vk.DeviceMemory
	if err := newError("allocate memory", vk.AllocateMemory(d.handle, &allocInfo, nil, &memory)); err != nil {
		return vk.NullDeviceMemory, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return memory, nil
}

func (d *Device) CreateImageView(i render.Image, format render.Format, aspect render.Aspect) (render.ImageView, error) {
	var handle vk.Image
	switch img := i.(type) {
	case vk.Image:
		handle = img
	case *image:
		handle = img.handle
	default:
		panic(fmt.Sprintf("vulkan: unexpected image type %T", i))
	}
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := newError("create image view", vk.CreateImageView(d.handle, &createInfo, nil, &view)); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return view, nil
}

func (d *Device) DestroyImageView(v render.ImageView) {
	if view, ok := v.(vk.ImageView); ok && view != vk.NullImageView {
		vk.DestroyImageView(d.handle, view, nil)
	}
}
