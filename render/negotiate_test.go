package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := SurfaceFormat{Format: FormatB8G8R8A8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}
	unorm := SurfaceFormat{Format: FormatB8G8R8A8Unorm}

	f, ok := chooseSurfaceFormat([]SurfaceFormat{unorm, srgb})
	assert.True(t, ok)
	assert.Equal(t, srgb, f)

	f, ok = chooseSurfaceFormat([]SurfaceFormat{unorm})
	assert.True(t, ok)
	assert.Equal(t, unorm, f)

	_, ok = chooseSurfaceFormat(nil)
	assert.False(t, ok)
}

func TestChoosePresentMode(t *testing.T) {
	all := []PresentMode{PresentModeFifo, PresentModeImmediate, PresentModeMailbox}

	assert.Equal(t, PresentModeFifo, choosePresentMode(all, true))
	assert.Equal(t, PresentModeMailbox, choosePresentMode(all, false))
	assert.Equal(t, PresentModeImmediate, choosePresentMode([]PresentMode{PresentModeFifo, PresentModeImmediate}, false))
	assert.Equal(t, PresentModeFifo, choosePresentMode([]PresentMode{PresentModeFifo}, false))
}

func TestChooseExtent(t *testing.T) {
	caps := SurfaceCapabilities{
		CurrentExtent:  Extent{Width: 1024, Height: 768},
		MinImageExtent: Extent{Width: 16, Height: 16},
		MaxImageExtent: Extent{Width: 2048, Height: 2048},
	}
	assert.Equal(t, Extent{Width: 1024, Height: 768}, chooseExtent(caps, Extent{Width: 10, Height: 10}))

	caps.CurrentExtent = Extent{Width: ExtentUndefined, Height: ExtentUndefined}
	assert.Equal(t, Extent{Width: 800, Height: 600}, chooseExtent(caps, Extent{Width: 800, Height: 600}))
	assert.Equal(t, Extent{Width: 16, Height: 2048}, chooseExtent(caps, Extent{Width: 4, Height: 9000}))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(3), chooseImageCount(SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 3}))
	assert.Equal(t, uint32(5), chooseImageCount(SurfaceCapabilities{MinImageCount: 4}))
}

func TestChooseDepthFormat(t *testing.T) {
	device := newFakeDevice(newFakeSurface(1, 1))
	device.depthSupported = map[Format]bool{FormatD32SfloatS8Uint: true, FormatD24UnormS8Uint: true}

	f, ok := chooseDepthFormat(device, DefaultConfig().DepthFormats)
	assert.True(t, ok)
	assert.Equal(t, FormatD32SfloatS8Uint, f)

	_, ok = chooseDepthFormat(device, []Format{FormatD32Sfloat})
	assert.False(t, ok)
}
