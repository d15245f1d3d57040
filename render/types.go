package render

import (
	"fmt"
	"math"
	"strings"
)

// Extent is a drawable size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// ExtentUndefined is reported by surfaces that let the swapchain pick its own size.
const ExtentUndefined = math.MaxUint32

// IsZero reports whether either dimension is zero, as for a minimized window.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// AspectRatio returns width/height, or 0 for a zero-height extent.
func (e Extent) AspectRatio() float32 {
	if e.Height == 0 {
		return 0
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Format identifies a pixel or vertex attribute format. Values match VkFormat.
type Format int32

const (
	FormatUndefined       Format = 0
	FormatB8G8R8A8Unorm   Format = 44
	FormatB8G8R8A8Srgb    Format = 50
	FormatR32G32Sfloat    Format = 103
	FormatR32G32B32Sfloat Format = 106
	FormatD32Sfloat       Format = 126
	FormatD24UnormS8Uint  Format = 129
	FormatD32SfloatS8Uint Format = 130
)

var formatNames = map[Format]string{
	FormatUndefined:       "UNDEFINED",
	FormatB8G8R8A8Unorm:   "B8G8R8A8_UNORM",
	FormatB8G8R8A8Srgb:    "B8G8R8A8_SRGB",
	FormatR32G32Sfloat:    "R32G32_SFLOAT",
	FormatR32G32B32Sfloat: "R32G32B32_SFLOAT",
	FormatD32Sfloat:       "D32_SFLOAT",
	FormatD24UnormS8Uint:  "D24_UNORM_S8_UINT",
	FormatD32SfloatS8Uint: "D32_SFLOAT_S8_UINT",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FORMAT(%d)", int32(f))
}

// HasStencil reports whether a depth format carries a stencil component.
func (f Format) HasStencil() bool {
	return f == FormatD24UnormS8Uint || f == FormatD32SfloatS8Uint
}

// ParseFormat looks a format up by its name as returned by String.
func ParseFormat(name string) (Format, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == want {
			return f, nil
		}
	}
	return FormatUndefined, fmt.Errorf("render: unknown format %q", name)
}

// ColorSpace values match VkColorSpaceKHR.
type ColorSpace int32

const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat is a color format and color space pair supported by a surface.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode values match VkPresentModeKHR.
type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	}
	return fmt.Sprintf("present-mode(%d)", int32(m))
}

// SurfaceCapabilities is what the presentation backend reports about a surface.
type SurfaceCapabilities struct {
	MinImageCount uint32
	// MaxImageCount of 0 means there is no upper limit.
	MaxImageCount  uint32
	CurrentExtent  Extent
	MinImageExtent Extent
	MaxImageExtent Extent
	Formats        []SurfaceFormat
	PresentModes   []PresentMode
}

// SwapchainFormat is the pair of attachment formats a FrameChain renders into.
type SwapchainFormat struct {
	Color Format
	Depth Format
}

func (f SwapchainFormat) String() string {
	return fmt.Sprintf("color=%s depth=%s", f.Color, f.Depth)
}

// Status is the non-fatal outcome of acquiring or presenting an image.
type Status int

const (
	StatusOK Status = iota
	// StatusSuboptimal means the image is usable but the surface no longer matches exactly.
	StatusSuboptimal
	// StatusStale means the surface is out of date and the chain must be rebuilt.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusStale:
		return "stale"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ClearValues holds the clear color and depth/stencil values of a render pass.
type ClearValues struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}
