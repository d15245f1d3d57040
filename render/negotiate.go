package render

// chooseSurfaceFormat prefers 8-bit sRGB BGRA in the sRGB non-linear color
// space and otherwise takes the first format the surface offers.
func chooseSurfaceFormat(available []SurfaceFormat) (SurfaceFormat, bool) {
	if len(available) == 0 {
		return SurfaceFormat{}, false
	}
	for _, f := range available {
		if f.Format == FormatB8G8R8A8Srgb && f.ColorSpace == ColorSpaceSrgbNonlinear {
			return f, true
		}
	}
	return available[0], true
}

// choosePresentMode returns FIFO when vsync is requested. Otherwise MAILBOX is
// preferred, then IMMEDIATE, and FIFO is the fallback every surface supports.
func choosePresentMode(available []PresentMode, vsync bool) PresentMode {
	if vsync {
		return PresentModeFifo
	}
	for _, want := range []PresentMode{PresentModeMailbox, PresentModeImmediate} {
		for _, m := range available {
			if m == want {
				return m
			}
		}
	}
	return PresentModeFifo
}

// chooseExtent uses the surface's current extent when it is defined and
// otherwise clamps the window's drawable size to the supported range.
func chooseExtent(caps SurfaceCapabilities, window Extent) Extent {
	if caps.CurrentExtent.Width != ExtentUndefined {
		return caps.CurrentExtent
	}
	return Extent{
		Width:  clamp(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum so the driver
// never stalls acquire, capped by the maximum when one is set.
func chooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// chooseDepthFormat returns the first candidate the device supports.
func chooseDepthFormat(device Device, candidates []Format) (Format, bool) {
	for _, f := range candidates {
		if device.SupportsDepthFormat(f) {
			return f, true
		}
	}
	return FormatUndefined, false
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
