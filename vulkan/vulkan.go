// Package vulkan implements render.Device on top of github.com/vulkan-go/vulkan.
package vulkan

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/log"
)

var logger = log.New("vulkan")

// ValidationLayer is enabled when an instance is created with validation.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Init loads the Vulkan loader through the given vkGetInstanceProcAddr.
func Init(getInstanceProcAddr unsafe.Pointer) error {
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init vulkan: %w", err)
	}
	return nil
}

// cstr null-terminates s for the binding's string fields.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func cstrs(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = cstr(s)
	}
	return out
}

// timeoutNanos maps a zero duration to an unbounded wait.
func timeoutNanos(d time.Duration) uint64 {
	if d <= 0 {
		return math.MaxUint64
	}
	return uint64(d.Nanoseconds())
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// versionString formats a packed VK_MAKE_VERSION value.
func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
