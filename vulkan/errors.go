package vulkan

import (
	"fmt"
	"runtime"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

// newError converts a failed vk.Result into an error naming the operation
// and the calling function. Device and surface loss also wrap the matching
// render sentinel so the orchestrator can classify them.
func newError(op string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	err := fmt.Errorf("%s: vulkan error: %w (%d)", op, vk.Error(res), res)
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			err = fmt.Errorf("%w on %s", err, fn.Name())
		}
	}
	switch res {
	case vk.ErrorDeviceLost:
		return fmt.Errorf("%w: %w", render.ErrDeviceLost, err)
	case vk.ErrorSurfaceLost:
		return fmt.Errorf("%w: %w", render.ErrSurfaceLost, err)
	}
	return err
}
