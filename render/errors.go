package render

import (
	"errors"
	"fmt"
)

// Fault kinds. Backend failures are wrapped with one of these so callers can
// test for them with errors.Is; none of them is recovered inside the engine.
var (
	ErrSurfaceLost            = errors.New("render: surface lost")
	ErrAcquireFailed          = errors.New("render: failed to acquire swapchain image")
	ErrPresentFailed          = errors.New("render: failed to present swapchain image")
	ErrRecordFailed           = errors.New("render: command recording failed")
	ErrPipelineCreationFailed = errors.New("render: pipeline creation failed")
	ErrFormatChanged          = errors.New("render: swapchain image or depth format has changed")
	ErrResourceCreationFailed = errors.New("render: resource creation failed")
	ErrDeviceLost             = errors.New("render: device lost")
)

// wrapFault tags err with kind unless it already carries it.
func wrapFault(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
