package render

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultMaxFramesInFlight is the number of FrameSlots cycled by a Renderer.
	DefaultMaxFramesInFlight = 2

	maxFramesInFlightLimit = 8
)

// Config tunes a Renderer and the FrameChains it builds.
type Config struct {
	// MaxFramesInFlight bounds how many submitted frames may be pending on the GPU.
	MaxFramesInFlight int

	// VSync selects FIFO presentation; otherwise MAILBOX is preferred when available.
	VSync bool

	// DepthFormats lists depth attachment candidates in order of preference.
	DepthFormats []Format

	ClearColor [4]float32

	// FenceTimeout bounds every fence and acquire wait. Zero waits forever.
	FenceTimeout time.Duration
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxFramesInFlight: DefaultMaxFramesInFlight,
		VSync:             true,
		DepthFormats:      []Format{FormatD32Sfloat, FormatD32SfloatS8Uint, FormatD24UnormS8Uint},
		ClearColor:        [4]float32{0.01, 0.01, 0.01, 1},
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.MaxFramesInFlight < 1 || c.MaxFramesInFlight > maxFramesInFlightLimit {
		errs = append(errs, fmt.Errorf("max frames in flight must be in [1, %d]; got %d", maxFramesInFlightLimit, c.MaxFramesInFlight))
	}
	if len(c.DepthFormats) == 0 {
		errs = append(errs, errors.New("at least one depth format candidate is required"))
	}
	for _, f := range c.DepthFormats {
		switch f {
		case FormatD32Sfloat, FormatD32SfloatS8Uint, FormatD24UnormS8Uint:
		default:
			errs = append(errs, fmt.Errorf("%s is not a depth format", f))
		}
	}
	if c.FenceTimeout < 0 {
		errs = append(errs, fmt.Errorf("fence timeout must not be negative; got %s", c.FenceTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("render: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
