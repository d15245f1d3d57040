package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.MaxFramesInFlight)
	assert.Zero(t, cfg.FenceTimeout)
}

func TestConfigValidate(t *testing.T) {
	specs := []struct {
		descr  string
		mutate func(*Config)
		errMsg string
	}{
		{"no frames in flight", func(c *Config) { c.MaxFramesInFlight = 0 }, "max frames in flight"},
		{"too many frames in flight", func(c *Config) { c.MaxFramesInFlight = 9 }, "max frames in flight"},
		{"no depth formats", func(c *Config) { c.DepthFormats = nil }, "depth format candidate"},
		{"color format as depth", func(c *Config) { c.DepthFormats = []Format{FormatB8G8R8A8Srgb} }, "B8G8R8A8_SRGB is not a depth format"},
		{"negative timeout", func(c *Config) { c.FenceTimeout = -time.Second }, "fence timeout"},
	}

	for _, spec := range specs {
		cfg := DefaultConfig()
		spec.mutate(&cfg)
		err := cfg.Validate()
		require.Error(t, err, spec.descr)
		assert.Contains(t, err.Error(), spec.errMsg, spec.descr)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("d24_unorm_s8_uint")
	require.NoError(t, err)
	assert.Equal(t, FormatD24UnormS8Uint, f)
	assert.True(t, f.HasStencil())
	assert.False(t, FormatD32Sfloat.HasStencil())

	_, err = ParseFormat("R8")
	assert.Error(t, err)
}
