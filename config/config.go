// Package config loads the engine configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vkrender/core"
	"vkrender/log"
	"vkrender/render"
)

// Config is the complete engine configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Log      LogConfig      `yaml:"log"`
}

type WindowConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Resizable  bool   `yaml:"resizable"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type RendererConfig struct {
	MaxFramesInFlight int           `yaml:"max_frames_in_flight"`
	VSync             bool          `yaml:"vsync"`
	DepthFormats      []string      `yaml:"depth_formats"`
	ClearColor        core.Color    `yaml:"clear_color"`
	FenceTimeout      time.Duration `yaml:"fence_timeout"`
	Validation        bool          `yaml:"validation"`
	// ShaderDir holds simple.vert.spv and simple.frag.spv.
	ShaderDir string `yaml:"shader_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is color, plain, short or a go-logging pattern.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	w := core.DefaultWindowConfig()
	r := render.DefaultConfig()

	depth := make([]string, len(r.DepthFormats))
	for i, f := range r.DepthFormats {
		depth[i] = f.String()
	}

	return Config{
		Window: WindowConfig{
			Width:      w.Width,
			Height:     w.Height,
			Title:      w.Title,
			Resizable:  w.Resizable,
			Fullscreen: w.Fullscreen,
		},
		Renderer: RendererConfig{
			MaxFramesInFlight: r.MaxFramesInFlight,
			VSync:             r.VSync,
			DepthFormats:      depth,
			ClearColor:        core.ColorFromArray(r.ClearColor),
			FenceTimeout:      r.FenceTimeout,
			ShaderDir:         "shaders",
		},
		Log: LogConfig{Level: "info", Format: log.FormatColor},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive; got %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if rc, err := c.Render(); err != nil {
		errs = append(errs, err)
	} else if err := rc.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Render converts the renderer section into the core's configuration.
func (c Config) Render() (render.Config, error) {
	rc := render.Config{
		MaxFramesInFlight: c.Renderer.MaxFramesInFlight,
		VSync:             c.Renderer.VSync,
		ClearColor:        c.Renderer.ClearColor.Array(),
		FenceTimeout:      c.Renderer.FenceTimeout,
	}
	for _, name := range c.Renderer.DepthFormats {
		f, err := render.ParseFormat(name)
		if err != nil {
			return rc, err
		}
		rc.DepthFormats = append(rc.DepthFormats, f)
	}
	return rc, nil
}

// CoreWindow converts the window section for core.NewWindow.
func (c Config) CoreWindow() core.WindowConfig {
	return core.WindowConfig{
		Width:      c.Window.Width,
		Height:     c.Window.Height,
		Title:      c.Window.Title,
		Resizable:  c.Window.Resizable,
		Fullscreen: c.Window.Fullscreen,
	}
}

// LogLevel returns the parsed log level; Validate has already checked it.
func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}
