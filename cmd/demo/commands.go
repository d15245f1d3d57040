package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"vkrender/app"
	"vkrender/config"
	"vkrender/io"
	"vkrender/log"
	"vkrender/vulkan"
)

var logger = log.New("demo")

// loadConfig reads --config, applies the global flags and configures logging.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if ctx.GlobalBool("validation") {
		cfg.Renderer.Validation = true
	}

	if err := log.SetFormat(cfg.Log.Format); err != nil {
		return cfg, err
	}
	log.SetLevel(cfg.LogLevel())
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Debug)
	}
	return cfg, nil
}

func runScene(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{ScenePath: ctx.Args().First()})
	if err != nil {
		return err
	}
	defer a.Close()

	runErr := a.Run()
	if ctx.Bool("stats") {
		displayFrameStats(a)
	}
	return runErr
}

func displayFrameStats(a *app.App) {
	var buf bytes.Buffer
	a.Stats().WriteTable(&buf)

	d := a.DrawStats()
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Objects", "Culled", "Skipped", "Vertices", "Triangles"})
	table.Append([]string{
		strconv.Itoa(d.Objects),
		strconv.Itoa(d.Culled),
		strconv.Itoa(d.Skipped),
		strconv.Itoa(d.Vertices),
		strconv.Itoa(d.Triangles),
	})
	table.Render()

	fmt.Printf("\nFrame statistics\n%s", buf.String())
}

func listDevices(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	wc := cfg.CoreWindow()
	wc.Hidden = true
	wc.Width, wc.Height = 64, 64

	window, instance, device, err := app.OpenDevice(wc, cfg.Renderer.Validation)
	if err != nil {
		if errors.Is(err, vulkan.ErrNoSuitableGPU) {
			logger.Warning("no GPU can present to a window")
		}
		return err
	}
	defer window.Destroy()
	defer instance.Destroy()
	defer device.Destroy()
	selected := device.Name()

	gpus, err := vulkan.ListGPUs(instance, device.Surface())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Name", "Type", "API", "Driver", "Score", "Selected"})
	for i, g := range gpus {
		table.Append([]string{
			strconv.Itoa(i),
			g.Name,
			g.Type,
			g.APIVersion,
			fmt.Sprintf("%#x", g.Driver),
			strconv.FormatUint(uint64(g.Score), 10),
			fmt.Sprintf("%t", g.Suitable() && g.Name == selected),
		})
	}
	table.Render()
	fmt.Printf("\nGPUs visible to Vulkan\n%s", buf.String())
	return nil
}

func newScene(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}
	path := ctx.Args().First()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := io.SaveScene(path, io.NewDefaultSceneFile("example")); err != nil {
		return err
	}
	logger.Noticef("wrote %s", path)
	return nil
}
