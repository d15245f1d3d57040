package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "vkrender"
	app.Usage = "render a scene with Vulkan"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load engine settings from a YAML `FILE`",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "validation",
			Usage: "enable the Vulkan validation layer",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "open a window and render a scene",
			ArgsUsage: "[scene.yaml]",
			Description: `
Render the given YAML scene, or a single cube when no scene is given.
WASD/QE move the viewer and the arrow keys look around. Resizing or
minimizing the window rebuilds the swapchain.`,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "stats",
					Usage: "print frame statistics on exit",
				},
			},
			Action: runScene,
		},
		{
			Name:   "devices",
			Usage:  "list GPUs and whether they can present to a window",
			Action: listDevices,
		},
		{
			Name:      "new-scene",
			Usage:     "write the built-in scene to a YAML file as a starting point",
			ArgsUsage: "scene.yaml",
			Action:    newScene,
		},
	}
	app.Action = runScene

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
