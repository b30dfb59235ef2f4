/*
Real-time skin rendering with screen-space subsurface scattering. Runs the
demo in a window, or renders a few frames off screen and writes a PNG.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/fakesss/demo"
	"github.com/spaghettifunk/fakesss/engine"
	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	headless := flag.Bool("headless", false, "render with the software backend and write a PNG")
	frames := flag.Int("frames", 0, "number of frames to render (headless defaults to 1)")
	out := flag.String("out", "frame.png", "PNG written in headless mode")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if *frames > 0 {
		config.Frames = *frames
	}
	if *headless {
		config.Renderer = metadata.RENDERER_TYPE_SOFTWARE.String()
		if config.Frames == 0 {
			config.Frames = 1
		}
	}

	game := demo.NewDemoGame(config)

	e, err := engine.New(game.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the loop; shutdown happens on this goroutine once Run returns
	go func() {
		<-sigCh
		e.Stop()
	}()

	// run engine
	runErr := e.Run()

	if runErr == nil && config.RendererType() == metadata.RENDERER_TYPE_SOFTWARE {
		width, height := e.GetFramebufferSize()
		if err := demo.WritePNG(e.Backend(), width, height, *out); err != nil {
			core.LogError("write %s: %s", *out, err)
		} else {
			core.LogInfo("wrote %s (%dx%d, %d frames)", *out, width, height, e.FrameCount())
		}
	}

	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("%s", runErr)
	}
}
