/*
vkboot opens a window, brings up Vulkan with a logical device and two
queues, then idles polling window events until the window is closed.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vkboot/engine"
	"github.com/spaghettifunk/vkboot/engine/core"
	"github.com/spaghettifunk/vkboot/engine/platform"
	"github.com/spaghettifunk/vkboot/engine/renderer/vulkan"
)

func main() {
	if err := run(); err != nil {
		core.LogFatal("fatal: %s", err)
	}
}

func run() error {
	cfg, err := engine.LoadApplicationConfig(engine.DefaultConfigFile)
	if err != nil {
		return err
	}

	opts := []engine.Option{}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)
	opts = append(opts, engine.WithQuitSignal(sigCh))

	if watcher, err := engine.NewConfigWatcher(engine.DefaultConfigFile); err != nil {
		core.LogWarn("config watcher disabled: %s", err)
	} else {
		opts = append(opts, engine.WithConfigWatcher(watcher))
	}

	p := platform.New()
	r := vulkan.New(vulkan.NewDriver(), p)
	e := engine.New(cfg, p, r, opts...)

	if err := e.Initialize(); err != nil {
		return err
	}

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		return err
	}
	return runErr
}
