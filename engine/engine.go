package engine

import (
	"os"
	"time"

	"github.com/spaghettifunk/vkboot/engine/core"
	"github.com/spaghettifunk/vkboot/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

// Platform is the windowing system driven by the engine.
type Platform interface {
	Startup(applicationName string, width uint32, height uint32) error
	Shutdown() error
	ShouldClose() bool
	PumpMessages()
}

type configSource interface {
	Poll() (bool, error)
	Close() error
}

type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	platform     Platform
	renderer     renderer.RendererBackend

	watcher configSource
	quit    <-chan os.Signal
	clock   core.Clock
}

type Option func(*Engine)

// WithConfigWatcher reports config file edits while running.
func WithConfigWatcher(w *ConfigWatcher) Option {
	return func(e *Engine) {
		e.watcher = w
	}
}

// WithQuitSignal stops the run loop once a signal arrives on ch.
func WithQuitSignal(ch <-chan os.Signal) Option {
	return func(e *Engine) {
		e.quit = ch
	}
}

func New(config *ApplicationConfig, p Platform, r renderer.RendererBackend, opts ...Option) *Engine {
	e := &Engine{
		currentStage: EngineStageUninitialized,
		config:       config,
		platform:     p,
		renderer:     r,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Initialize opens the window and brings the renderer up. Any failure
// releases what was created and aborts.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(e.config.LogLevel)

	if err := e.platform.Startup(e.config.Name, e.config.StartWidth, e.config.StartHeight); err != nil {
		e.abort()
		return err
	}

	if err := e.renderer.Initialize(e.config.Name, e.config.StartWidth, e.config.StartHeight); err != nil {
		e.abort()
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized.")
	return nil
}

// Run polls window events until the window is asked to close.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()

	for !e.platform.ShouldClose() {
		e.platform.PumpMessages()
		e.clock.Tick()

		if e.quitRequested() {
			core.LogInfo("Quit signal received, shutting down.")
			break
		}
		e.pollConfig()
	}

	e.clock.Stop()
	core.LogDebug("Run loop exited after %s (%d iterations).", e.clock.Elapsed().Round(time.Millisecond), e.clock.Ticks())
	e.currentStage = EngineStageInitialized
	return nil
}

// Shutdown releases the renderer before the window it presents to.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	defer func() { e.currentStage = EngineStageUninitialized }()

	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			return err
		}
	}
	return nil
}

// abort drops the window after a failed startup. The renderer has already
// released its own resources by then.
func (e *Engine) abort() {
	if err := e.platform.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if e.watcher != nil {
		_ = e.watcher.Close()
	}
	e.currentStage = EngineStageUninitialized
}

func (e *Engine) quitRequested() bool {
	if e.quit == nil {
		return false
	}
	select {
	case <-e.quit:
		return true
	default:
		return false
	}
}

func (e *Engine) pollConfig() {
	if e.watcher == nil {
		return
	}
	changed, err := e.watcher.Poll()
	if err != nil {
		core.LogWarn("config watcher: %s", err)
		return
	}
	if changed {
		core.LogInfo("Configuration changed; restart to apply.")
	}
}
