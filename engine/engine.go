package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/fakesss/engine/assets"
	"github.com/spaghettifunk/fakesss/engine/containers"
	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/platform"
	"github.com/spaghettifunk/fakesss/engine/renderer"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/opengl"
	"github.com/spaghettifunk/fakesss/engine/renderer/software"
	"github.com/spaghettifunk/fakesss/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const jobQueueSize = 16

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isRunning    atomic.Bool
	isSuspended  bool
	window       platform.Window
	bus          *core.EventBus
	input        *core.InputState
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	backend      renderer.RendererBackend
	pipeline     *renderer.Pipeline
	lights       *renderer.LightSet
	width        uint32
	height       uint32
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	frameCount   int

	// OS resize events, coalesced and applied between frames
	resizes *containers.RingQueue[core.ResizeEvent]
}

// New boots an engine for g with the backend and window its configuration
// names: a glfw window with OpenGL, or an off-screen software renderer.
func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	bus := core.NewEventBus()
	input := core.NewInputState(bus)

	var (
		backend renderer.RendererBackend
		window  platform.Window
	)
	switch g.ApplicationConfig.RendererType() {
	case metadata.RENDERER_TYPE_SOFTWARE:
		backend = software.New()
		window = platform.NewHeadless(g.ApplicationConfig.StartWidth, g.ApplicationConfig.StartHeight)
	default:
		backend = opengl.New()
		window = platform.New(input, bus)
	}
	return NewWithBackend(g, bus, input, backend, window)
}

// NewWithBackend boots an engine on an explicit backend and window.
func NewWithBackend(g *Game, bus *core.EventBus, input *core.InputState, backend renderer.RendererBackend, window platform.Window) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	config := g.ApplicationConfig
	core.SetLogLevel(config.LogLevel)

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       config,
		window:       window,
		bus:          bus,
		input:        input,
		backend:      backend,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        config.StartWidth,
		height:       config.StartHeight,
		resizes:      containers.NewRingQueue[core.ResizeEvent](1),
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.assetManager = am

	js, err := systems.NewJobSystem(max(config.Workers, 1), jobQueueSize)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.jobSystem = js

	g.Engine = e
	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("%w: stage %d", core.ErrEngineNotReady, e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	config := e.config

	// register some events
	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.bus.Register(core.EVENT_CODE_SHADER_CHANGED, e, e.onShaderChanged)

	if p, ok := e.window.(*platform.Platform); ok {
		if err := p.Startup(config.Name, config.StartPosX, config.StartPosY, config.StartWidth, config.StartHeight); err != nil {
			return err
		}
	}
	// the framebuffer can be larger than the window on high-DPI displays
	if w, h := e.window.FramebufferSize(); w > 0 && h > 0 {
		e.width, e.height = w, h
	}

	if err := e.assetManager.Initialize(config.AssetsDir); err != nil {
		return err
	}

	if err := e.backend.Initialize(metadata.RendererBackendConfig{
		ApplicationName: config.Name,
		Width:           e.width,
		Height:          e.height,
	}); err != nil {
		return err
	}

	sources := make([]metadata.ShaderSource, 0, len(metadata.ShaderNames))
	for _, name := range metadata.ShaderNames {
		src, err := e.loadShader(name)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	pipeline, err := renderer.NewPipeline(e.backend, renderer.PipelineConfig{
		Width:      e.width,
		Height:     e.height,
		BlurPasses: config.Pipeline.BlurPasses,
		ShadowSize: config.Pipeline.ShadowSize,
		Shaders:    sources,
	})
	if err != nil {
		return err
	}
	e.pipeline = pipeline

	e.lights = renderer.NewLightSet(e.backend, config.Pipeline.ShadowSize)
	for i, lc := range config.Lights {
		if _, err := e.lights.Add(lc.Spotlight()); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) loadShader(name string) (metadata.ShaderSource, error) {
	res, err := e.assetManager.LoadAsset(name, metadata.ResourceTypeShader, nil)
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	src, ok := res.Data.(metadata.ShaderSource)
	if !ok {
		return metadata.ShaderSource{}, fmt.Errorf("shader %s: unexpected resource %T", name, res.Data)
	}
	return src, nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: stage %d", core.ErrEngineNotReady, e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.window.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		e.assetManager.Poll(e.bus)
		e.jobSystem.Update()
		e.applyResize()

		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.frame(delta); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}
		e.metrics.Update(time.Since(frameStart).Seconds())

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		e.input.Update(delta)

		// Update last time
		e.lastTime = currentTime
		e.frameCount++
		if e.config.Frames > 0 && e.frameCount >= e.config.Frames {
			e.isRunning.Store(false)
		}
	}
	return nil
}

// frame runs the game hooks and renders one frame. Render stage errors are
// logged by the pipeline and do not stop the loop.
func (e *Engine) frame(delta float64) error {
	g := e.gameInstance
	if g.FnUpdate != nil {
		if err := g.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	packet := &RenderPacket{DeltaTime: delta}
	if g.FnRender != nil {
		if err := g.FnRender(packet, delta); err != nil {
			return fmt.Errorf("game render: %w", err)
		}
	}

	if err := e.backend.BeginFrame(delta); err != nil {
		return err
	}
	if packet.Frame.Camera != nil {
		scene := packet.Scene
		if scene == nil {
			scene = &renderer.Scene{}
		}
		// RenderFrame logs its own stage errors; a bad stage must not stop the loop
		_ = e.pipeline.RenderFrame(&packet.Frame, scene, e.lights)
	}
	if err := e.backend.EndFrame(delta); err != nil {
		core.LogWarn("end frame: %s", err)
	}
	e.window.SwapBuffers()
	return nil
}

// Stop asks the loop to exit after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.jobSystem.Shutdown())
	if e.lights != nil {
		e.lights.Destroy()
	}
	if e.pipeline != nil {
		e.pipeline.Destroy()
	}
	errs = append(errs, e.backend.Shutdown())
	errs = append(errs, e.assetManager.Shutdown())
	e.bus.Shutdown()
	errs = append(errs, e.window.Shutdown())
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage                      { return e.currentStage }
func (e *Engine) Config() *ApplicationConfig        { return e.config }
func (e *Engine) Bus() *core.EventBus               { return e.bus }
func (e *Engine) Input() *core.InputState           { return e.input }
func (e *Engine) Assets() *assets.AssetManager      { return e.assetManager }
func (e *Engine) Jobs() *systems.JobSystem          { return e.jobSystem }
func (e *Engine) Backend() renderer.RendererBackend { return e.backend }
func (e *Engine) Pipeline() *renderer.Pipeline      { return e.pipeline }
func (e *Engine) Lights() *renderer.LightSet        { return e.lights }
func (e *Engine) Window() platform.Window           { return e.window }
func (e *Engine) Metrics() *core.Metrics            { return e.metrics }
func (e *Engine) FrameCount() int                   { return e.frameCount }
func (e *Engine) IsSuspended() bool                 { return e.isSuspended }

// applyResize handles the newest queued window size. A zero size suspends
// rendering until the window comes back.
func (e *Engine) applyResize() {
	for _, r := range e.resizes.Drain() {
		if r.Width == 0 || r.Height == 0 {
			if !e.isSuspended {
				core.LogInfo("Window minimized, suspending application.")
				e.isSuspended = true
			}
			continue
		}
		if e.isSuspended {
			core.LogInfo("Window restored, resuming application.")
			e.isSuspended = false
		}
		if r.Width == e.width && r.Height == e.height {
			continue
		}
		e.width, e.height = r.Width, r.Height
		core.LogDebug("Window resize: %d, %d", r.Width, r.Height)
		e.pipeline.Resize(r.Width, r.Height)
		if e.gameInstance.FnOnResize != nil {
			if err := e.gameInstance.FnOnResize(r.Width, r.Height); err != nil {
				core.LogError(err.Error())
			}
		}
	}
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	re, ok := context.Data.(*core.ResizeEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	e.resizes.Replace(*re)
	return false
}

func (e *Engine) onShaderChanged(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	ae, ok := context.Data.(*core.AssetEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", code)
		return false
	}
	src, err := e.loadShader(ae.Name)
	if err != nil {
		core.LogError("reload %s: %s", ae.Name, err)
		return false
	}
	e.pipeline.ReloadShader(src)
	return false
}
