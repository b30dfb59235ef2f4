package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/platform"
	"github.com/spaghettifunk/fakesss/engine/renderer"
	"github.com/spaghettifunk/fakesss/engine/renderer/components"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/software"
)

func headlessEngine(t *testing.T, g *Game) (*Engine, *software.Backend, *platform.Headless) {
	t.Helper()
	c := DefaultApplicationConfig()
	c.StartWidth, c.StartHeight = 16, 8
	c.Renderer = "software"
	c.AssetsDir = t.TempDir()
	c.Workers = 1
	c.Pipeline.ShadowSize = 8
	c.Frames = 3
	g.ApplicationConfig = c

	bus := core.NewEventBus()
	input := core.NewInputState(bus)
	backend := software.New()
	window := platform.NewHeadless(c.StartWidth, c.StartHeight)
	e, err := NewWithBackend(g, bus, input, backend, window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, backend, window
}

func TestEngineRunsFrameBudget(t *testing.T) {
	var updates, renders int
	var sized [2]uint32
	g := &Game{}
	camera := components.NewCamera(16, 8, 0.1, 100)
	g.FnUpdate = func(float64) error { updates++; return nil }
	g.FnRender = func(p *RenderPacket, _ float64) error {
		renders++
		p.Frame = renderer.FrameContext{Camera: camera, Model: mgl32.Ident4(), Exposure: 1}
		return nil
	}
	g.FnOnResize = func(w, h uint32) error { sized = [2]uint32{w, h}; return nil }

	e, backend, window := headlessEngine(t, g)
	assert.Equal(t, EngineStageBootComplete, e.Stage())
	assert.Same(t, e, g.Engine)

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, [2]uint32{16, 8}, sized)
	assert.Equal(t, 2, e.Lights().Len())

	require.NoError(t, e.Run())
	assert.Equal(t, 3, e.FrameCount())
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, renders)
	assert.Equal(t, 3, window.Swaps)
	assert.NotEmpty(t, backend.Draws())

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
	assert.NoError(t, e.Shutdown())
}

func TestEngineRunRequiresInitialize(t *testing.T) {
	e, _, _ := headlessEngine(t, &Game{})
	assert.ErrorIs(t, e.Run(), core.ErrEngineNotReady)

	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Initialize(), core.ErrEngineNotReady)
}

func TestEngineEscapeQuits(t *testing.T) {
	g := &Game{}
	e, _, _ := headlessEngine(t, g)
	g.FnUpdate = func(float64) error {
		e.Bus().Fire(core.EVENT_CODE_KEY_PRESSED, nil, core.EventContext{Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE}})
		return nil
	}
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	assert.Equal(t, 1, e.FrameCount())
}

func TestEngineMinimizeSuspends(t *testing.T) {
	var sized [2]uint32
	g := &Game{FnOnResize: func(w, h uint32) error { sized = [2]uint32{w, h}; return nil }}
	e, _, _ := headlessEngine(t, g)
	require.NoError(t, e.Initialize())

	e.Bus().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Data: &core.ResizeEvent{}})
	e.applyResize()
	assert.True(t, e.IsSuspended())

	// only the newest size is applied
	e.Bus().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Data: &core.ResizeEvent{Width: 4, Height: 4}})
	e.Bus().Fire(core.EVENT_CODE_RESIZED, nil, core.EventContext{Data: &core.ResizeEvent{Width: 32, Height: 16}})
	e.applyResize()
	assert.False(t, e.IsSuspended())
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(32), w)
	assert.Equal(t, uint32(16), h)
	assert.Equal(t, [2]uint32{32, 16}, sized)
}

func TestEngineKeepsRunningAfterStageError(t *testing.T) {
	camera := components.NewCamera(16, 8, 0.1, 100)
	g := &Game{FnRender: func(p *RenderPacket, _ float64) error {
		p.Frame = renderer.FrameContext{Camera: camera, Model: mgl32.Ident4(), Exposure: 1}
		return nil
	}}
	e, backend, window := headlessEngine(t, g)
	require.NoError(t, e.Initialize())

	active := e.Lights().Active()
	require.Len(t, active, 2)
	active[0].ShadowTarget().Destroy(metadata.BitAll)

	require.NoError(t, e.Run())
	assert.Equal(t, 3, e.FrameCount())
	assert.Equal(t, 3, window.Swaps)

	lightDraws := 0
	for _, d := range backend.Draws() {
		if d.Program == metadata.ShaderLight {
			lightDraws++
		}
	}
	assert.Equal(t, 1, lightDraws, "the broken light is skipped, the other still draws")
}
