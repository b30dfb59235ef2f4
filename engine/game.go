package engine

import (
	"github.com/spaghettifunk/fakesss/engine/renderer"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Engine is set by New before any hook runs.
	Engine       *Engine
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

// RenderPacket is filled by the game's Render hook and handed to the pipeline.
// A packet without a camera renders nothing.
type RenderPacket struct {
	DeltaTime float64
	Frame     renderer.FrameContext
	Scene     *renderer.Scene
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
