// Package demo is the skin rendering demo: a rotating head lit by two
// spotlights, with keys to tune exposure, bloom, scattering density and rain.
package demo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine"
	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer"
	"github.com/spaghettifunk/fakesss/engine/renderer/components"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/systems"
)

const (
	// mesh extent after loading
	modelScale = 2.0
	// radians per second
	modelRotationSpeed = 0.1
	// radians per pixel per second of drag
	orbitSpeed = 0.3
	// distance per scroll unit per second
	zoomSpeed = 10.0
)

var lookAt = mgl32.Vec3{0, 0.3, 0}

type DemoGame struct {
	*engine.Game
}

type gameState struct {
	frame  FrameState
	camera *components.Camera
	fps    fpsCounter

	modelAngle float32
	time       float64

	mesh     *renderer.Mesh
	material renderer.Material
}

func NewDemoGame(config *engine.ApplicationConfig) *DemoGame {
	dg := &DemoGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				frame: FrameState{
					Exposure: config.Frame.Exposure,
					Bloom:    config.Frame.Bloom,
					Density:  config.Frame.Density,
					Rain:     config.Frame.Rain,
				},
				modelAngle: mgl32.DegToRad(35),
			},
		},
	}
	dg.FnInitialize = dg.Initialize
	dg.FnUpdate = dg.Update
	dg.FnRender = dg.Render
	dg.FnOnResize = dg.OnResize
	dg.FnShutdown = dg.Shutdown
	return dg
}

func (g *DemoGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *DemoGame) FrameState() FrameState {
	return g.state().frame
}

func (g *DemoGame) Camera() *components.Camera {
	return g.state().camera
}

func (g *DemoGame) Initialize() error {
	core.LogDebug("DemoGame Initialize fn....")

	if g.Engine == nil {
		return fmt.Errorf("%w: the demo needs a booted engine", core.ErrEngineNotReady)
	}
	state := g.state()
	width, height := g.Engine.GetFramebufferSize()
	state.camera = components.NewCamera(width, height, 0.1, 100)
	state.camera.SetTarget(lookAt)

	if err := g.loadMesh(); err != nil {
		return err
	}
	if err := g.loadMaterial(); err != nil {
		return err
	}
	return nil
}

func (g *DemoGame) loadMesh() error {
	state := g.state()
	backend := g.Engine.Backend()
	scene := g.ApplicationConfig.Scene

	var geometry metadata.Geometry
	res, err := g.Engine.Assets().LoadAsset(scene.Mesh, metadata.ResourceTypeMesh, &metadata.MeshResourceParams{
		Scale:       modelScale,
		Translation: [3]float32{lookAt[0], lookAt[1], lookAt[2]},
	})
	if err != nil {
		core.LogError("mesh %s: %s, using a sphere", scene.Mesh, err)
		geometry = Sphere(modelScale/2, 48, 32)
		geometry.Transform(mgl32.Translate3D(lookAt[0], lookAt[1], lookAt[2]))
	} else {
		geometry = *res.Data.(*metadata.Geometry)
	}

	state.mesh = renderer.NewMesh(scene.Mesh, geometry)
	return state.mesh.CreateStaticBuffers(backend)
}

// fallback texels used until (or instead of) the images on disk
var fallbacks = map[string][4]uint8{
	"albedo":   {200, 160, 140, 255},
	"normal":   {128, 128, 255, 255},
	"specular": {64, 64, 64, 255},
}

// loadMaterial uploads 1x1 fallbacks, then decodes the material images on the
// job system. Each finished image replaces its fallback on the render thread.
func (g *DemoGame) loadMaterial() error {
	state := g.state()
	backend := g.Engine.Backend()
	scene := g.ApplicationConfig.Scene

	maps := []struct {
		name   string
		file   string
		handle *metadata.TextureHandle
	}{
		{"albedo", scene.AlbedoMap, &state.material.Albedo},
		{"normal", scene.NormalMap, &state.material.Normal},
		{"specular", scene.SpecularMap, &state.material.Specular},
	}
	for _, m := range maps {
		texel := fallbacks[m.name]
		h, err := backend.TextureUpload(&metadata.ImageData{Width: 1, Height: 1, Channels: 4, Pixels: texel[:]}, metadata.LinearClamp)
		if err != nil {
			return fmt.Errorf("%s fallback: %w", m.name, err)
		}
		*m.handle = h
	}

	for _, m := range maps {
		m := m
		if m.file == "" {
			continue
		}
		g.Engine.Jobs().Submit(systems.JobTask{
			Name: m.name,
			OnStart: func() (interface{}, error) {
				res, err := g.Engine.Assets().LoadAsset(m.file, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			},
			OnComplete: func(result interface{}) {
				img := result.(*metadata.ImageData)
				h, err := backend.TextureUpload(img, metadata.LinearClamp)
				if err != nil {
					core.LogError("%s map upload: %s", m.name, err)
					return
				}
				backend.TextureDestroy(*m.handle)
				*m.handle = h
				core.LogInfo("%s map %s loaded (%dx%d)", m.name, m.file, img.Width, img.Height)
			},
			OnFailure: func(err error) {
				core.LogError("%s map %s: %s", m.name, m.file, err)
			},
		})
	}
	return nil
}

func (g *DemoGame) Update(deltaTime float64) error {
	state := g.state()
	input := g.Engine.Input()
	dt := float32(deltaTime)

	state.frame.Adjust(input.IsKeyHit)

	var rotate mgl32.Vec2
	if input.IsButtonDown(core.BUTTON_LEFT) {
		dx, dy := input.MouseDelta()
		rotate = mgl32.Vec2{float32(dx), float32(dy)}.Mul(orbitSpeed * dt)
	}
	state.camera.Orbit(rotate, float32(input.Scroll)*zoomSpeed*dt)

	state.modelAngle += modelRotationSpeed * dt
	state.time += deltaTime

	if fps, ok := state.fps.Tick(deltaTime); ok {
		g.Engine.Window().SetTitle(state.frame.Title(fps))
	}
	return nil
}

func (g *DemoGame) Render(packet *engine.RenderPacket, deltaTime float64) error {
	state := g.state()
	packet.Frame = renderer.FrameContext{
		Camera:       state.camera,
		Model:        mgl32.HomogRotate3DY(state.modelAngle),
		Time:         float32(state.time),
		Exposure:     state.frame.Exposure,
		Bloom:        state.frame.Bloom,
		Density:      state.frame.Density,
		Rain:         state.frame.Rain,
		ShowSpecular: state.frame.ShowSpecular,
	}
	packet.Scene = &renderer.Scene{
		Meshes:   []*renderer.Mesh{state.mesh},
		Material: state.material,
	}
	return nil
}

func (g *DemoGame) OnResize(width uint32, height uint32) error {
	if cam := g.state().camera; cam != nil {
		cam.SetViewport(width, height)
	}
	return nil
}

func (g *DemoGame) Shutdown() error {
	state := g.state()
	if g.Engine != nil {
		// let in-flight decodes finish before their textures are released
		g.Engine.Jobs().Wait()
		backend := g.Engine.Backend()
		for _, h := range []metadata.TextureHandle{state.material.Albedo, state.material.Normal, state.material.Specular} {
			if h != metadata.InvalidTexture {
				backend.TextureDestroy(h)
			}
		}
	}
	state.material = renderer.Material{}
	if state.mesh != nil {
		state.mesh.Destroy()
	}
	return nil
}
