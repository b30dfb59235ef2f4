package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/containers"
	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Stage identifies one step of the frame.
type Stage int

const (
	STAGE_SHADOW_DEPTH Stage = iota
	STAGE_FRONT
	STAGE_LIGHT_ACCUMULATION
	STAGE_BLUR
	STAGE_TONEMAP
)

func (s Stage) String() string {
	switch s {
	case STAGE_SHADOW_DEPTH:
		return "shadow-depth"
	case STAGE_FRONT:
		return "front"
	case STAGE_LIGHT_ACCUMULATION:
		return "light-accumulation"
	case STAGE_BLUR:
		return "blur"
	case STAGE_TONEMAP:
		return "tonemap"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError reports a stage that failed. Light is set for per-light failures.
type StageError struct {
	Stage Stage
	Light *LightID
	Err   error
}

func (e *StageError) Error() string {
	if e.Light != nil {
		return fmt.Sprintf("%s stage, light %d: %s", e.Stage, *e.Light, e.Err)
	}
	return fmt.Sprintf("%s stage: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// CameraView supplies the camera transforms for one frame.
type CameraView interface {
	View() mgl32.Mat4
	InverseView() mgl32.Mat4
	Projection() mgl32.Mat4
	Position() mgl32.Vec3
	Ratio() float32
}

// FrameContext carries everything a frame reads. It is not modified while
// the stages run.
type FrameContext struct {
	Camera       CameraView
	Model        mgl32.Mat4
	Time         float32
	Exposure     float32
	Bloom        float32
	Density      float32
	Rain         float32
	ShowSpecular bool
}

// Material holds the texture maps of the front stage.
type Material struct {
	Albedo   metadata.TextureHandle
	Normal   metadata.TextureHandle
	Specular metadata.TextureHandle
}

// Scene is the opaque geometry drawn by the shadow and front stages.
type Scene struct {
	Meshes   []*Mesh
	Material Material
}

func (s *Scene) draw() {
	for _, m := range s.Meshes {
		m.Draw()
	}
}

type PipelineConfig struct {
	Width      uint32
	Height     uint32
	BlurPasses int
	ShadowSize uint32
	// Shaders must contain every program in metadata.ShaderNames.
	Shaders []metadata.ShaderSource
}

type resizeRequest struct {
	width, height uint32
}

// Pipeline runs the five stages of a frame in order: shadow depth per light,
// front material pass, light accumulation, blur and tonemap to the display.
type Pipeline struct {
	backend RendererBackend
	width   uint32
	height  uint32

	front *RenderTarget
	final *RenderTarget
	quad  *Mesh

	shaders  map[string]*Shader
	blur     *BlurStage
	lighting *LightAccumulationStage

	resizes *containers.RingQueue[resizeRequest]
	reloads *containers.RingQueue[metadata.ShaderSource]
}

const maxPendingReloads = 32

// NewPipeline links the programs and creates the front and accumulation targets.
func NewPipeline(backend RendererBackend, config PipelineConfig) (*Pipeline, error) {
	p := &Pipeline{
		backend: backend,
		width:   max(config.Width, 1),
		height:  max(config.Height, 1),
		shaders: make(map[string]*Shader),
		resizes: containers.NewRingQueue[resizeRequest](1),
		reloads: containers.NewRingQueue[metadata.ShaderSource](maxPendingReloads),
	}

	sources := make(map[string]metadata.ShaderSource, len(config.Shaders))
	for _, s := range config.Shaders {
		sources[s.Name] = s
	}
	for _, name := range metadata.ShaderNames {
		src, ok := sources[name]
		if !ok {
			p.Destroy()
			return nil, fmt.Errorf("pipeline: %w: program %s missing", ErrShaderCompile, name)
		}
		sh, err := NewShader(backend, src)
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.shaders[name] = sh
	}

	if err := p.createTargets(); err != nil {
		p.Destroy()
		return nil, err
	}

	p.quad = NewMesh("fullscreen-quad", FullScreenQuad())
	if err := p.quad.CreateStaticBuffers(backend); err != nil {
		p.Destroy()
		return nil, err
	}

	p.blur = NewBlurStage(p.shaders[metadata.ShaderHBlur], p.shaders[metadata.ShaderVBlur], p.quad, config.BlurPasses)
	p.blur.SetResolution(p.width, p.height)
	p.lighting = NewLightAccumulationStage(p.shaders[metadata.ShaderLight], p.quad)

	core.LogInfo("pipeline ready (%dx%d, %d blur passes)", p.width, p.height, p.blur.Passes)
	return p, nil
}

func (p *Pipeline) createTargets() error {
	var err error
	p.front, err = NewRenderTarget(p.backend, "front", p.width, p.height)
	if err != nil {
		return err
	}
	attachments := []struct {
		slot metadata.AttachmentSlot
		desc metadata.AttachmentDescriptor
	}{
		{metadata.SlotDepth, metadata.DepthAttachment(metadata.InternalFormatDepth32F)},
		// albedo
		{metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA8)},
		// view-space normal xy, specular, exponent
		{metadata.SlotAux1, metadata.ColorAttachment(metadata.InternalFormatRGBA16F)},
		// blurred radiance
		{metadata.SlotAux2, metadata.ColorAttachment(metadata.InternalFormatRGBA16F).Mipmapped()},
	}
	for _, a := range attachments {
		if err := p.front.Attach(a.slot, a.desc); err != nil {
			return err
		}
	}

	p.final, err = NewRenderTarget(p.backend, "final", p.width, p.height)
	if err != nil {
		return err
	}
	return p.final.Attach(metadata.SlotAux0, metadata.ColorAttachment(metadata.InternalFormatRGBA16F))
}

// Front returns the material target.
func (p *Pipeline) Front() *RenderTarget { return p.front }

// Final returns the accumulation target.
func (p *Pipeline) Final() *RenderTarget { return p.final }

func (p *Pipeline) Blur() *BlurStage { return p.blur }

func (p *Pipeline) Shader(name string) *Shader { return p.shaders[name] }

func (p *Pipeline) Size() (uint32, uint32) { return p.width, p.height }

// Resize queues a new size. It takes effect at the start of the next frame;
// repeated calls before then keep only the latest size.
func (p *Pipeline) Resize(width, height uint32) {
	p.resizes.Replace(resizeRequest{width: width, height: height})
}

// ReloadShader queues new sources for a program, applied at the next frame
// boundary.
func (p *Pipeline) ReloadShader(source metadata.ShaderSource) {
	if err := p.reloads.Enqueue(source); err != nil {
		core.LogWarn("shader %s reload dropped: %s", source.Name, err)
	}
}

// applyPending runs queued resizes and reloads between frames.
func (p *Pipeline) applyPending() error {
	var errs []error
	for _, src := range p.reloads.Drain() {
		sh, ok := p.shaders[src.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("reload: unknown program %s", src.Name))
			continue
		}
		if err := sh.Reload(src); err != nil {
			core.LogError("%s", err)
			errs = append(errs, err)
			continue
		}
		if src.Name == metadata.ShaderHBlur || src.Name == metadata.ShaderVBlur {
			p.blur.SetResolution(p.width, p.height)
		}
	}

	for _, r := range p.resizes.Drain() {
		if r.width == 0 || r.height == 0 {
			continue
		}
		if r.width == p.width && r.height == p.height {
			continue
		}
		p.width, p.height = r.width, r.height
		if err := p.front.Resize(metadata.BitAll, r.width, r.height); err != nil {
			errs = append(errs, err)
		}
		if err := p.final.Resize(metadata.BitAux0, r.width, r.height); err != nil {
			errs = append(errs, err)
		}
		p.blur.SetResolution(r.width, r.height)
		p.backend.Resized(r.width, r.height)
		core.LogDebug("pipeline resized to %dx%d", r.width, r.height)
	}
	return errors.Join(errs...)
}

// RenderFrame applies pending changes and runs every stage. A failing stage
// is reported and the remaining stages still run; a light whose shadow pass
// failed is left out of accumulation for this frame.
func (p *Pipeline) RenderFrame(frame *FrameContext, scene *Scene, lights *LightSet) error {
	var errs []error
	if err := p.applyPending(); err != nil {
		errs = append(errs, err)
	}

	var active []*Light
	if lights != nil {
		active = lights.Active()
	}
	lit := make([]*Light, 0, len(active))
	for _, l := range active {
		if err := p.shadowStage(l, frame, scene); err != nil {
			id := l.ID
			errs = append(errs, &StageError{Stage: STAGE_SHADOW_DEPTH, Light: &id, Err: err})
			continue
		}
		lit = append(lit, l)
	}

	if err := p.frontStage(frame, scene); err != nil {
		errs = append(errs, &StageError{Stage: STAGE_FRONT, Err: err})
	}
	if err := p.lighting.Run(p.final, p.front, lit, frame); err != nil {
		errs = append(errs, &StageError{Stage: STAGE_LIGHT_ACCUMULATION, Err: err})
	}
	if err := p.blur.Run(p.front, p.final.BufferHandle(metadata.SlotAux0)); err != nil {
		errs = append(errs, &StageError{Stage: STAGE_BLUR, Err: err})
	}
	if err := p.tonemapStage(frame); err != nil {
		errs = append(errs, &StageError{Stage: STAGE_TONEMAP, Err: err})
	}

	err := errors.Join(errs...)
	if err != nil {
		core.LogError("frame rendered with errors: %s", err)
	}
	return err
}

func (p *Pipeline) shadowStage(l *Light, frame *FrameContext, scene *Scene) error {
	p.backend.SetState(metadata.DepthOnlyState)
	target := l.ShadowTarget()
	if err := target.Bind(); err != nil {
		return err
	}
	p.backend.Clear(metadata.CLEAR_DEPTH, metadata.ClearValue{Depth: 1})

	sh := p.shaders[metadata.ShaderDepth]
	sh.Bind()
	sh.SetMat4("modelMatrix", frame.Model)
	sh.SetMat4("viewMatrix", l.View())
	sh.SetMat4("projMatrix", l.Projection())
	scene.draw()
	sh.Unbind()
	target.Unbind()
	return nil
}

func (p *Pipeline) frontStage(frame *FrameContext, scene *Scene) error {
	p.backend.SetState(metadata.OpaqueState)
	if err := p.front.DrawTo(metadata.SlotAux0, metadata.SlotAux1); err != nil {
		return err
	}
	p.backend.Clear(metadata.CLEAR_COLOR_DEPTH, metadata.ClearValue{Depth: 1})

	cam := frame.Camera
	sh := p.shaders[metadata.ShaderFront]
	sh.Bind()
	sh.SetTexture("colorMap", 0, scene.Material.Albedo)
	sh.SetTexture("normalMap", 1, scene.Material.Normal)
	sh.SetTexture("specularMap", 2, scene.Material.Specular)
	sh.SetMat4("modelMatrix", frame.Model)
	sh.SetMat4("viewMatrix", cam.View())
	sh.SetMat4("projMatrix", cam.Projection())
	sh.SetMat4("invModelMatrix", frame.Model.Inv())
	sh.SetVec3("camPos", cam.Position())
	sh.SetFloat("rainAmount", frame.Rain)
	sh.SetFloat("time", frame.Time)
	scene.draw()
	sh.Unbind()
	return nil
}

func (p *Pipeline) tonemapStage(frame *FrameContext) error {
	p.backend.SetState(metadata.OverlayState)
	p.backend.FramebufferBind(metadata.DefaultFramebuffer)
	p.backend.Viewport(metadata.Viewport{Width: int32(p.width), Height: int32(p.height)})
	p.backend.DrawBuffers([]metadata.AttachmentPoint{metadata.AttachmentPointColor0})
	p.backend.Clear(metadata.CLEAR_COLOR, metadata.ClearValue{})

	radiance := p.final.BufferHandle(metadata.SlotAux0)
	bloom := p.front.BufferHandle(p.blur.Result)
	if radiance == metadata.InvalidTexture || bloom == metadata.InvalidTexture {
		return ErrSlotNotAttached
	}

	sh := p.shaders[metadata.ShaderTonemap]
	sh.Bind()
	sh.SetTexture("radiance", 0, radiance)
	sh.SetTexture("bloomMap", 1, bloom)
	sh.SetFloat("exposure", frame.Exposure)
	sh.SetFloat("bloom", frame.Bloom)
	p.quad.Draw()
	sh.Unbind()
	return nil
}

// Destroy releases programs, targets and the quad.
func (p *Pipeline) Destroy() {
	if p.quad != nil {
		p.quad.Destroy()
	}
	if p.front != nil {
		p.front.Release()
	}
	if p.final != nil {
		p.final.Release()
	}
	for _, sh := range p.shaders {
		sh.Destroy()
	}
	p.shaders = make(map[string]*Shader)
}
