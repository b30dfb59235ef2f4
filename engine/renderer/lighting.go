package renderer

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Texture units read by the accumulation program.
const (
	unitFrontDepth  uint32 = 0
	unitFrontAlbedo uint32 = 1
	unitFrontNormal uint32 = 2
	unitShadow      uint32 = 3
)

// LightAccumulationStage sums each light's contribution into a target with
// additive blending, one full-screen quad per light.
type LightAccumulationStage struct {
	shader *Shader
	quad   *Mesh
}

func NewLightAccumulationStage(shader *Shader, quad *Mesh) *LightAccumulationStage {
	return &LightAccumulationStage{shader: shader, quad: quad}
}

func (s *LightAccumulationStage) SetShader(shader *Shader) {
	s.shader = shader
}

// Run clears target and accumulates lights. front supplies depth (DEPTH),
// albedo (AUX0) and packed normal/specular (AUX1).
func (s *LightAccumulationStage) Run(target, front *RenderTarget, lights []*Light, frame *FrameContext) error {
	backend := target.backend
	backend.SetState(metadata.AdditiveState)
	if err := target.Bind(); err != nil {
		return err
	}
	backend.Clear(metadata.CLEAR_COLOR, metadata.ClearValue{})

	cam := frame.Camera
	sh := s.shader
	sh.Bind()
	sh.SetTexture("depthMap", unitFrontDepth, front.BufferHandle(metadata.SlotDepth))
	sh.SetTexture("albedoMap", unitFrontAlbedo, front.BufferHandle(metadata.SlotAux0))
	sh.SetTexture("normalMap", unitFrontNormal, front.BufferHandle(metadata.SlotAux1))
	sh.SetInt("shadowMap", int32(unitShadow))

	sh.SetMat4("viewMatrix", cam.View())
	sh.SetMat4("invViewMatrix", cam.InverseView())
	sh.SetMat4("projMatrix", cam.Projection())
	sh.SetMat4("invProjMatrix", cam.Projection().Inv())
	sh.SetFloat("camRatio", cam.Ratio())
	sh.SetFloat("density", frame.Density)
	specOnly := int32(0)
	if frame.ShowSpecular {
		specOnly = 1
	}
	sh.SetInt("specularOnly", specOnly)

	for _, l := range lights {
		backend.TextureBind(unitShadow, l.ShadowMap())
		sh.SetMat4("textureMatrix", s.TextureMatrix(l, cam))
		sh.SetVec2("spotlightNearFar", l.NearFar())
		sh.SetVec3("spotlightPos", l.Position)
		sh.SetVec3("spotlightDir", l.Direction())
		sh.SetVec3("spotlightColor", l.Radiance())
		sh.SetFloat("spotlightCosOuter", float32(gomath.Cos(float64(l.OuterAngle))))
		s.quad.Draw()
	}
	sh.Unbind()
	return nil
}

// TextureMatrix maps camera view space into the light's shadow texture space.
func (s *LightAccumulationStage) TextureMatrix(l *Light, cam CameraView) mgl32.Mat4 {
	return l.TextureMatrix().Mul4(cam.InverseView())
}
