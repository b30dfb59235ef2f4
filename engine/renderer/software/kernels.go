package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/math"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

type kernel struct {
	names   []string
	prepare func(u *Uniforms) Stage
}

func (k kernel) Uniforms() []string { return k.names }

func (k kernel) Prepare(u *Uniforms) Stage { return k.prepare(u) }

// NewKernel builds a Kernel from a uniform list and a prepare function.
func NewKernel(names []string, prepare func(u *Uniforms) Stage) Kernel {
	return kernel{names: names, prepare: prepare}
}

func builtinKernels() map[string]Kernel {
	return map[string]Kernel{
		metadata.ShaderDepth:   DepthKernel(),
		metadata.ShaderFront:   FrontKernel(),
		metadata.ShaderLight:   LightKernel(),
		metadata.ShaderHBlur:   BlurKernel(true),
		metadata.ShaderVBlur:   BlurKernel(false),
		metadata.ShaderTonemap: TonemapKernel(),
	}
}

func single(c mgl32.Vec4) Outputs {
	return Outputs{Colors: [metadata.AuxSlotCount]mgl32.Vec4{c}, Count: 1}
}

// fullScreenVertex passes xy through and forwards the texcoord.
func fullScreenVertex(v *metadata.Vertex3D) (mgl32.Vec4, Varyings) {
	var out Varyings
	out[0], out[1] = v.Texcoord[0], v.Texcoord[1]
	return mgl32.Vec4{v.Position[0], v.Position[1], 0, 1}, out
}

func vec3At(v *Varyings, i int) mgl32.Vec3 {
	return mgl32.Vec3{v[i], v[i+1], v[i+2]}
}

func putVec3(v *Varyings, i int, x mgl32.Vec3) {
	v[i], v[i+1], v[i+2] = x[0], x[1], x[2]
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 1e-8 {
		return v.Mul(1 / l)
	}
	return v
}

func smoothstep(e0, e1, x float32) float32 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := math.Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// DepthKernel writes depth only.
func DepthKernel() Kernel {
	return NewKernel([]string{"modelMatrix", "viewMatrix", "projMatrix"}, func(u *Uniforms) Stage {
		mvp := u.Mat4("projMatrix").Mul4(u.Mat4("viewMatrix")).Mul4(u.Mat4("modelMatrix"))
		return Stage{
			Vertex: func(v *metadata.Vertex3D) (mgl32.Vec4, Varyings) {
				return mvp.Mul4x1(v.Position.Vec4(1)), Varyings{}
			},
			Fragment: func(*Varyings, *Sampler) (Outputs, bool) {
				return Outputs{}, false
			},
		}
	})
}

// FrontKernel writes albedo to output 0 and view-space normal xy, specular
// intensity and exponent/128 to output 1.
func FrontKernel() Kernel {
	names := []string{
		"modelMatrix", "viewMatrix", "projMatrix", "invModelMatrix",
		"camPos", "rainAmount", "time",
		"colorMap", "normalMap", "specularMap",
	}
	return NewKernel(names, func(u *Uniforms) Stage {
		model := u.Mat4("modelMatrix")
		view := u.Mat4("viewMatrix")
		viewProj := u.Mat4("projMatrix").Mul4(view)
		normalMatrix := u.Mat4("invModelMatrix").Mat3().Transpose()
		modelRot := model.Mat3()
		viewRot := view.Mat3()
		camPos := u.Vec3("camPos")
		rain := u.Float("rainAmount")
		time := u.Float("time")
		colorUnit, normalUnit, specUnit := u.Int("colorMap"), u.Int("normalMap"), u.Int("specularMap")

		return Stage{
			Vertex: func(v *metadata.Vertex3D) (mgl32.Vec4, Varyings) {
				var out Varyings
				world := model.Mul4x1(v.Position.Vec4(1))
				out[0], out[1] = v.Texcoord[0], v.Texcoord[1]
				putVec3(&out, 2, normalMatrix.Mul3x1(v.Normal))
				putVec3(&out, 5, modelRot.Mul3x1(v.Tangent.Vec3()))
				out[8] = v.Tangent[3]
				putVec3(&out, 9, world.Vec3())
				return viewProj.Mul4x1(world), out
			},
			Fragment: func(in *Varyings, tex *Sampler) (Outputs, bool) {
				uv := mgl32.Vec2{in[0], in[1]}
				n := safeNormalize(vec3At(in, 2))
				t := vec3At(in, 5)
				t = safeNormalize(t.Sub(n.Mul(n.Dot(t))))
				handed := in[8]
				if handed == 0 {
					handed = 1
				}
				world := vec3At(in, 9)

				albedo := tex.Sample(colorUnit, uv).Vec3()
				if nm := tex.Sample(normalUnit, uv); nm[3] > 0 {
					ts := nm.Vec3().Mul(2).Sub(mgl32.Vec3{1, 1, 1})
					b := n.Cross(t).Mul(handed)
					n = safeNormalize(t.Mul(ts[0]).Add(b.Mul(ts[1])).Add(n.Mul(ts[2])))
				}
				spec := tex.Sample(specUnit, uv)[0]

				wet := rain * (0.5 + 0.5*math32.Sin(time*1.7+world[1]*25+world[0]*7))
				albedo = albedo.Mul(1 - 0.25*wet)
				spec += (1 - spec) * 0.6 * wet
				viewDir := safeNormalize(camPos.Sub(world))
				fresnel := math32.Pow(1-math.Clamp(n.Dot(viewDir), 0, 1), 5)
				spec = math.Clamp(spec+fresnel*wet*0.5, 0, 1)
				exponent := 16 + 48*wet + 16*spec

				nv := safeNormalize(viewRot.Mul3x1(n))
				return Outputs{
					Colors: [metadata.AuxSlotCount]mgl32.Vec4{
						albedo.Vec4(1),
						{nv[0], nv[1], spec, exponent / 128},
					},
					Count: 2,
				}, false
			},
		}
	})
}

func linearDepth(z, near, far float32) float32 {
	ndc := 2*z - 1
	return 2 * near * far / (far + near - ndc*(far-near))
}

// LightKernel computes one spotlight's contribution from the front targets.
func LightKernel() Kernel {
	names := []string{
		"invViewMatrix", "invProjMatrix", "textureMatrix",
		"density", "specularOnly",
		"spotlightNearFar", "spotlightPos", "spotlightDir", "spotlightColor", "spotlightCosOuter",
		"depthMap", "albedoMap", "normalMap", "shadowMap",
	}
	return NewKernel(names, func(u *Uniforms) Stage {
		invView := u.Mat4("invViewMatrix")
		invViewRot := invView.Mat3()
		invProj := u.Mat4("invProjMatrix")
		textureMatrix := u.Mat4("textureMatrix")
		density := max(u.Float("density"), 1e-3)
		specOnly := u.Int("specularOnly") != 0
		nearFar := u.Vec2("spotlightNearFar")
		lightPos := u.Vec3("spotlightPos")
		lightDir := safeNormalize(u.Vec3("spotlightDir"))
		lightColor := u.Vec3("spotlightColor")
		cosOuter := u.Float("spotlightCosOuter")
		cosInner := cosOuter + (1-cosOuter)*0.2
		camPos := invView.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
		depthUnit, albedoUnit, normalUnit, shadowUnit := u.Int("depthMap"), u.Int("albedoMap"), u.Int("normalMap"), u.Int("shadowMap")
		sssTint := mgl32.Vec3{1, 0.45, 0.3}
		wrap := 0.5 / density

		return Stage{
			Vertex: fullScreenVertex,
			Fragment: func(in *Varyings, tex *Sampler) (Outputs, bool) {
				uv := mgl32.Vec2{in[0], in[1]}
				d := tex.Sample(depthUnit, uv)[0]
				if d >= 1 {
					return single(mgl32.Vec4{}), false
				}
				clip := mgl32.Vec4{uv[0]*2 - 1, uv[1]*2 - 1, d*2 - 1, 1}
				vp := invProj.Mul4x1(clip)
				viewPos := vp.Vec3().Mul(1 / vp[3])
				world := invView.Mul4x1(viewPos.Vec4(1)).Vec3()

				albedo := tex.Sample(albedoUnit, uv).Vec3()
				normalSpec := tex.Sample(normalUnit, uv)
				nz := math32.Sqrt(max(0, 1-normalSpec[0]*normalSpec[0]-normalSpec[1]*normalSpec[1]))
				n := safeNormalize(invViewRot.Mul3x1(mgl32.Vec3{normalSpec[0], normalSpec[1], nz}))
				spec, exponent := normalSpec[2], max(normalSpec[3]*128, 1)

				toLight := lightPos.Sub(world)
				dist := toLight.Len()
				l := safeNormalize(toLight)
				cone := smoothstep(cosOuter, cosInner, l.Mul(-1).Dot(lightDir))
				if cone <= 0 {
					return single(mgl32.Vec4{}), false
				}
				atten := 1 / max(dist*dist, 0.01)

				lit, thickness := float32(1), float32(0)
				sc := textureMatrix.Mul4x1(viewPos.Vec4(1))
				if sc[3] > 0 {
					sc = sc.Mul(1 / sc[3])
					if sc[0] >= 0 && sc[0] <= 1 && sc[1] >= 0 && sc[1] <= 1 && sc[2] <= 1 {
						sd := tex.Sample(shadowUnit, mgl32.Vec2{sc[0], sc[1]})[0]
						if sc[2]-0.002 > sd {
							lit = 0
							thickness = max(linearDepth(sc[2], nearFar[0], nearFar[1])-linearDepth(sd, nearFar[0], nearFar[1]), 0)
						}
					}
				}

				ndotl := n.Dot(l)
				diffuse := max((ndotl+wrap)/(1+wrap), 0) * lit
				trans := (1 - lit) * math32.Exp(-thickness*density*10) * 0.6
				h := safeNormalize(l.Add(safeNormalize(camPos.Sub(world))))
				specular := spec * math32.Pow(max(n.Dot(h), 0), exponent) * lit

				scale := cone * atten
				var rad mgl32.Vec3
				if specOnly {
					rad = mgl32.Vec3{specular, specular, specular}
				} else {
					sss := mgl32.Vec3{albedo[0] * sssTint[0], albedo[1] * sssTint[1], albedo[2] * sssTint[2]}
					rad = albedo.Mul(diffuse).Add(sss.Mul(trans)).Add(mgl32.Vec3{specular, specular, specular})
				}
				rad = mgl32.Vec3{rad[0] * lightColor[0], rad[1] * lightColor[1], rad[2] * lightColor[2]}.Mul(scale)
				return single(rad.Vec4(1)), false
			},
		}
	})
}

// gaussian weights for taps 0..4 of the 9-tap separable kernel
var blurWeights = [5]float32{0.227027, 0.1945946, 0.1216216, 0.054054, 0.016216}

// BlurKernel is the horizontal or vertical half of the separable blur. Tap
// coordinates are clamped to the centres of the edge texels of a texture
// that is width x height pixels.
func BlurKernel(horizontal bool) Kernel {
	return NewKernel([]string{"width", "height", "source"}, func(u *Uniforms) Stage {
		size := u.Int("height")
		if horizontal {
			size = u.Int("width")
		}
		texel := 1 / float32(max(size, 1))
		lo, hi := 0.5*texel, 1-0.5*texel
		axis := 1
		if horizontal {
			axis = 0
		}
		unit := u.Int("source")

		return Stage{
			Vertex: fullScreenVertex,
			Fragment: func(in *Varyings, tex *Sampler) (Outputs, bool) {
				uv := mgl32.Vec2{in[0], in[1]}
				sum := tex.Sample(unit, uv).Mul(blurWeights[0])
				for i := 1; i < len(blurWeights); i++ {
					off := float32(i) * texel
					a, b := uv, uv
					a[axis] = math.Clamp(uv[axis]+off, lo, hi)
					b[axis] = math.Clamp(uv[axis]-off, lo, hi)
					sum = sum.Add(tex.Sample(unit, a).Mul(blurWeights[i]))
					sum = sum.Add(tex.Sample(unit, b).Mul(blurWeights[i]))
				}
				return single(sum), false
			},
		}
	})
}

// TonemapKernel adds the blurred bloom levels to the radiance and maps the
// result with an exponential curve and gamma 2.2.
func TonemapKernel() Kernel {
	return NewKernel([]string{"exposure", "bloom", "radiance", "bloomMap"}, func(u *Uniforms) Stage {
		exposure := u.Float("exposure")
		bloom := u.Float("bloom")
		radianceUnit, bloomUnit := u.Int("radiance"), u.Int("bloomMap")

		return Stage{
			Vertex: fullScreenVertex,
			Fragment: func(in *Varyings, tex *Sampler) (Outputs, bool) {
				uv := mgl32.Vec2{in[0], in[1]}
				hdr := tex.Sample(radianceUnit, uv).Vec3()
				var glow mgl32.Vec3
				for lod := float32(1); lod <= 4; lod++ {
					glow = glow.Add(tex.SampleLod(bloomUnit, uv, lod).Vec3())
				}
				c := hdr.Add(glow.Mul(bloom / 4))
				var out mgl32.Vec4
				for i := 0; i < 3; i++ {
					mapped := 1 - math32.Exp(-c[i]*exposure)
					out[i] = math32.Pow(max(mapped, 0), 1/2.2)
				}
				out[3] = 1
				return single(out), false
			},
		}
	})
}
