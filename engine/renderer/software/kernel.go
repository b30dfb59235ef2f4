package software

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Varyings are the per-vertex values interpolated across a triangle.
type Varyings [16]float32

// Outputs holds one colour per draw buffer, in fragment output order.
type Outputs struct {
	Colors [metadata.AuxSlotCount]mgl32.Vec4
	Count  int
}

// Stage is the vertex and fragment function pair of one prepared draw.
type Stage struct {
	Vertex   func(v *metadata.Vertex3D) (mgl32.Vec4, Varyings)
	Fragment func(in *Varyings, tex *Sampler) (Outputs, bool)
}

// Kernel is the CPU counterpart of one GLSL program. Uniforms lists the
// names the program declares; Prepare reads their values once per draw.
type Kernel interface {
	Uniforms() []string
	Prepare(u *Uniforms) Stage
}

// Uniforms holds the values set on a program. Getters return the GLSL
// default for names that were never set.
type Uniforms struct {
	names  []string
	index  map[string]metadata.UniformLocation
	values map[metadata.UniformLocation]interface{}
}

func newUniforms(names []string) *Uniforms {
	u := &Uniforms{
		names:  names,
		index:  make(map[string]metadata.UniformLocation, len(names)),
		values: make(map[metadata.UniformLocation]interface{}, len(names)),
	}
	for i, n := range names {
		u.index[n] = metadata.UniformLocation(i)
	}
	return u
}

func (u *Uniforms) location(name string) metadata.UniformLocation {
	if loc, ok := u.index[name]; ok {
		return loc
	}
	return metadata.InvalidUniformLocation
}

func (u *Uniforms) set(loc metadata.UniformLocation, v interface{}) bool {
	if !loc.Valid() || int(loc) >= len(u.names) {
		return false
	}
	u.values[loc] = v
	return true
}

func (u *Uniforms) get(name string) (interface{}, bool) {
	loc, ok := u.index[name]
	if !ok {
		return nil, false
	}
	v, ok := u.values[loc]
	return v, ok
}

// IsSet reports whether name was written since the program was created.
func (u *Uniforms) IsSet(name string) bool {
	_, ok := u.get(name)
	return ok
}

func (u *Uniforms) Int(name string) int32 {
	if v, ok := u.get(name); ok {
		if i, ok := v.(int32); ok {
			return i
		}
	}
	return 0
}

func (u *Uniforms) Float(name string) float32 {
	if v, ok := u.get(name); ok {
		if f, ok := v.(float32); ok {
			return f
		}
	}
	return 0
}

func (u *Uniforms) Vec2(name string) mgl32.Vec2 {
	if v, ok := u.get(name); ok {
		if f, ok := v.(mgl32.Vec2); ok {
			return f
		}
	}
	return mgl32.Vec2{}
}

func (u *Uniforms) Vec3(name string) mgl32.Vec3 {
	if v, ok := u.get(name); ok {
		if f, ok := v.(mgl32.Vec3); ok {
			return f
		}
	}
	return mgl32.Vec3{}
}

// Mat4 defaults to identity so unset transforms leave positions unchanged.
func (u *Uniforms) Mat4(name string) mgl32.Mat4 {
	if v, ok := u.get(name); ok {
		if m, ok := v.(mgl32.Mat4); ok {
			return m
		}
	}
	return mgl32.Ident4()
}

// Sampler reads the textures bound to texture units during a draw and counts
// coordinates that fall outside [0,1].
type Sampler struct {
	backend    *Backend
	outOfRange int
}

func (s *Sampler) texture(unit int32) *texture {
	if unit < 0 || int(unit) >= len(s.backend.units) {
		return nil
	}
	return s.backend.textures[s.backend.units[unit]]
}

func (s *Sampler) check(uv mgl32.Vec2) {
	if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
		s.outOfRange++
	}
}

// Sample reads the texture on unit; unbound units read as transparent black.
func (s *Sampler) Sample(unit int32, uv mgl32.Vec2) mgl32.Vec4 {
	s.check(uv)
	t := s.texture(unit)
	if t == nil {
		return mgl32.Vec4{}
	}
	return t.sample(uv)
}

// SampleLod reads an explicit mip level of the texture on unit.
func (s *Sampler) SampleLod(unit int32, uv mgl32.Vec2, lod float32) mgl32.Vec4 {
	s.check(uv)
	t := s.texture(unit)
	if t == nil {
		return mgl32.Vec4{}
	}
	return t.sampleLod(uv, lod)
}

// Size returns the level-0 size of the texture on unit.
func (s *Sampler) Size(unit int32) (int, int) {
	t := s.texture(unit)
	if t == nil {
		return 0, 0
	}
	return t.width(), t.height()
}
