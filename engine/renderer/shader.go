package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

// Shader is a linked program with a cache of uniform locations. Setters for
// uniforms the program does not have are no-ops.
type Shader struct {
	Name     string
	State    metadata.ShaderState
	backend  RendererBackend
	program  metadata.ProgramHandle
	source   metadata.ShaderSource
	uniforms map[string]metadata.UniformLocation
	missing  map[string]struct{}
}

// NewShader compiles and links source.
func NewShader(backend RendererBackend, source metadata.ShaderSource) (*Shader, error) {
	program, err := backend.ProgramCreate(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", source.Name, ErrShaderCompile, err)
	}
	core.LogDebug("shader %s linked", source.Name)
	return &Shader{
		Name:     source.Name,
		State:    metadata.SHADER_STATE_INITIALIZED,
		backend:  backend,
		program:  program,
		source:   source,
		uniforms: make(map[string]metadata.UniformLocation),
		missing:  make(map[string]struct{}),
	}, nil
}

// Reload relinks the program from new sources. On failure the old program
// stays in use.
func (s *Shader) Reload(source metadata.ShaderSource) error {
	program, err := s.backend.ProgramCreate(source)
	if err != nil {
		return fmt.Errorf("shader %s: %w: %w", s.Name, ErrShaderCompile, err)
	}
	s.backend.ProgramDestroy(s.program)
	s.program = program
	s.source = source
	clear(s.uniforms)
	clear(s.missing)
	core.LogInfo("shader %s reloaded", s.Name)
	return nil
}

func (s *Shader) Bind() {
	s.backend.ProgramUse(s.program)
}

func (s *Shader) Unbind() {
	s.backend.ProgramUse(metadata.InvalidProgram)
}

func (s *Shader) Program() metadata.ProgramHandle {
	return s.program
}

func (s *Shader) Source() metadata.ShaderSource {
	return s.source
}

// UniformLocation looks up name once and caches the answer, including absence.
func (s *Shader) UniformLocation(name string) metadata.UniformLocation {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	loc := s.backend.UniformLocation(s.program, name)
	s.uniforms[name] = loc
	if !loc.Valid() {
		if _, seen := s.missing[name]; !seen {
			s.missing[name] = struct{}{}
			core.LogDebug("shader %s has no uniform %q, writes skipped", s.Name, name)
		}
	}
	return loc
}

// HasUniform reports whether the program declares and uses name.
func (s *Shader) HasUniform(name string) bool {
	return s.UniformLocation(name).Valid()
}

func (s *Shader) SetInt(name string, v int32) {
	if loc := s.UniformLocation(name); loc.Valid() {
		s.backend.Uniform1i(loc, v)
	}
}

func (s *Shader) SetFloat(name string, v float32) {
	if loc := s.UniformLocation(name); loc.Valid() {
		s.backend.Uniform1f(loc, v)
	}
}

func (s *Shader) SetVec2(name string, v mgl32.Vec2) {
	if loc := s.UniformLocation(name); loc.Valid() {
		s.backend.Uniform2f(loc, v)
	}
}

func (s *Shader) SetVec3(name string, v mgl32.Vec3) {
	if loc := s.UniformLocation(name); loc.Valid() {
		s.backend.Uniform3f(loc, v)
	}
}

func (s *Shader) SetMat4(name string, m mgl32.Mat4) {
	if loc := s.UniformLocation(name); loc.Valid() {
		s.backend.UniformMatrix4f(loc, m)
	}
}

// SetTexture binds texture to unit and points the sampler uniform at it.
func (s *Shader) SetTexture(name string, unit uint32, texture metadata.TextureHandle) {
	s.backend.TextureBind(unit, texture)
	s.SetInt(name, int32(unit))
}

func (s *Shader) Destroy() {
	if s.State == metadata.SHADER_STATE_DESTROYED {
		return
	}
	s.backend.ProgramDestroy(s.program)
	s.program = metadata.InvalidProgram
	s.State = metadata.SHADER_STATE_DESTROYED
}
