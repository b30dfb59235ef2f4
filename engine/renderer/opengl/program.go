package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

func (b *Backend) ProgramCreate(source metadata.ShaderSource) (metadata.ProgramHandle, error) {
	vert, err := compileShader(source.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return metadata.InvalidProgram, fmt.Errorf("%s vertex: %w", source.Name, err)
	}
	defer gl.DeleteShader(vert)
	frag, err := compileShader(source.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return metadata.InvalidProgram, fmt.Errorf("%s fragment: %w", source.Name, err)
	}
	defer gl.DeleteShader(frag)

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return metadata.InvalidProgram, fmt.Errorf("%s link failed: %v", source.Name, strings.TrimRight(log, "\x00"))
	}
	gl.DetachShader(prog, vert)
	gl.DetachShader(prog, frag)
	return metadata.ProgramHandle(prog), nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (b *Backend) ProgramDestroy(program metadata.ProgramHandle) {
	if program != metadata.InvalidProgram {
		gl.DeleteProgram(uint32(program))
	}
}

func (b *Backend) ProgramUse(program metadata.ProgramHandle) {
	gl.UseProgram(uint32(program))
}

func (b *Backend) UniformLocation(program metadata.ProgramHandle, name string) metadata.UniformLocation {
	return metadata.UniformLocation(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}
