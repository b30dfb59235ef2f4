// Package shaders embeds the GLSL sources of the pipeline programs.
package shaders

import (
	"embed"
	"fmt"

	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

//go:embed *.glsl
var files embed.FS

// stage file names per program; blur and tonemap share the full-screen vertex stage
var programs = map[string][2]string{
	metadata.ShaderDepth:   {"depth_vert.glsl", "depth_frag.glsl"},
	metadata.ShaderFront:   {"front_vert.glsl", "front_frag.glsl"},
	metadata.ShaderLight:   {"basic_vert.glsl", "light_frag.glsl"},
	metadata.ShaderHBlur:   {"basic_vert.glsl", "h_blur_frag.glsl"},
	metadata.ShaderVBlur:   {"basic_vert.glsl", "v_blur_frag.glsl"},
	metadata.ShaderTonemap: {"basic_vert.glsl", "tonemap_frag.glsl"},
}

// Files returns the vertex and fragment file names of a program.
func Files(name string) (vert, frag string, ok bool) {
	f, ok := programs[name]
	return f[0], f[1], ok
}

// Load returns the embedded sources of a program.
func Load(name string) (metadata.ShaderSource, error) {
	f, ok := programs[name]
	if !ok {
		return metadata.ShaderSource{}, fmt.Errorf("no program named %q", name)
	}
	vert, err := files.ReadFile(f[0])
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	frag, err := files.ReadFile(f[1])
	if err != nil {
		return metadata.ShaderSource{}, err
	}
	return metadata.ShaderSource{Name: name, Vertex: string(vert), Fragment: string(frag)}, nil
}

// All returns every pipeline program in link order.
func All() ([]metadata.ShaderSource, error) {
	out := make([]metadata.ShaderSource, 0, len(metadata.ShaderNames))
	for _, name := range metadata.ShaderNames {
		s, err := Load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ProgramsUsing lists the programs that read file.
func ProgramsUsing(file string) []string {
	var out []string
	for _, name := range metadata.ShaderNames {
		f := programs[name]
		if f[0] == file || f[1] == file {
			out = append(out, name)
		}
	}
	return out
}
