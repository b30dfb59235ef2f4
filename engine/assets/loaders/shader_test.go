package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/shaders"
)

func TestShaderLoaderEmbedded(t *testing.T) {
	loader := &ShaderLoader{}
	res, err := loader.Load("", metadata.ResourceTypeShader, metadata.ShaderLight)
	require.NoError(t, err)

	embedded, err := shaders.Load(metadata.ShaderLight)
	require.NoError(t, err)
	assert.Equal(t, embedded, res.Data)
	assert.Equal(t, metadata.ShaderLight, res.Name)
}

func TestShaderLoaderOverride(t *testing.T) {
	dir := t.TempDir()
	_, frag, ok := shaders.Files(metadata.ShaderTonemap)
	require.True(t, ok)
	require.NoError(t, os.WriteFile(filepath.Join(dir, frag), []byte("// edited\n"), 0o644))

	loader := &ShaderLoader{}
	res, err := loader.Load(dir, metadata.ResourceTypeShader, metadata.ShaderTonemap)
	require.NoError(t, err)
	src := res.Data.(metadata.ShaderSource)
	assert.Equal(t, "// edited\n", src.Fragment)

	embedded, err := shaders.Load(metadata.ShaderTonemap)
	require.NoError(t, err)
	assert.Equal(t, embedded.Vertex, src.Vertex)
}

func TestShaderLoaderErrors(t *testing.T) {
	loader := &ShaderLoader{}
	_, err := loader.Load("", metadata.ResourceTypeShader, 42)
	assert.Error(t, err)
	_, err = loader.Load("", metadata.ResourceTypeShader, "missing")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}
