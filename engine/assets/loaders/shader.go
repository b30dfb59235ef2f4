package loaders

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
	"github.com/spaghettifunk/fakesss/engine/renderer/shaders"
)

// ShaderLoader builds program sources from a directory of GLSL files. Stages
// missing on disk fall back to the embedded copies.
type ShaderLoader struct{}

// Load reads the program named by params (a string) from the directory path.
func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	name, ok := params.(string)
	if !ok {
		return nil, fmt.Errorf("shader loader: expected program name, got %T", params)
	}
	vertFile, fragFile, ok := shaders.Files(name)
	if !ok {
		return nil, fmt.Errorf("%w: program %s", core.ErrAssetNotFound, name)
	}
	src, err := shaders.Load(name)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if src.Vertex, err = readOverride(filepath.Join(path, vertFile), src.Vertex); err != nil {
			return nil, err
		}
		if src.Fragment, err = readOverride(filepath.Join(path, fragFile), src.Fragment); err != nil {
			return nil, err
		}
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(src.Vertex) + len(src.Fragment)),
		Data:     src,
	}, nil
}

func readOverride(path, embedded string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return embedded, nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}
