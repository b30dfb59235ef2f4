//go:build mage

package main

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "engine/renderer/shaders"

// Builds the demo binary into bin/.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/fakesss", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Validates every GLSL source with glslangValidator, when it is installed.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	if _, err := exec.LookPath("glslangValidator"); err != nil {
		fmt.Println("glslangValidator not found, skipping shader validation")
		return nil
	}
	files, err := filepath.Glob(filepath.Join(shaderDir, "*.glsl"))
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		stage := "frag"
		if strings.HasSuffix(f, "_vert.glsl") {
			stage = "vert"
		}
		if _, err := executeCmd("glslangValidator", withArgs("-S", stage, f)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Runs the test suite. Packages importing glfw need cgo.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}
