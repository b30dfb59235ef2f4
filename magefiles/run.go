//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the demo in a window.
func (Run) Demo() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run demo...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders one frame with the software backend into frame.png.
func (Run) Headless() error {
	fmt.Println("Render headless frame...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "config.toml", "-headless", "-frames", "1", "-out", "frame.png"), withStream()); err != nil {
		return err
	}
	return nil
}
