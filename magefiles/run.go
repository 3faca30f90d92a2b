//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Info builds the fixed pipelines' shaders and runs the headless
// capability-reporting command against a DRM render node.
func (Run) Info() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run vkgfxinfo...")
	if _, err := executeCmd("go", withArgs("run", "./cmd/vkgfxinfo"), withStream()); err != nil {
		return err
	}
	return nil
}
