//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// shaderStages lists the two fixed pipelines' vertex/fragment sources
// (component design §4.5): fill has no descriptor set, texture samples
// one combined image sampler via push descriptor.
var shaderStages = []struct {
	stage string
	name  string
}{
	{"vert", "fill.vert"},
	{"frag", "fill.frag"},
	{"vert", "texture.vert"},
	{"frag", "texture.frag"},
}

func buildShaders() error {
	fmt.Println("Build shaders...")
	vkSDKPath := os.Getenv("VULKAN_SDK")
	for _, s := range shaderStages {
		src := fmt.Sprintf("assets/shaders/%s.glsl", s.name)
		dst := fmt.Sprintf("assets/shaders/%s.spv", s.name)
		if _, err := executeCmd(fmt.Sprintf("%s/bin/glslc", vkSDKPath), withArgs(fmt.Sprintf("-fshader-stage=%s", s.stage), src, "-o", dst), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Shaders compiles the fixed pipelines' GLSL sources to SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}
