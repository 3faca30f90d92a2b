package main

import (
	"encoding/binary"
	"os"
)

// shaderDir mirrors magefiles/build.go's glslc output directory for the
// two fixed pipelines' SPIR-V modules.
const shaderDir = "assets/shaders"

func loadShaders() (fillVert, fillFrag, texVert, texFrag []uint32, err error) {
	load := func(name string) ([]uint32, error) {
		return loadSpirv(shaderDir + "/" + name)
	}
	if fillVert, err = load("fill.vert.spv"); err != nil {
		return
	}
	if fillFrag, err = load("fill.frag.spv"); err != nil {
		return
	}
	if texVert, err = load("texture.vert.spv"); err != nil {
		return
	}
	if texFrag, err = load("texture.frag.spv"); err != nil {
		return
	}
	return
}

func loadSpirv(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}
