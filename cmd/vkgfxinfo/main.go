// Command vkgfxinfo loads the Vulkan rendering core against a DRM render
// node and reports the device and format/modifier capabilities it found.
// It replaces the teacher's GLFW-windowed entry point: this backend is
// headless by design (see SPEC_FULL.md REDESIGN FLAGS).
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/surfacepm/vkgfx/engine/config"
	"github.com/surfacepm/vkgfx/engine/core"
	"github.com/surfacepm/vkgfx/engine/renderer"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	renderNode := flag.String("render-node", "/dev/dri/renderD128", "DRM render node to open")
	flag.Parse()

	watcher, err := config.NewWatcher(*configPath)
	if err != nil {
		core.LogFatal("config: %v", err)
	}
	defer watcher.Close()
	cfg := watcher.Current()
	core.SetLevel(cfg.LogLevel)

	node := *renderNode
	if cfg.PreferredRenderNode != "" {
		node = cfg.PreferredRenderNode
	}

	fillVert, fillFrag, texVert, texFrag, err := loadShaders()
	if err != nil {
		core.LogFatal("shaders: %v", err)
	}

	ctx, err := renderer.NewVulkanContext(node, cfg.Validation, fillVert, fillFrag, texVert, texFrag)
	if err != nil {
		core.LogFatal("renderer: %v", err)
	}
	core.LogInfo("opened render node %s", ctx.RenderNode())
	for fourCC, f := range ctx.Formats() {
		core.LogInfo("format 0x%08x: %d read modifiers, %d write modifiers", fourCC, len(f.ReadModifiers), len(f.WriteModifiers))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	done := make(chan struct{})
	go func() {
		<-sigCh
		core.LogInfo("shutting down")
		close(done)
	}()

	<-done
	ctx.Teardown()
}
