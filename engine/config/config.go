// Package config loads the small set of knobs this rendering core exposes:
// whether Vulkan validation is enabled, which render node to prefer, and
// the log level. An optional config file is layered over the built-in
// defaults, and a set JAY_VULKAN_VALIDATION environment variable overrides
// both for validation, using github.com/pelletier/go-toml/v2 for the file
// format and github.com/fsnotify/fsnotify to pick up edits without a
// restart.
package config

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/surfacepm/vkgfx/engine/core"
)

// validationEnvVar, when set, decides validation on its own: "1" enables
// it and any other value disables it. When it is unset, the config file's
// value (default false) applies.
const validationEnvVar = "JAY_VULKAN_VALIDATION"

// Config is the renderer's ambient configuration surface.
type Config struct {
	// Validation enables the Vulkan validation layer and debug-report
	// callback (engine/renderer/vulkan/instance.go).
	Validation bool `toml:"validation"`
	// PreferredRenderNode, if non-empty, is the render-node path that
	// cmd/vkgfxinfo uses instead of its -render-node flag value; device
	// selection in engine/renderer/vulkan/device.go then matches that
	// node's dev_t.
	PreferredRenderNode string `toml:"preferred_render_node"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Validation: os.Getenv(validationEnvVar) == "1",
		LogLevel:   "info",
	}
}

// Load reads path (if non-empty and present) as TOML, layering it over the
// built-in defaults, then re-applies the JAY_VULKAN_VALIDATION environment
// variable on top (the environment always wins over a stale config file,
// matching the single-environment-variable contract in the component
// design's external interfaces).
func Load(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if v, ok := os.LookupEnv(validationEnvVar); ok {
		cfg.Validation = v == "1"
	}
	return cfg, nil
}

// Watcher reloads a Config from disk whenever its backing file changes,
// publishing the result through Current. Renderer construction only reads
// Config once (Vulkan validation layers can't be toggled after instance
// creation); the watcher exists for the knobs that can change live, today
// just LogLevel.
type Watcher struct {
	path    string
	current atomic.Pointer[Config]
	watcher *fsnotify.Watcher
	once    sync.Once
}

// NewWatcher loads path once and starts watching it for edits. If path is
// empty, it returns a Watcher that never updates beyond the initial
// default config.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{path: path}
	w.current.Store(&cfg)

	if path == "" {
		return w, nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.watcher = fw
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogWarn("config: reload of %s failed: %v", w.path, err)
				continue
			}
			core.SetLevel(cfg.LogLevel)
			w.current.Store(&cfg)
			core.LogInfo("config: reloaded %s", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("config: watcher error: %v", err)
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	return *w.current.Load()
}

// Close stops the underlying filesystem watch, if any.
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	var err error
	w.once.Do(func() { err = w.watcher.Close() })
	return err
}
