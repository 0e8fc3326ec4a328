package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Lint lintConfig `toml:"lint"`
}

type lintConfig struct {
	// Namespace resolves unqualified command tokens (default primary-api).
	Namespace string `toml:"namespace"`
	// MaxDiagnostics caps one published diagnostic set.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// DebounceMS is the watch-mode quiet period in milliseconds.
	DebounceMS int `toml:"debounce_ms"`
	// Jobs bounds directory-run parallelism (0 = number of CPUs).
	Jobs int `toml:"jobs"`
	// DiskCache enables the persistent result cache.
	DiskCache bool `toml:"disk_cache"`
}

// findSceneLintToml ищет scenelint.toml вверх от startDir до корня.
func findSceneLintToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "scenelint.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest returns the nearest manifest, or ok=false when none
// exists anywhere up the tree. Missing manifest is not an error: все
// настройки имеют рабочие значения по умолчанию.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findSceneLintToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	if ns := strings.TrimSpace(cfg.Lint.Namespace); ns != "" {
		cfg.Lint.Namespace = ns
	}
	if cfg.Lint.MaxDiagnostics < 0 {
		return nil, true, fmt.Errorf("%s: [lint].max_diagnostics must not be negative", manifestPath)
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}
