package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project configuration file.
const FileName = "choreo.yaml"

// DefaultFPS is the sampling rate used when neither a flag, the scene nor the
// project sets one.
const DefaultFPS = 60

// Config represents the optional choreo.yaml configuration.
type Config struct {
	Play PlayConfig `yaml:"play"`
}

// PlayConfig contains sampling defaults for play.
type PlayConfig struct {
	FPS      int     `yaml:"fps,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root string
	// ModulePath is empty when Root has no go.mod.
	ModulePath  string
	ProjectName string
	FPS         int
	// Duration of zero means the full timeline.
	Duration float64
}

// LoadOptional reads choreo.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads choreo.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	if cfg.Play.FPS < 0 {
		return nil, fmt.Errorf("%s: play.fps must be positive, got %d", FileName, cfg.Play.FPS)
	}
	if cfg.Play.Duration < 0 {
		return nil, fmt.Errorf("%s: play.duration must not be negative, got %v", FileName, cfg.Play.Duration)
	}
	fps := cfg.Play.FPS
	if fps == 0 {
		fps = DefaultFPS
	}

	return &Resolved{
		Root:        dir,
		ModulePath:  modulePath,
		ProjectName: projectName(modulePath, dir),
		FPS:         fps,
		Duration:    cfg.Play.Duration,
	}, nil
}

// FindProjectRoot walks up from start to the nearest directory holding
// choreo.yaml or go.mod. It returns start itself when neither exists.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for d := dir; ; {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(d, name)); err == nil {
				return d, nil
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir, nil
		}
		d = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func projectName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
			parts := strings.Split(prefix, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "choreo"
	}
	return base
}
