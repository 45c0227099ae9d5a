// Package config loads optional project configuration for the assembler.
// A project may keep an as64.yml (or .as64.yml) file next to its sources
// providing defaults that command-line flags override.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the project-level defaults.
type Config struct {
	// Output is the default object filename used when no .obj directive
	// names one.
	Output string `yaml:"output"`

	// OutputDir is prefixed to every object filename.
	OutputDir string `yaml:"outputDir"`

	// Listing writes the listing to standard output.
	Listing bool `yaml:"listing"`

	// Raw suppresses the two-byte load-address prefix in object files.
	Raw bool `yaml:"raw"`

	// Symbols predefines symbols, as the -D option does. Values are
	// decimal or 0x-prefixed hexadecimal strings.
	Symbols map[string]string `yaml:"symbols"`
}

// candidate filenames, in discovery order.
var filenames = []string{"as64.yml", ".as64.yml"}

// Load resolves the project configuration. An explicit path wins; otherwise
// the working directory is searched. A missing file is not an error.
func Load(workingDir, explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = discover(workingDir)
	}
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func discover(workingDir string) string {
	if workingDir == "" {
		workingDir = "."
	}
	for _, name := range filenames {
		path := filepath.Join(workingDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
