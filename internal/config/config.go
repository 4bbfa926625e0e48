// Package config loads the packaging configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/serverlesspack/slspack/internal/platform"
)

// FolderInclude describes one bulk-included directory tree.
type FolderInclude struct {
	// ExcludedFolders holds glob patterns of directory names pruned before
	// descent.
	ExcludedFolders []string `yaml:"excluded_folders"`
	// ExcludedExtensions holds file extensions (dot included) that are not
	// bundled.
	ExcludedExtensions []string `yaml:"excluded_extensions"`
}

// Output names the artifacts the run produces.
type Output struct {
	Manifest string `yaml:"manifest"`
	Zip      string `yaml:"zip"`
}

// Config is the packaging configuration, decoded from YAML.
type Config struct {
	// RootFile is the entry source file whose import graph is resolved.
	RootFile string `yaml:"root_file"`
	// TargetOS is the OS the packaged output runs on; empty defaults to the
	// build host with a warning.
	TargetOS string `yaml:"target_os"`
	// LibraryRoots are the site-packages directories to index.
	LibraryRoots []string `yaml:"library_roots"`
	// StdlibRoot is the host language's standard-library install location;
	// anything under it is never bundled.
	StdlibRoot string `yaml:"stdlib_root"`
	// Folders maps directory paths to bulk-include settings.
	Folders map[string]FolderInclude `yaml:"folders"`
	Output  Output                   `yaml:"output"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// Relative paths in the config are anchored at the config file's dir.
	base := filepath.Dir(path)
	cfg.RootFile = anchor(base, cfg.RootFile)
	cfg.StdlibRoot = anchor(base, cfg.StdlibRoot)
	for i, root := range cfg.LibraryRoots {
		cfg.LibraryRoots[i] = anchor(base, root)
	}
	folders := make(map[string]FolderInclude, len(cfg.Folders))
	for dir, inc := range cfg.Folders {
		folders[anchor(base, dir)] = inc
	}
	cfg.Folders = folders
	cfg.Output.Manifest = anchor(base, cfg.Output.Manifest)
	cfg.Output.Zip = anchor(base, cfg.Output.Zip)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fatal configuration conditions.
func (c *Config) Validate() error {
	if c.RootFile == "" {
		return fmt.Errorf("config: root_file is required")
	}
	if c.TargetOS != "" {
		if _, err := platform.Parse(c.TargetOS); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func anchor(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
