// Package config — .utas.yaml project file support.
//
// When a .utas.yaml file exists in the working directory it supplies
// defaults for the generation run; explicit command-line arguments win
// over it. The file is optional: without it every setting must come
// from the command line.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in the working directory.
const FileName = ".utas.yaml"

// Supported platform selectors.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// File is the top-level .utas.yaml structure.
type File struct {
	// Platform is the default target platform ("android" or "ios").
	Platform string `yaml:"platform,omitempty"`
	// InputDir is the directory scanned for twine catalogs.
	InputDir string `yaml:"input_dir,omitempty"`
	// OutputDir is the directory the resource tree is written into.
	OutputDir string `yaml:"output_dir,omitempty"`
	// DefaultLang back-fills untranslated iOS strings (empty disables).
	DefaultLang string `yaml:"default_lang,omitempty"`
	// Stem overrides the merged iOS output file stem (default "Localizable").
	Stem string `yaml:"stem,omitempty"`
}

// Load reads .utas.yaml from dir. Returns (nil, nil) when the file does
// not exist.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the platform selector. An unrecognized platform is
// fatal for the run.
func (f *File) Validate() error {
	switch f.Platform {
	case "", PlatformAndroid, PlatformIOS:
		return nil
	default:
		return fmt.Errorf("unsupported platform %q (want %q or %q)", f.Platform, PlatformAndroid, PlatformIOS)
	}
}
