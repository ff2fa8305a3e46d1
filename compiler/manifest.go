// Copyright © 2024 The ELPS authors

package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml"
)

// ManifestName is the file name of a zx project manifest.
const ManifestName = "zx.toml"

// Manifest describes a zx project.
//
//	[project]
//	name = "hello"
//	entry = "main.zx"
//	output = "hello.ll"
//
//	[check]
//	warnings-as-errors = true
type Manifest struct {
	Project ProjectConfig `toml:"project"`
	Check   CheckConfig   `toml:"check"`

	// Dir is the directory containing the manifest.
	Dir string `toml:"-"`
}

// ProjectConfig is the [project] table of a manifest.
type ProjectConfig struct {
	Name   string `toml:"name"`
	Entry  string `toml:"entry"`
	Output string `toml:"output"`
}

// CheckConfig is the [check] table of a manifest.
type CheckConfig struct {
	WarningsAsErrors bool `toml:"warnings-as-errors"`
	DebugDump        bool `toml:"debug-dump"`
}

// ErrNoManifest is returned by FindManifest when no directory holds a
// manifest.
var ErrNoManifest = errors.New("no " + ManifestName + " found")

// LoadManifest reads the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	buf, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}
	m, err := ParseManifest(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(dir, ManifestName), err)
	}
	m.Dir = dir
	return m, nil
}

// FindManifest loads the manifest in dir or the nearest parent directory
// that has one.
func FindManifest(dir string) (*Manifest, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return LoadManifest(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNoManifest
		}
		dir = parent
	}
}

// ParseManifest decodes and validates a manifest, filling in defaults.
func ParseManifest(buf []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := toml.Unmarshal(buf, m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if m.Project.Name == "" {
		return nil, errors.New("missing project name")
	}
	if !isIdentifier(m.Project.Name) {
		return nil, fmt.Errorf("project name must be an identifier: %q", m.Project.Name)
	}
	if m.Project.Entry == "" {
		m.Project.Entry = "main.zx"
	}
	if m.Project.Output == "" {
		m.Project.Output = m.Project.Name + ".ll"
	}
	return m, nil
}

// EntryPath returns the path of the project's entry file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir, m.Project.Entry)
}

// OutputPath returns the path emitted LLVM IR is written to.
func (m *Manifest) OutputPath() string {
	return filepath.Join(m.Dir, m.Project.Output)
}

// Options returns the compile options the manifest selects.
func (m *Manifest) Options() []Option {
	return []Option{WithWarningsAsErrors(m.Check.WarningsAsErrors)}
}

func isIdentifier(s string) bool {
	for i, c := range s {
		if c == '_' || c == '-' || unicode.IsLetter(c) || (i > 0 && unicode.IsDigit(c)) {
			continue
		}
		return false
	}
	return !strings.HasPrefix(s, "-")
}
