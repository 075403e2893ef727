package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project represents the top-level pony.yaml configuration.
type Project struct {
	// Entry is the front-end output file to compile (relative to pony.yaml).
	Entry string `yaml:"entry"`

	// Output is the bundle path written by `pony build`.
	// Defaults to the entry name with the bundle extension.
	Output string `yaml:"output,omitempty"`

	// Debug holds developer-facing compilation switches.
	Debug DebugOptions `yaml:"debug,omitempty"`
}

// DebugOptions controls optional compiler diagnostics output.
type DebugOptions struct {
	// TraceCompile enables per-stage structured logging.
	TraceCompile bool `yaml:"trace_compile,omitempty"`

	// Disasm prints the disassembled image after code generation.
	Disasm bool `yaml:"disasm,omitempty"`
}

// LoadProject reads and validates a pony.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if p.Entry == "" {
		return nil, fmt.Errorf("%s: missing required field 'entry'", path)
	}
	if p.Output == "" {
		base := p.Entry
		for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
			base = base[:len(base)-len(ext)]
		}
		p.Output = base + BundleFileExt
	}
	return &p, nil
}
