package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ProjectConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProject(t *testing.T) {
	path := writeProject(t, `
entry: src/main.pony.json
output: build/main.ponyb
debug:
  trace_compile: true
`)
	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "src/main.pony.json", p.Entry)
	assert.Equal(t, "build/main.ponyb", p.Output)
	assert.True(t, p.Debug.TraceCompile)
	assert.False(t, p.Debug.Disasm)
}

func TestLoadProjectDefaultsOutput(t *testing.T) {
	path := writeProject(t, "entry: main.pony.json\n")
	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "main"+BundleFileExt, p.Output)
}

func TestLoadProjectRequiresEntry(t *testing.T) {
	path := writeProject(t, "output: out.ponyb\n")
	_, err := LoadProject(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry")
}

func TestLoadProjectMissingFile(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), ProjectConfigFile))
	assert.Error(t, err)
}

func TestLoadProjectRejectsMalformedYaml(t *testing.T) {
	path := writeProject(t, "entry: [unclosed\n")
	_, err := LoadProject(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}
