package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, `sources: src
exclude:
  - "**/old/*.jack"
output: build
jobs: 3
single_operator: true
trace: true
report: build/report.json
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), config.Sources)
	assert.Equal(t, []string{DefaultIncludeGlob}, config.Include)
	assert.Equal(t, []string{"**/old/*.jack"}, config.Exclude)
	assert.Equal(t, filepath.Join(dir, "build"), config.Output)
	assert.Equal(t, 3, config.Jobs)
	assert.True(t, config.SingleOperator)
	assert.True(t, config.Trace)
	assert.Equal(t, "", config.Golden)
	assert.Equal(t, filepath.Join(dir, "build", "report.json"), config.Report)
	assert.Equal(t, path, FindConfig(dir))
	assert.Equal(t, "", FindConfig(filepath.Join(dir, "src")))
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFile(t, path, "jobs: [1, 2\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	config := DefaultConfig()
	config.Sources = dir
	assert.NoError(t, config.Validate())

	config.Jobs = 0
	assert.Error(t, config.Validate())

	config.Jobs = 1
	config.Sources = filepath.Join(dir, "missing")
	assert.Error(t, config.Validate())

	config.Sources = dir
	config.Golden = filepath.Join(dir, "missing")
	assert.Error(t, config.Validate())
}
