package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_CompileDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	src := "class Main { function void main() { do Output.printInt(7); return; } }"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.jack"), []byte(src), 0o644))

	outW, errW := &bytes.Buffer{}, &bytes.Buffer{}
	status := _main(context.Background(), []string{"jackc", "-o", out, "-j", "1", dir}, outW, errW)
	assert.Equal(t, 0, status, errW.String())
	data, err := os.ReadFile(filepath.Join(out, "Main.vm"))
	require.NoError(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 7\ncall Output.printInt 1\npop temp 0\npush constant 0\nreturn\n", string(data))
	assert.Contains(t, outW.String(), "Main.vm")
}

func TestMain_CompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.jack")
	require.NoError(t, os.WriteFile(path, []byte("class Main { function void f() { return x; } }"), 0o644))

	outW, errW := &bytes.Buffer{}, &bytes.Buffer{}
	status := _main(context.Background(), []string{"jackc", "-report", filepath.Join(dir, "report.json"), path}, outW, errW)
	assert.Equal(t, ERROR_STATUS_CODE, status)
	assert.Contains(t, outW.String(), "SemanticError: undefined variable: x")
	assert.Contains(t, outW.String(), "1 of 1 units failed")
	assert.NoFileExists(t, filepath.Join(dir, "Main.vm"))
	assert.FileExists(t, filepath.Join(dir, "report.json"))
}

func TestMain_Usage(t *testing.T) {
	outW, errW := &bytes.Buffer{}, &bytes.Buffer{}
	assert.Equal(t, USAGE_STATUS_CODE, _main(context.Background(), []string{"jackc", "a", "b"}, outW, errW))
	assert.Contains(t, errW.String(), "usage: jackc")

	errW.Reset()
	assert.Equal(t, ERROR_STATUS_CODE, _main(context.Background(), []string{"jackc", "-j", "0", t.TempDir()}, outW, errW))
	assert.Contains(t, errW.String(), "jobs should be at least 1")
}
