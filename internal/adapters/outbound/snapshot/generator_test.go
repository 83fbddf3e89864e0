package snapshot_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcheck/relcheck/internal/adapters/outbound/snapshot"
	"github.com/relcheck/relcheck/internal/domain"
)

// stubTool writes an executable shell script standing in for the snapshot
// generator binary.
func stubTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub generator script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "apidump")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestGenerate_ParsesToolOutput(t *testing.T) {
	tool := stubTool(t, `echo '{"package":"demo","version":"1.0.0","functions":[{"name":"Foo"}]}'`)

	gen := snapshot.NewGenerator(tool, false, log.New(io.Discard))
	snap, err := gen.Generate(context.Background(), t.TempDir(), false)
	require.NoError(t, err)

	assert.Equal(t, "demo", snap.Package)
	_, ok := snap.FunctionNamed("Foo")
	assert.True(t, ok)
}

func TestGenerate_ToolFailureIsGenerationError(t *testing.T) {
	tool := stubTool(t, "exit 3")

	gen := snapshot.NewGenerator(tool, false, log.New(io.Discard))
	_, err := gen.Generate(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindGeneration))
}

func TestGenerate_UnreadableOutputIsGenerationError(t *testing.T) {
	tool := stubTool(t, "echo not-json")

	gen := snapshot.NewGenerator(tool, false, log.New(io.Discard))
	_, err := gen.Generate(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindGeneration))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"package":"demo","types":[{"name":"Client","kind":"struct"}]}`), 0644))

	snap, err := snapshot.LoadFile(path)
	require.NoError(t, err)
	_, ok := snap.TypeNamed("Client")
	assert.True(t, ok)
}

func TestLoadFile_MalformedIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := snapshot.LoadFile(path)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFormat))

	_, err = snapshot.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindFormat))
}
