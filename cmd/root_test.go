package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"classify", "batch", "fetch", "info", "runs", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "urban-classifier", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestClassifyCommand_Flags(t *testing.T) {
	for _, name := range []string{"output", "raster", "overrides", "with-source", "encoding"} {
		require.NotNil(t, classifyCmd.Flags().Lookup(name), "classify command should have --%s flag", name)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "stations_lcz.csv", defaultOutputPath("stations.csv"))
	assert.Equal(t, "data/aws_lcz.csv", defaultOutputPath(filepath.Join("data", "aws.xlsx")))
}

func TestBatchOutputPath(t *testing.T) {
	batchOutDir = ""
	assert.Equal(t, filepath.Join("data", "aws_lcz.csv"), batchOutputPath(filepath.Join("data", "aws.csv")))

	batchOutDir = "out"
	t.Cleanup(func() { batchOutDir = "" })
	assert.Equal(t, filepath.Join("out", "aws_lcz.csv"), batchOutputPath(filepath.Join("data", "aws.csv")))
}

func TestExpandGlobs_Dedup(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("station_id\n"), 0o644))
	}

	inputs, err := expandGlobs([]string{
		filepath.Join(dir, "*.csv"),
		filepath.Join(dir, "a.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, inputs)
}

func TestExpandGlobs_NoMatches(t *testing.T) {
	inputs, err := expandGlobs([]string{filepath.Join(t.TempDir(), "*.csv")})
	require.NoError(t, err)
	assert.Empty(t, inputs)
}
