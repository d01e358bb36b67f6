package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditi-179/Docify/doc"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"DOCIFY_GENERATOR", "DOCIFY_STORE", "DOCIFY_API_KEY"} {
		t.Setenv(k, "")
	}
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_Stdout(t *testing.T) {
	out, err := runCLI(t, "generate", "--prompt", "A beginner's guide to ML topics")
	require.NoError(t, err)
	assert.Contains(t, out, "## Executive Summary\n\n")
	assert.Contains(t, out, "## Conclusion\n\n")
}

func TestGenerate_OutDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "generate", "--mode", "text-to-doc", "--text", "messy notes that need some structure", "--out", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "structured-document.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Key Findings")
}

func TestGenerate_InvalidInput(t *testing.T) {
	_, err := runCLI(t, "generate", "--prompt", "short")
	assert.Error(t, err)

	_, err = runCLI(t, "generate", "--mode", "sideways")
	assert.Error(t, err)
}

func TestGenerateFlags_Input(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	tpl := filepath.Join(dir, "template.md")
	require.NoError(t, os.WriteFile(src, []byte("source"), 0o644))
	require.NoError(t, os.WriteFile(tpl, []byte("# Scope"), 0o644))

	in, err := generateFlags{mode: "reformatter", source: src, format: tpl}.input()
	require.NoError(t, err)
	assert.Equal(t, doc.ModeReformatter, in.Mode)
	require.NotNil(t, in.SourceFile)
	assert.Equal(t, "notes.txt", in.SourceFile.Name)
	assert.Equal(t, []byte("# Scope"), in.FormatFile.Data)
	assert.True(t, in.Valid())

	_, err = generateFlags{mode: "doc-to-doc", file: filepath.Join(dir, "missing.pdf")}.input()
	assert.Error(t, err)
}
