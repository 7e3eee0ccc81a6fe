package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/props/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefs = `
models:
  - name: Inner
    fields:
      - {name: a, type: int, required: true}
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDefs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDefs), 0644))
	return path
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "", "check", writeDefs(t))
	require.NoError(t, err)
	assert.Contains(t, out, "1 models declared")
}

func TestDecodeCommand(t *testing.T) {
	defs := writeDefs(t)

	out, err := run(t, `{"a": 3}`, "decode", "--defs", defs, "--model", "Inner")
	require.NoError(t, err)

	var res cli.DecodeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Resolved)
	assert.Equal(t, "Inner", res.Model)
	assert.Equal(t, 3.0, res.Object["a"])
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "", "models", "--defs", writeDefs(t), "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "class Inner")
}
