package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const validManifest = `
project: {
	id:        "game-42"
	mode:      "network"
	host:      "wss://cloud.example.com/sync"
	variables: ["score", "name"]
}
`

func TestValidate_ValidManifest(t *testing.T) {
	path := writeManifest(t, validManifest)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ Manifest valid: game-42")
	assert.Contains(t, out.String(), "network mode")
}

func TestValidate_ValidManifestJSON(t *testing.T) {
	path := writeManifest(t, validManifest)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", path, "--format", "json"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_InvalidManifest(t *testing.T) {
	path := writeManifest(t, `project: {id: "x", mode: "broadcast", variables: ["score"]}`)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "E102")
}

func TestValidate_MissingFile(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", filepath.Join(t.TempDir(), "nope.cue")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "E002")
}
