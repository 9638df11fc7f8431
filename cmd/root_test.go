package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meghashyamc/wordindex/services/index"
	"github.com/meghashyamc/wordindex/services/search"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env", "test"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupCLITest(t *testing.T) string {
	t.Helper()
	t.Setenv("STORAGE_PATH", t.TempDir())
	t.Setenv("CONVERTER_COMMAND", "wordindex-no-such-converter")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "report.txt"), []byte("quarterly revenue"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("meeting notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "setup.exe"), []byte("binary"), 0644))
	return root
}

func TestIndexAndSearchCommands(t *testing.T) {
	assert := require.New(t)
	root := setupCLITest(t)

	out, err := runCommand(t, "index", root)
	assert.NoError(err, out)
	summary := index.Summary{}
	assert.NoError(json.Unmarshal([]byte(out), &summary))
	assert.Equal(2, summary.Indexed)

	out, err = runCommand(t, "search", "revenue", "--limit", "5")
	assert.NoError(err, out)
	envelope := search.Envelope{}
	assert.NoError(json.Unmarshal([]byte(out), &envelope))
	assert.Equal(uint64(1), envelope.Total)
	assert.Equal(5, envelope.Limit)
	assert.Equal(filepath.Join(root, "report.txt"), envelope.Results[0].Path)

	out, err = runCommand(t, "search")
	assert.NoError(err, out)
	envelope = search.Envelope{}
	assert.NoError(json.Unmarshal([]byte(out), &envelope))
	assert.Equal(uint64(2), envelope.Total)

	out, err = runCommand(t, "index", root)
	assert.NoError(err, out)
	summary = index.Summary{}
	assert.NoError(json.Unmarshal([]byte(out), &summary))
	assert.Equal(2, summary.Current, "a second run only checks staleness")
}

func TestPathsCommands(t *testing.T) {
	assert := require.New(t)
	root := setupCLITest(t)

	out, err := runCommand(t, "paths", "add", root)
	assert.NoError(err, out)
	assert.Equal(root, strings.TrimSpace(out))

	_, err = runCommand(t, "paths", "add", root)
	assert.ErrorContains(err, "already watched")

	out, err = runCommand(t, "paths", "list")
	assert.NoError(err)
	assert.Equal(root, strings.TrimSpace(out))

	out, err = runCommand(t, "paths", "reindex")
	assert.NoError(err, out)
	assert.Contains(out, `"indexed": 2`)

	_, err = runCommand(t, "paths", "remove", root)
	assert.NoError(err)
	_, err = runCommand(t, "paths", "remove", root)
	assert.ErrorContains(err, "not watched")
}

func TestSearchCommandParseError(t *testing.T) {
	setupCLITest(t)

	_, err := runCommand(t, "search", `"unbalanced`)
	require.ErrorContains(t, err, "could not parse query")
}
