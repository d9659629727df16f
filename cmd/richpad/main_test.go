package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/style"
)

// runCLI runs the command line with stdin and returns the exit code and
// both outputs.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "Usage: richpad"},
		{"unknown command", []string{"fly"}, `unknown command "fly"`},
		{"missing argument", []string{"stat"}, "Usage: richpad stat FILE"},
		{"extra argument", []string{"words", "a", "b"}, "Usage: richpad words FILE"},
		{"bad log level", []string{"-log-level", "loud", "version"}, "loud"},
		{"bad flag", []string{"-nope"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"-version"}, {"-v"}, {"version"}} {
		code, stdout, _ := runCLI(t, "", args...)
		assert.Equal(t, 0, code)
		assert.Contains(t, stdout, "richpad dev")
	}
}

func TestStatAndWords(t *testing.T) {
	path := writeFile(t, "a.txt", "hello world\nsecond line here")

	code, stdout, _ := runCLI(t, "", "stat", path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Words:                  5\n")
	assert.Contains(t, stdout, "Paragraphs:             2\n")
	assert.Contains(t, stdout, "Line: 1, Col: 1 | Words: 5 | a.txt")

	code, stdout, _ = runCLI(t, "", "words", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "5\n", stdout)
}

func TestMissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, "", "words", filepath.Join(t.TempDir(), "none.txt"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: open")
}

func TestConvertAndCat(t *testing.T) {
	src := writeFile(t, "a.txt", "one\ntwo")
	dst := filepath.Join(t.TempDir(), "a.rpd")

	code, _, stderr := runCLI(t, "", "convert", src, dst)
	require.Equal(t, 0, code, stderr)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	doc, err := codec.LoadMarkup(f)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", doc.Text())

	code, stdout, _ := runCLI(t, "", "cat", dst)
	require.Equal(t, 0, code)
	assert.Equal(t, "one\ntwo\n", stdout)
}

func TestEditScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.rpd")
	script := strings.Join([]string{
		"# build a bulleted line",
		"insert Hello",
		"all",
		"toggle bold",
		"value bold",
		"caret 5",
		"insert  world",
		"list bulleted",
		"undo",
		"undo",
		"redo",
		"redo",
		"redo",
		"text",
		"status",
	}, "\n")

	code, stdout, stderr := runCLI(t, script, "edit", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "bold: true\n")
	assert.Contains(t, stdout, "Hello world\n")
	assert.Contains(t, stdout, "Line: 1, Col: 12 | Words: 2 | new.rpd")
	assert.Contains(t, stdout, "line 13: redo: ")
	assert.Contains(t, stdout, "nothing to redo")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := codec.LoadMarkup(f)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", doc.Text())
	require.NotEmpty(t, doc.Blocks[0].Runs)
	assert.True(t, doc.Blocks[0].Runs[0].Style.Bold())
	assert.Equal(t, style.ListBulleted, doc.Blocks[0].Para.List)
}

func TestEditUnknownCommandStops(t *testing.T) {
	code, _, stderr := runCLI(t, "insert a\nfly away\n", "edit")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `line 2: unknown command "fly"`)
}

func TestEditUntitledWritesMarkup(t *testing.T) {
	code, stdout, stderr := runCLI(t, "insert hi\\nthere\n", "edit")
	require.Equal(t, 0, code, stderr)

	doc, err := codec.UnmarshalMarkup([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, "hi\nthere", doc.Text())
}

func TestEditAutosavesUntitled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RICHPAD_AUTOSAVE_ENABLED", "true")
	t.Setenv("RICHPAD_AUTOSAVE_DIR", dir)

	code, stdout, stderr := runCLI(t, "insert draft\n", "edit")
	require.Equal(t, 0, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "autosaved to "+dir), stdout)

	saved := strings.TrimSpace(strings.TrimPrefix(stdout, "autosaved to "))
	f, err := os.Open(saved)
	require.NoError(t, err)
	defer f.Close()
	doc, err := codec.LoadMarkup(f)
	require.NoError(t, err)
	assert.Equal(t, "draft", doc.Text())
}

func TestConfigCommand(t *testing.T) {
	cfgPath := writeFile(t, "richpad.yaml", "style:\n  family: Georgia\n")

	code, stdout, stderr := runCLI(t, "", "-c", cfgPath, "config", "yaml")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "family: Georgia")
	assert.Contains(t, stdout, "max_entries:")

	code, stdout, _ = runCLI(t, "", "-config", cfgPath, "config")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "family = 'Georgia'")

	code, _, stderr = runCLI(t, "", "config", "ini")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported config format")

	bad := writeFile(t, "bad.toml", "[style]\nsize = -3\n")
	code, _, stderr = runCLI(t, "", "-c", bad, "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "style.size")
}
