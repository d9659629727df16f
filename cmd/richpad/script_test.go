package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richpad/internal/engine"
	"github.com/dshills/richpad/internal/style"
)

func runTestScript(t *testing.T, script string) (*engine.Editor, string, error) {
	t.Helper()
	ed := engine.New()
	t.Cleanup(ed.Close)
	var out bytes.Buffer
	err := runScript(context.Background(), ed, strings.NewReader(script), &out)
	return ed, out.String(), err
}

func TestScriptQuotedArguments(t *testing.T) {
	ed, out, err := runTestScript(t, strings.Join([]string{
		"insert Title line",
		"all",
		`set font-family "Times New Roman"`,
		"set font-size 18",
		"set alignment center",
		"value font-family",
		"value alignment",
	}, "\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "font-family: Times New Roman\n")

	doc := ed.Document()
	run := doc.Blocks[0].Runs[0]
	assert.Equal(t, "Times New Roman", run.Style.Family)
	assert.Equal(t, 18.0, run.Style.Size)
	assert.Equal(t, style.AlignCenter, doc.Blocks[0].Para.Align)
}

func TestScriptInsertKeepsSpacing(t *testing.T) {
	ed, _, err := runTestScript(t, "insert   two  spaces \"quoted\"\ninsert \\nnext")
	require.NoError(t, err)
	assert.Equal(t, "  two  spaces \"quoted\"\nnext", ed.Text())
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"unknown", "jump 3", `line 1: unknown command "jump"`},
		{"too few", "\n\nselect 1", "line 3: select takes 2 arguments"},
		{"too many", "undo now", "line 1: undo takes 0 arguments"},
		{"optional", "save a b", "line 1: save takes 0 to 1 arguments"},
		{"unbalanced quote", `set font-family "Times`, "line 1: set: parsing arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runTestScript(t, tt.script)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScriptReportsFailuresAndContinues(t *testing.T) {
	ed, out, err := runTestScript(t, "select 0 9\ntoggle weight\ninsert ok")
	require.NoError(t, err)
	assert.Contains(t, out, "line 1: select: ")
	assert.Contains(t, out, `line 2: toggle: unknown property "weight"`)
	assert.Equal(t, "ok", ed.Text())
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 14.0, parseValue(style.FontSize, "14"))
	assert.Equal(t, "big", parseValue(style.FontSize, "big"))
	assert.Equal(t, true, parseValue(style.Bold, "true"))
	assert.Equal(t, "center", parseValue(style.Alignment, "center"))
}
