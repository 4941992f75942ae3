package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/domain"
)

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"x"}}, nil)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "x")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}

func TestRenderRecord_KeepsOrder(t *testing.T) {
	out := renderRecord(domain.Record{Fields: []domain.Field{
		{Name: "BORE DIAMETER", Value: "80"},
		{Name: "FLUID", Value: ""},
	}})
	assert.Less(t, strings.Index(out, "BORE DIAMETER"), strings.Index(out, "FLUID"))
	assert.Contains(t, out, "Parameter")
}

func TestReadImage_RejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	_, err := readImage(path, 0)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestReadImage_RejectsOversize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.PNG")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

	_, err := readImage(path, 10)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	data, err := readImage(path, 0)
	require.NoError(t, err)
	assert.Len(t, data, 64)
}

func TestSchemaCommand_ListsParameters(t *testing.T) {
	t.Setenv("DRAWSHEET_EXTRACTION_SCHEMA", "cylinder")
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"schema"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "CYLINDER ACTION")
	assert.Contains(t, buf.String(), "DRAWING NUMBER")
}

func TestPromptCommand_FlagOverridesPolicy(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"prompt", "--missing", "not_available"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"N/A"`)
	assert.Contains(t, buf.String(), "BORE DIAMETER: [value] MM")
}

func TestPromptCommand_UnknownSchema(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"prompt", "--schema", "valve"})

	assert.Error(t, cmd.Execute())
}
