package xlsxexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"drawsheet/internal/domain"
)

func TestExport(t *testing.T) {
	rec := domain.Record{Fields: []domain.Field{
		{Name: "BORE DIAMETER", Value: "80"},
		{Name: "OUTSIDE DIAMETER", Value: "N/A"},
		{Name: "DRAWING NUMBER", Value: "007-A"},
	}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, rec, "cylinder"))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"cylinder"}, f.GetSheetList())

	rows, err := f.GetRows("cylinder")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Parameter", "Value"}, rows[0])
	assert.Equal(t, []string{"BORE DIAMETER", "80"}, rows[1])
	assert.Equal(t, []string{"OUTSIDE DIAMETER", "N/A"}, rows[2])
	assert.Equal(t, []string{"DRAWING NUMBER", "007-A"}, rows[3])
}

func TestExport_DefaultSheetName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, domain.Record{}, ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Parameters")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Parameter", "Value"}}, rows)
}
