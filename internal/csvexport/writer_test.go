package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawsheet/internal/domain"
)

func sampleRecord() domain.Record {
	return domain.Record{Fields: []domain.Field{
		{Name: "CYLINDER ACTION", Value: "DOUBLE-ACTION"},
		{Name: "BORE DIAMETER", Value: "80 MM"},
		{Name: "OUTSIDE DIAMETER", Value: ""},
		{Name: "DRAWING NUMBER", Value: "AB-123:45, rev \"C\""},
		{Name: "FLUID", Value: "N/A"},
	}}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	assert.Equal(t, "Parameter,Value\n", buf.String())
}

func TestExport_RowsInRecordOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleRecord(), false))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Parameter", "Value"}, rows[0])
	assert.Equal(t, []string{"CYLINDER ACTION", "DOUBLE-ACTION"}, rows[1])
	assert.Equal(t, []string{"OUTSIDE DIAMETER", ""}, rows[3])
	assert.Equal(t, []string{"DRAWING NUMBER", "AB-123:45, rev \"C\""}, rows[4])
	assert.Equal(t, []string{"FLUID", "N/A"}, rows[5])
}

func TestExport_WithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleRecord(), true))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	assert.True(t, bytes.HasPrefix(buf.Bytes()[len(BOM):], []byte("Parameter,Value\n")))
}

func TestExport_EmptyRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, domain.Record{}, false))
	assert.Equal(t, "Parameter,Value\n", buf.String())
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cylinder", "cylinder"},
		{"my schema/v2", "my_schema_v2"},
		{"  __weird!!name__ ", "weird_name"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "cylinder_parameters.csv", BuildFilename("cylinder", "csv"))
	assert.Equal(t, "cylinder_parameters.xlsx", BuildFilename("Cylinder", "xlsx"))
	assert.Equal(t, "drawing_parameters.csv", BuildFilename("!!!", "csv"))
}
