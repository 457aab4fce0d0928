package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesObjects(t *testing.T) {
	input := `[
		{"date": "2024-01-10", "type": "income", "amount": 1500, "client": "Acme"},
		{"date": "15/03/2024", "type": "vente", "montant": "250,00"}
	]`

	records, err := Load(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0]["client"])
	assert.Equal(t, 1500.0, records[0]["amount"])
	assert.Equal(t, "250,00", records[1]["montant"])
}

func TestLoad_NonObjectElementsBecomeEmptyRecords(t *testing.T) {
	input := `[{"date": "2024-01-10"}, 42, "noise", null]`

	records, err := Load(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.NotEmpty(t, records[0])
	assert.Empty(t, records[1])
	assert.Empty(t, records[2])
}

func TestLoad_RejectsNonArray(t *testing.T) {
	_, err := Load(strings.NewReader(`{"date": "2024-01-10"}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON array")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"amount": 10}]`), 0o600))

	records, err := LoadFile(path)

	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
