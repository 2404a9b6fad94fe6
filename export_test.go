package atelier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExport_CSVUnionHeader(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "orders.csv")
	payload := `[
		{"id":"o1","description":"Ring, gold","price":120.5},
		{"id":"o2","status":"ready","due_date":null,"tags":["rush"]}
	]`

	require.NoError(t, WriteExport(dest, []byte(payload)))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	want := "id,description,price,status,due_date,tags\n" +
		"o1,\"Ring, gold\",120.5,,,\n" +
		"o2,,,ready,,\"[\"\"rush\"\"]\"\n"
	assert.Equal(t, want, string(data))
}

func TestWriteExport_CSVSingleObject(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "stats.CSV")
	require.NoError(t, WriteExport(dest, []byte(`{"total_orders":3}`)))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "total_orders\n3\n", string(data))
}

func TestWriteExport_CSVRejectsScalars(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "x.csv")
	assert.ErrorIs(t, WriteExport(dest, []byte(`42`)), ErrInvalidExport)
}

func TestWriteExport_CSVRejectsEmptyArray(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "orders.csv")
	for _, payload := range []string{`[]`, `[{}]`, `{}`} {
		assert.ErrorIs(t, WriteExport(dest, []byte(payload)), ErrInvalidExport, payload)
	}
	assert.NoFileExists(t, dest)

	// an empty list is still valid JSON
	jsonDest := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, WriteExport(jsonDest, []byte(`[]`)))
	data, err := os.ReadFile(jsonDest)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteExport_JSONIsIndented(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "clients.json")
	require.NoError(t, WriteExport(dest, []byte(`{"name":"Ada"}`)))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Ada\"\n}\n", string(data))
}

func TestWriteExport_EmptyPayloadWritesNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "none.json")
	require.NoError(t, WriteExport(dest, []byte("  \n")))

	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteExport_InvalidJSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bad.json")
	assert.ErrorIs(t, WriteExport(dest, []byte(`{"name":`)), ErrInvalidExport)
}
