package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseSize(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "x.db")

	got, err := DatabaseSize(db)
	require.NoError(t, err)
	assert.Zero(t, got, "missing database")

	require.NoError(t, os.WriteFile(db, []byte("hello"), 0644))
	got, err = DatabaseSize(db)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got)

	require.NoError(t, os.WriteFile(db+"-wal", []byte("abc"), 0644))
	got, err = DatabaseSize(db)
	require.NoError(t, err)
	assert.EqualValues(t, 8, got, "WAL file is included")

	got, err = DatabaseSize("")
	require.NoError(t, err)
	assert.Zero(t, got)
}
