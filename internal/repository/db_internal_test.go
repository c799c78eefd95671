package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBusyTimeout(t *testing.T) {
	assert.Equal(t, "data.db?_busy_timeout=5000", withBusyTimeout("data.db"))
	assert.Equal(t, "file:data.db?cache=shared&_busy_timeout=5000", withBusyTimeout("file:data.db?cache=shared"))
	assert.Equal(t, "data.db?_timeout=100", withBusyTimeout("data.db?_timeout=100"))
}

func TestEnsureDirForSQLite(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, ensureDirForSQLite("file:"+filepath.Join(root, "a", "b", "x.db")+"?cache=shared"))
	info, err := os.Stat(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, ensureDirForSQLite(":memory:"))
	require.NoError(t, ensureDirForSQLite("plain.db"))
}
