package migration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Add room photos", "add_room_photos"},
		{"  snapshot--index ", "snapshot_index"},
		{"Ünïcode only", "ncode_only"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestCreateAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")

	list, err := List(dir)
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := Create(dir, "create snapshots")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := Create(dir, "add index")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_add_index.up.sql"), second.UpPath)

	list, err = List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_snapshots", "000002_add_index"}, list)

	_, err = Create(dir, "???")
	assert.Error(t, err)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")

	list, err := List(dir)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for _, base := range list {
		_, err := os.Stat(filepath.Join(dir, base+".down.sql"))
		assert.NoError(t, err, "missing down migration for %s", base)
	}
}
