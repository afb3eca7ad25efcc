package migration

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/erpsync/migrations"
)

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {Data: []byte("SELECT 1;")},
		"000002_b.down.sql": {Data: []byte("SELECT 1;")},
		"000001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"000001_a.down.sql": {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("docs")},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)
}

func TestListMigrations_Empty(t *testing.T) {
	names, err := ListMigrations(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbeddedMigrations_HaveDownFiles(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		_, err := fs.Stat(migrations.FS, name+".down.sql")
		assert.NoError(t, err, "missing down migration for %s", name)
	}
}
