package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		query  string
		want   string
	}{
		{DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DriverMySQL, "UPDATE t SET a = ? WHERE id = ?", "UPDATE t SET a = ? WHERE id = ?"},
		{DriverPostgres, "UPDATE t SET a = ? WHERE id = ?", "UPDATE t SET a = $1 WHERE id = $2"},
		{DriverPostgres, "SELECT ?? FROM t WHERE x = ?", "SELECT ?? FROM t WHERE x = $1"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.driver+" "+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.driver, tt.query))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(Config{Driver: DriverSQLite}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(Config{Driver: DriverPostgres}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrator_EmbeddedMigrationsApplyOnce(t *testing.T) {
	db, err := New(Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db, zap.NewNop())
	require.NoError(t, m.RunMigrations(""))
	require.NoError(t, m.RunMigrations(""))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	_, err = db.Exec("SELECT id, status FROM documents LIMIT 1")
	assert.NoError(t, err)
	_, err = db.Exec("SELECT document_id, photo_id FROM document_photos LIMIT 1")
	assert.NoError(t, err)
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"002_first.sql": {Data: []byte("CREATE TABLE a (id INTEGER);\n\nCREATE INDEX ia ON a (id);")},
		"notes.txt":     {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX ia ON a (id)"}, migrations[0].Statements())
	assert.Equal(t, 10, migrations[1].Version)

	_, err = LoadMigrations(fstest.MapFS{"bad.sql": {Data: []byte("x")}})
	assert.Error(t, err)

	_, err = LoadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("x")},
		"1_b.sql":   {Data: []byte("y")},
	})
	assert.Error(t, err)
}
