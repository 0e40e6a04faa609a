package sqlite

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
)

// TestMigrations_ApplyCleanly checks every embedded migration applies to an empty database
func TestMigrations_ApplyCleanly(t *testing.T) {
	db, err := NewSQLiteDB(arbor.NewLogger(), &common.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.False(t, dirty)

	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)
	ups := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			ups++
		}
	}
	assert.Equal(t, uint(ups), version, "schema should be at the latest migration")

	var tableName string
	err = db.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='document'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "document", tableName)
}

// TestMigrations_Idempotent checks reopening an already migrated file is a no-op
func TestMigrations_Idempotent(t *testing.T) {
	config := &common.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "storage.db3"),
		MaxOpenConns: 1,
		WALMode:      true,
		Synchronous:  "NORMAL",
	}

	first, err := NewSQLiteDB(arbor.NewLogger(), config)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteDB(arbor.NewLogger(), config)
	require.NoError(t, err)
	defer second.Close()

	_, dirty, err := second.SchemaVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestNewSQLiteDB_AppliesPragmas(t *testing.T) {
	config := &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "storage.db3"),
		BusyTimeoutMS: 2500,
		MaxOpenConns:  3,
		WALMode:       true,
		Synchronous:   "NORMAL",
	}

	db, err := NewSQLiteDB(arbor.NewLogger(), config)
	require.NoError(t, err)
	defer db.Close()
	assert.False(t, db.IsMemory())

	var journalMode string
	require.NoError(t, db.DB().QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var busyTimeout int
	require.NoError(t, db.DB().QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 2500, busyTimeout)

	// NORMAL
	var synchronous int
	require.NoError(t, db.DB().QueryRow("PRAGMA synchronous").Scan(&synchronous))
	assert.Equal(t, 1, synchronous)
}

func TestNewSQLiteDB_Memory(t *testing.T) {
	db, err := NewSQLiteDB(arbor.NewLogger(), &common.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.IsMemory())
	assert.Equal(t, 1, db.DB().Stats().MaxOpenConnections)
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(&common.SQLiteConfig{
		Path:          "/tmp/x/storage.db3",
		BusyTimeoutMS: 100,
		WALMode:       true,
		Synchronous:   "normal",
	}, false)

	assert.True(t, strings.HasPrefix(dsn, "/tmp/x/storage.db3?"))
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
	assert.Contains(t, dsn, "synchronous%28NORMAL%29")
	assert.Contains(t, dsn, "busy_timeout%28100%29")

	memory := buildDSN(&common.SQLiteConfig{}, true)
	assert.True(t, strings.HasPrefix(memory, ":memory:?"))
	assert.NotContains(t, memory, "journal_mode")
}
