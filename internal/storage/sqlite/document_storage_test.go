package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/internal/storage/storagetest"
)

func setupDocumentTestDB(t *testing.T) (interfaces.DocumentStorage, func()) {
	logger := arbor.NewLogger()
	config := &common.SQLiteConfig{Path: ":memory:"}

	manager, err := NewManager(logger, config)
	require.NoError(t, err)

	return manager.DocumentStorage(), func() { manager.Close() }
}

func setupFileDocumentTestDB(t *testing.T) (interfaces.DocumentStorage, func()) {
	logger := arbor.NewLogger()
	config := &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "storage.db3"),
		BusyTimeoutMS: 5000,
		MaxOpenConns:  4,
		WALMode:       true,
		Synchronous:   "NORMAL",
	}

	manager, err := NewManager(logger, config)
	require.NoError(t, err)

	return manager.DocumentStorage(), func() { manager.Close() }
}

func TestDocumentStorage_Memory(t *testing.T) {
	storagetest.RunDocumentStorageSuite(t, setupDocumentTestDB)
}

func TestDocumentStorage_File(t *testing.T) {
	storagetest.RunDocumentStorageSuite(t, setupFileDocumentTestDB)
}

func TestDocumentStorage_PersistsAcrossReopen(t *testing.T) {
	logger := arbor.NewLogger()
	config := &common.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "storage.db3"),
		MaxOpenConns: 2,
		WALMode:      true,
		Synchronous:  "NORMAL",
	}
	ctx := context.Background()

	manager, err := NewManager(logger, config)
	require.NoError(t, err)
	doc := storagetest.NewDocument(t, "kept.pdf")
	require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, doc))
	require.NoError(t, manager.Close())

	reopened, err := NewManager(logger, config)
	require.NoError(t, err)
	defer reopened.Close()

	meta, err := reopened.DocumentStorage().GetMetadata(ctx, doc.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept.pdf", meta.Name)
}
