package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
)

func TestNewStorageManager_Backends(t *testing.T) {
	tests := []struct {
		name        string
		storageType string
		mode        string
	}{
		{"sqlite memory", common.StorageTypeSQLite, common.StorageModeMemory},
		{"sqlite file", common.StorageTypeSQLite, common.StorageModeFile},
		{"badger memory", common.StorageTypeBadger, common.StorageModeMemory},
		{"badger file", common.StorageTypeBadger, common.StorageModeFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := common.NewDefaultConfig()
			config.Storage.Type = tt.storageType
			config.Storage.Mode = tt.mode
			dir := t.TempDir()
			config.Storage.SQLite.Path = filepath.Join(dir, common.SQLiteFileName)
			config.Storage.Badger.Path = filepath.Join(dir, common.BadgerDirName)

			manager, err := NewStorageManager(arbor.NewLogger(), config)
			require.NoError(t, err)
			defer manager.Close()

			assert.NotNil(t, manager.DB())

			list, err := manager.DocumentStorage().ListDocuments(context.Background(), interfaces.ListCursor{Limit: 10})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestNewStorageManager_UnsupportedType(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Storage.Type = "postgres"

	_, err := NewStorageManager(arbor.NewLogger(), config)
	assert.Error(t, err)
}
