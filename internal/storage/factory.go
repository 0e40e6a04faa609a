package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/internal/storage/badger"
	"github.com/ternarybob/fyde/internal/storage/sqlite"
)

// NewStorageManager creates a new storage manager based on config.
// File-mode paths must already be resolved (see common.ResolveStoragePaths).
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	memory := config.IsMemory()

	switch config.Storage.Type {
	case common.StorageTypeSQLite, "":
		sqliteConfig := config.Storage.SQLite
		if memory {
			sqliteConfig.Path = sqlite.MemoryPath
		}
		return sqlite.NewManager(logger, &sqliteConfig)
	case common.StorageTypeBadger:
		return badger.NewManager(logger, &config.Storage.Badger, memory)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (expected 'sqlite' or 'badger')", config.Storage.Type)
	}
}
