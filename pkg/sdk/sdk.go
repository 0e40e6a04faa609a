// Package sdk is the embedding surface of fyde: it wires storage, the PDF engines and the
// ingestion pipeline together and exposes the document service.
package sdk

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/app"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/internal/services/documents"
	"github.com/ternarybob/fyde/pkg/models"
)

// StorageType selects where documents are kept
type StorageType int

const (
	// StorageMemory keeps everything in an ephemeral in-memory database
	StorageMemory StorageType = iota
	// StorageFileSystem keeps the database under the per-user config directory
	// (fyde/storage.db3) unless a config file names another path
	StorageFileSystem
)

// DocumentService ingests files and reads back what was stored
type DocumentService = interfaces.DocumentService

// Value types
type (
	Metadata    = models.Metadata
	Document    = models.Document
	ListOptions = models.ListOptions
)

// InvalidFileFormatError carries the sniffed type of rejected content
type InvalidFileFormatError = documents.InvalidFileFormatError

// Errors returned by Init
var (
	ErrConfigSetup = app.ErrConfigSetup
	ErrStorageInit = app.ErrStorageInit
)

// Errors returned by the document service
var (
	ErrFileAccess        = documents.ErrFileAccess
	ErrInvalidFileFormat = documents.ErrInvalidFileFormat
	ErrInvalidSize       = documents.ErrInvalidSize
	ErrPathIsDir         = documents.ErrPathIsDir
	ErrExtractText       = documents.ErrExtractText
	ErrRenderPreview     = documents.ErrRenderPreview
	ErrGenerateID        = documents.ErrGenerateID
	ErrStorage           = documents.ErrStorage
	ErrNotFound          = documents.ErrNotFound
)

// Config selects the storage mode. ConfigFiles (TOML or YAML) and FYDE_* environment
// variables tune everything else; Logger defaults to the global console logger.
type Config struct {
	StorageType StorageType
	ConfigFiles []string
	Logger      arbor.ILogger
}

// SDK is an initialised fyde instance
type SDK struct {
	Documents DocumentService

	app *app.App
}

// Init loads configuration, opens and migrates storage, and builds the document service
func Init(cfg *Config) (*SDK, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	config, err := common.LoadFromFiles(cfg.ConfigFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	switch cfg.StorageType {
	case StorageMemory:
		config.Storage.Mode = common.StorageModeMemory
	case StorageFileSystem:
		config.Storage.Mode = common.StorageModeFile
	default:
		return nil, fmt.Errorf("unknown storage type: %d", cfg.StorageType)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = common.GetLogger()
	}

	a, err := app.New(config, logger)
	if err != nil {
		return nil, err
	}

	return &SDK{
		Documents: a.DocumentService,
		app:       a,
	}, nil
}

// Close releases the storage backend
func (s *SDK) Close() error {
	if s == nil || s.app == nil {
		return nil
	}
	return s.app.Close()
}
