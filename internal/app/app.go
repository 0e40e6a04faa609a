// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 10:04:12 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/internal/services/documents"
	"github.com/ternarybob/fyde/internal/services/mimetype"
	"github.com/ternarybob/fyde/internal/services/pdf"
	"github.com/ternarybob/fyde/internal/storage"
)

// Initialisation error kinds
var (
	// ErrConfigSetup is returned when the config directory could not be resolved or created
	ErrConfigSetup = errors.New("failed to setup the config directory")

	// ErrStorageInit is returned when the storage backend failed to open, configure or migrate
	ErrStorageInit = errors.New("failed to initialize storage")
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Engines
	Inspector *pdf.Inspector
	Renderer  *pdf.Renderer
	Extractor *pdf.Extractor
	Detector  *mimetype.Detector
	Composer  *pdf.Composer

	// Ingestion pipeline
	DocumentService interfaces.DocumentService
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	logger.Debug().
		Str("storage", cfg.Storage.Type).
		Str("mode", cfg.Storage.Mode).
		Strs("authorized_types", cfg.Ingestion.AuthorizedTypes).
		Msg("Application initialized")

	return app, nil
}

// initDatabase resolves file-mode paths and opens the configured backend
func (a *App) initDatabase() error {
	if err := common.ResolveStoragePaths(a.Config); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigSetup, err)
	}

	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInit, err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Str("path", a.storagePath()).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() {
	a.Inspector = pdf.NewInspector(a.Logger)
	a.Renderer = pdf.NewRenderer(a.Logger)
	a.Extractor = pdf.NewExtractor(a.Logger)
	a.Detector = mimetype.NewDetector()
	a.Composer = pdf.NewComposer(a.Logger)

	a.DocumentService = documents.NewService(
		a.StorageManager.DocumentStorage(),
		a.Inspector,
		a.Renderer,
		a.Extractor,
		a.Detector,
		a.Config.Ingestion,
		a.Logger,
	)
}

func (a *App) storagePath() string {
	if a.Config.IsMemory() {
		return common.StorageModeMemory
	}
	if a.Config.Storage.Type == common.StorageTypeBadger {
		return a.Config.Storage.Badger.Path
	}
	return a.Config.Storage.SQLite.Path
}

// Close releases the storage backend
func (a *App) Close() error {
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}
