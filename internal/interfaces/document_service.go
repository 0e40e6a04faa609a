package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/ternarybob/fyde/pkg/models"
)

// DocumentService ingests files and reads back what was stored
type DocumentService interface {
	// SaveFileFromPath reads, fingerprints, renders and persists the file at path.
	// The returned document is the one persisted.
	SaveFileFromPath(ctx context.Context, path string) (*models.Document, error)

	// List returns one keyset page of metadata ordered by ID ascending
	List(ctx context.Context, opts *models.ListOptions) ([]*models.Metadata, error)

	// GetByID returns the metadata of a single document
	GetByID(ctx context.Context, id uuid.UUID) (*models.Metadata, error)

	// GetPreview returns the PNG preview for the given document
	GetPreview(ctx context.Context, meta *models.Metadata) ([]byte, error)

	// GetContent returns the raw bytes of the given document
	GetContent(ctx context.Context, meta *models.Metadata) ([]byte, error)
}
