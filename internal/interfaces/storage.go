// -----------------------------------------------------------------------
// Last Modified: Thursday, 15th October 2026 9:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ternarybob/fyde/pkg/models"
)

// Storage error kinds. Backends wrap the underlying cause with one of these so callers
// can tell a malformed query from a failed execution or a missing row.
var (
	// ErrQueryBuild is returned when a statement could not be constructed
	ErrQueryBuild = errors.New("failed to generate a query")

	// ErrQueryExec is returned when the engine failed to execute a statement
	ErrQueryExec = errors.New("failed to execute a query")

	// ErrNotFound is returned when no row matches the requested document ID
	ErrNotFound = errors.New("document not found")

	// ErrUnexpectedRowCount is returned when a single-row read matched more than one row
	ErrUnexpectedRowCount = errors.New("query returned an unexpected row count")
)

// ListCursor selects one keyset page. AfterID is exclusive; nil starts at the beginning.
type ListCursor struct {
	AfterID *uuid.UUID
	Limit   int
}

// DocumentStorage - persistence contract for ingested documents.
// Rows are append-only: there is no update or delete.
type DocumentStorage interface {
	// SaveDocument inserts exactly one new row. A colliding ID is an error.
	SaveDocument(ctx context.Context, doc *models.Document) error

	// ListDocuments returns metadata only (no blobs), ordered by ID ascending.
	ListDocuments(ctx context.Context, cursor ListCursor) ([]*models.Metadata, error)

	// GetMetadata returns the metadata of a single document.
	GetMetadata(ctx context.Context, id uuid.UUID) (*models.Metadata, error)

	// GetPreview returns the rendered preview blob of a single document.
	GetPreview(ctx context.Context, id uuid.UUID) ([]byte, error)

	// GetContent returns the raw file blob of a single document.
	GetContent(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// StorageManager - owns the backend connection and hands out storage interfaces
type StorageManager interface {
	DocumentStorage() DocumentStorage
	DB() interface{}
	Close() error
}
