package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/pkg/models"
	"github.com/timshannon/badgerhold/v4"
)

// documentKey is the raw 16-byte ID. It implements badgerhold.Comparer so that
// criteria and sorting on it follow byte order, matching the SQLite backend.
type documentKey [16]byte

// Compare implements badgerhold.Comparer
func (k documentKey) Compare(other interface{}) (int, error) {
	switch o := other.(type) {
	case documentKey:
		return bytes.Compare(k[:], o[:]), nil
	case *documentKey:
		return bytes.Compare(k[:], o[:]), nil
	default:
		return 0, fmt.Errorf("cannot compare document key with %T", other)
	}
}

// documentRecord holds metadata only; blobs live in their own records so listing never decodes them
type documentRecord struct {
	ID           documentKey
	Name         string
	Checksum     string
	DetectedType string
	Size         int64
	CreatedAt    time.Time
	Transcript   *string
}

type previewRecord struct {
	ID   documentKey
	Data []byte
}

type contentRecord struct {
	ID   documentKey
	Data []byte
}

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocument writes the metadata, preview and content records in one transaction.
// An existing ID fails the whole write.
func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", interfaces.ErrQueryBuild)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	key := documentKey(doc.Metadata.ID)
	storeKey := doc.Metadata.ID.String()
	record := toRecord(&doc.Metadata)

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badgerdb.Txn) error {
		if err := store.TxInsert(tx, storeKey, record); err != nil {
			return err
		}
		if err := store.TxInsert(tx, storeKey, &previewRecord{ID: key, Data: doc.FilePreview}); err != nil {
			return err
		}
		return store.TxInsert(tx, storeKey, &contentRecord{ID: key, Data: doc.FileContent})
	})
	if err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			s.logger.Warn().Str("id", storeKey).Msg("Document ID already exists")
		}
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	s.logger.Debug().
		Str("id", storeKey).
		Str("name", doc.Metadata.Name).
		Int64("size", doc.Metadata.Size).
		Msg("Document saved")

	return nil
}

// ListDocuments returns up to cursor.Limit metadata records with ID > cursor.AfterID, in ID order
func (s *DocumentStorage) ListDocuments(ctx context.Context, cursor interfaces.ListCursor) ([]*models.Metadata, error) {
	if cursor.Limit <= 0 {
		return []*models.Metadata{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	query := &badgerhold.Query{}
	if cursor.AfterID != nil {
		query = badgerhold.Where("ID").Gt(documentKey(*cursor.AfterID))
	}
	query = query.SortBy("ID").Limit(cursor.Limit)

	var records []documentRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	result := make([]*models.Metadata, 0, len(records))
	for i := range records {
		result = append(result, records[i].toMetadata())
	}
	return result, nil
}

// GetMetadata returns the metadata record for id
func (s *DocumentStorage) GetMetadata(ctx context.Context, id uuid.UUID) (*models.Metadata, error) {
	var record documentRecord
	if err := s.get(ctx, id, &record); err != nil {
		return nil, err
	}
	return record.toMetadata(), nil
}

// GetPreview returns the preview blob for id
func (s *DocumentStorage) GetPreview(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var record previewRecord
	if err := s.get(ctx, id, &record); err != nil {
		return nil, err
	}
	return nonNilBlob(record.Data), nil
}

// GetContent returns the raw content blob for id
func (s *DocumentStorage) GetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var record contentRecord
	if err := s.get(ctx, id, &record); err != nil {
		return nil, err
	}
	return nonNilBlob(record.Data), nil
}

func (s *DocumentStorage) get(ctx context.Context, id uuid.UUID, result interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}
	if err := s.db.Store().Get(id.String(), result); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
		}
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}
	return nil
}

func toRecord(meta *models.Metadata) *documentRecord {
	return &documentRecord{
		ID:           documentKey(meta.ID),
		Name:         meta.Name,
		Checksum:     meta.Checksum,
		DetectedType: meta.DetectedType,
		Size:         meta.Size,
		CreatedAt:    meta.CreatedAt.UTC(),
		Transcript:   meta.Transcript,
	}
}

func (r *documentRecord) toMetadata() *models.Metadata {
	return &models.Metadata{
		ID:           uuid.UUID(r.ID),
		Name:         r.Name,
		Checksum:     r.Checksum,
		DetectedType: r.DetectedType,
		Size:         r.Size,
		CreatedAt:    r.CreatedAt.UTC(),
		Transcript:   r.Transcript,
	}
}

// gob drops empty slices, so an empty blob decodes as nil
func nonNilBlob(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
