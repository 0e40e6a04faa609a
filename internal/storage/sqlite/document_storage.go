package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/pkg/models"
)

const (
	documentTable = "document"

	// Fixed-width layout so the stored text round-trips to an equal time.Time
	createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// metadataColumns excludes the blob columns; listing never loads them
var metadataColumns = []string{
	"id",
	"name",
	"checksum",
	"detected_type",
	"size",
	"created_at",
	"transcript",
}

// DocumentStorage implements interfaces.DocumentStorage
type DocumentStorage struct {
	db      *SQLiteDB
	logger  arbor.ILogger
	stmts   *sq.StmtCache
	builder sq.StatementBuilderType
}

// NewDocumentStorage creates a new document storage instance
func NewDocumentStorage(db *SQLiteDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:      db,
		logger:  logger,
		stmts:   sq.NewStmtCache(db.DB()),
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// SaveDocument inserts one row. A duplicate ID fails on the primary key.
func (d *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", interfaces.ErrQueryBuild)
	}

	meta := doc.Metadata

	var transcript sql.NullString
	if meta.Transcript != nil {
		transcript = sql.NullString{String: *meta.Transcript, Valid: true}
	}

	query, args, err := d.builder.
		Insert(documentTable).
		Columns(append(metadataColumns, "file_content", "file_preview")...).
		Values(
			meta.ID[:],
			meta.Name,
			meta.Checksum,
			meta.DetectedType,
			meta.Size,
			meta.CreatedAt.UTC().Format(createdAtLayout),
			transcript,
			nonNilBlob(doc.FileContent),
			nonNilBlob(doc.FilePreview),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryBuild, err)
	}

	err = d.db.WithWriteLock(func() error {
		_, execErr := d.stmts.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			d.logger.Warn().Str("id", meta.ID.String()).Msg("Document ID already exists")
		}
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	d.logger.Debug().
		Str("id", meta.ID.String()).
		Str("name", meta.Name).
		Int64("size", meta.Size).
		Msg("Document saved")

	return nil
}

// ListDocuments returns up to cursor.Limit metadata rows with id > cursor.AfterID, in id order
func (d *DocumentStorage) ListDocuments(ctx context.Context, cursor interfaces.ListCursor) ([]*models.Metadata, error) {
	if cursor.Limit <= 0 {
		return []*models.Metadata{}, nil
	}

	builder := d.builder.
		Select(metadataColumns...).
		From(documentTable).
		OrderBy("id ASC").
		Limit(uint64(cursor.Limit))

	if cursor.AfterID != nil {
		builder = builder.Where(sq.Gt{"id": cursor.AfterID[:]})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryBuild, err)
	}

	rows, err := d.stmts.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}
	defer rows.Close()

	result := make([]*models.Metadata, 0, cursor.Limit)
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
		}
		result = append(result, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	return result, nil
}

// GetMetadata returns the metadata row for id
func (d *DocumentStorage) GetMetadata(ctx context.Context, id uuid.UUID) (*models.Metadata, error) {
	var meta *models.Metadata
	err := d.queryOne(ctx, id, metadataColumns, func(rows *sql.Rows) error {
		var scanErr error
		meta, scanErr = scanMetadata(rows)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// GetPreview returns the preview blob for id
func (d *DocumentStorage) GetPreview(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return d.getBlob(ctx, id, "file_preview")
}

// GetContent returns the raw content blob for id
func (d *DocumentStorage) GetContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return d.getBlob(ctx, id, "file_content")
}

func (d *DocumentStorage) getBlob(ctx context.Context, id uuid.UUID, column string) ([]byte, error) {
	var blob []byte
	err := d.queryOne(ctx, id, []string{column}, func(rows *sql.Rows) error {
		return rows.Scan(&blob)
	})
	if err != nil {
		return nil, err
	}
	if blob == nil {
		blob = []byte{}
	}
	return blob, nil
}

// queryOne selects columns for a single id and requires exactly one matching row
func (d *DocumentStorage) queryOne(ctx context.Context, id uuid.UUID, columns []string, scan func(*sql.Rows) error) error {
	query, args, err := d.builder.
		Select(columns...).
		From(documentTable).
		Where(sq.Eq{"id": id[:]}).
		Limit(2).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryBuild, err)
	}

	rows, err := d.stmts.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
		if count > 1 {
			return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, interfaces.ErrUnexpectedRowCount)
		}
		if err := scan(rows); err != nil {
			return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", interfaces.ErrQueryExec, err)
	}

	if count == 0 {
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, id)
	}
	return nil
}

// Close releases the cached prepared statements
func (d *DocumentStorage) Close() error {
	return d.stmts.Clear()
}

func scanMetadata(rows *sql.Rows) (*models.Metadata, error) {
	var (
		rawID      []byte
		meta       models.Metadata
		createdAt  string
		transcript sql.NullString
	)

	if err := rows.Scan(
		&rawID,
		&meta.Name,
		&meta.Checksum,
		&meta.DetectedType,
		&meta.Size,
		&createdAt,
		&transcript,
	); err != nil {
		return nil, err
	}

	id, err := uuid.FromBytes(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored id: %w", err)
	}
	meta.ID = id

	ts, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid stored created_at %q: %w", createdAt, err)
	}
	meta.CreatedAt = ts.UTC()

	if transcript.Valid {
		text := transcript.String
		meta.Transcript = &text
	}

	return &meta, nil
}

// nonNilBlob keeps NOT NULL blob columns satisfied for empty content
func nonNilBlob(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

// isUniqueViolation reports whether err came from a primary key collision
func isUniqueViolation(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		// SQLITE_CONSTRAINT_PRIMARYKEY
		return coder.Code() == 1555
	}
	return false
}
