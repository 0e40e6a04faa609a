package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/pkg/models"
)

// Service implements the DocumentService interface.
// It keeps no state between calls; every read goes to storage.
type Service struct {
	storage    interfaces.DocumentStorage
	inspector  interfaces.PDFInspector
	renderer   interfaces.PreviewRenderer
	extractor  interfaces.TextExtractor
	detector   interfaces.TypeDetector
	authorized map[string]struct{}
	lenient    bool
	newID      func() (uuid.UUID, error)
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates a new document ingestion service
func NewService(
	storage interfaces.DocumentStorage,
	inspector interfaces.PDFInspector,
	renderer interfaces.PreviewRenderer,
	extractor interfaces.TextExtractor,
	detector interfaces.TypeDetector,
	config common.IngestionConfig,
	logger arbor.ILogger,
) *Service {
	authorized := make(map[string]struct{}, len(config.AuthorizedTypes))
	for _, t := range config.AuthorizedTypes {
		authorized[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return &Service{
		storage:    storage,
		inspector:  inspector,
		renderer:   renderer,
		extractor:  extractor,
		detector:   detector,
		authorized: authorized,
		lenient:    config.LenientTranscript,
		newID:      common.NewDocumentID,
		logger:     logger,
	}
}

// SaveFileFromPath ingests the file at path. Every stage is a hard gate: on any
// failure nothing is persisted. The returned document is the one persisted.
func (s *Service) SaveFileFromPath(ctx context.Context, path string) (*models.Document, error) {
	s.logger.Debug().Str("path", path).Msg("Ingesting file")

	doc, err := s.ingest(ctx, path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Ingestion rejected")
		return nil, err
	}

	s.logger.Info().
		Str("id", doc.Metadata.ID.String()).
		Str("name", doc.Metadata.Name).
		Int64("size", doc.Metadata.Size).
		Msg("Document ingested")

	return doc, nil
}

func (s *Service) ingest(ctx context.Context, path string) (*models.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrap(ErrFileAccess, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrPathIsDir, path)
	}

	content, statSize, err := readFile(path)
	if err != nil {
		return nil, wrap(ErrFileAccess, err)
	}

	if int64(len(content)) != statSize {
		return nil, fmt.Errorf("%w: read %d bytes, file reports %d", ErrInvalidSize, len(content), statSize)
	}

	digest := sha256.Sum256(content)
	checksum := hex.EncodeToString(digest[:])

	detectedType, err := s.checkType(content)
	if err != nil {
		return nil, err
	}

	pdfInfo, err := s.inspector.Inspect(ctx, content)
	if err != nil {
		return nil, &InvalidFileFormatError{FileType: detectedType, Cause: err}
	}

	preview, err := s.renderer.RenderPreview(ctx, content)
	if err != nil {
		return nil, wrap(ErrRenderPreview, err)
	}

	transcript, err := s.extractTranscript(ctx, content)
	if err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, wrap(ErrGenerateID, err)
	}

	doc := &models.Document{
		Metadata: models.Metadata{
			ID:           id,
			Name:         filepath.Base(path),
			Checksum:     checksum,
			DetectedType: detectedType,
			Size:         int64(len(content)),
			CreatedAt:    time.Now().UTC(),
			Transcript:   transcript,
		},
		FileContent: content,
		FilePreview: preview,
	}

	s.logger.Debug().
		Str("id", id.String()).
		Str("checksum", checksum).
		Int("pages", pdfInfo.PageCount).
		Int("preview_size", len(preview)).
		Msg("Document assembled")

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, wrap(ErrStorage, err)
	}

	return doc, nil
}

// readFile reads the whole file and returns the size the filesystem reported when it was opened
func readFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, err
	}

	return content, info.Size(), nil
}

// checkType sniffs the content and rejects anything outside the authorized set
func (s *Service) checkType(content []byte) (string, error) {
	detected := strings.ToLower(s.detector.Detect(content))
	if detected == "" {
		return "", &InvalidFileFormatError{FileType: UnknownFileType}
	}
	if _, ok := s.authorized[detected]; !ok {
		return "", &InvalidFileFormatError{FileType: detected}
	}
	return detected, nil
}

// extractTranscript runs text extraction. In lenient mode a failure yields no transcript instead of an error.
func (s *Service) extractTranscript(ctx context.Context, content []byte) (*string, error) {
	text, err := s.extractor.ExtractText(ctx, content)
	if err != nil {
		if s.lenient {
			s.logger.Warn().Err(err).Msg("Text extraction failed, storing document without transcript")
			return nil, nil
		}
		return nil, wrap(ErrExtractText, err)
	}
	return &text, nil
}

// List returns one keyset page of metadata ordered by ID ascending
func (s *Service) List(ctx context.Context, opts *models.ListOptions) ([]*models.Metadata, error) {
	cursor := interfaces.ListCursor{Limit: opts.EffectiveLimit()}
	if opts != nil && opts.After != nil {
		after := opts.After.ID
		cursor.AfterID = &after
	}

	list, err := s.storage.ListDocuments(ctx, cursor)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return list, nil
}

// GetByID returns the metadata of a single document
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Metadata, error) {
	meta, err := s.storage.GetMetadata(ctx, id)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return meta, nil
}

// GetPreview returns the PNG preview of the document
func (s *Service) GetPreview(ctx context.Context, meta *models.Metadata) ([]byte, error) {
	if meta == nil {
		return nil, wrap(ErrStorage, fmt.Errorf("%w: metadata is nil", ErrNotFound))
	}
	preview, err := s.storage.GetPreview(ctx, meta.ID)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return preview, nil
}

// GetContent returns the raw bytes of the document
func (s *Service) GetContent(ctx context.Context, meta *models.Metadata) ([]byte, error) {
	if meta == nil {
		return nil, wrap(ErrStorage, fmt.Errorf("%w: metadata is nil", ErrNotFound))
	}
	content, err := s.storage.GetContent(ctx, meta.ID)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return content, nil
}
