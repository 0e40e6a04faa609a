// Package storagetest holds the behavioural checks every DocumentStorage backend must pass.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/interfaces"
	"github.com/ternarybob/fyde/pkg/models"
)

// Factory opens a fresh, empty backend. The returned cleanup func closes it.
type Factory func(t *testing.T) (interfaces.DocumentStorage, func())

// NewDocument builds a document with a fresh time-ordered ID and small distinct blobs
func NewDocument(t *testing.T, name string) *models.Document {
	t.Helper()

	id, err := common.NewDocumentID()
	require.NoError(t, err)

	transcript := "transcript of " + name
	return &models.Document{
		Metadata: models.Metadata{
			ID:           id,
			Name:         name,
			Checksum:     fmt.Sprintf("%064x", id[:]),
			DetectedType: "application/pdf",
			Size:         int64(len(name)),
			CreatedAt:    time.Now().UTC(),
			Transcript:   &transcript,
		},
		FileContent: []byte("%PDF-" + name),
		FilePreview: []byte("\x89PNG" + name),
	}
}

// RunDocumentStorageSuite runs the full contract against the backend produced by factory
func RunDocumentStorageSuite(t *testing.T, factory Factory) {
	t.Run("EmptyList", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()

		list, err := store.ListDocuments(context.Background(), interfaces.ListCursor{Limit: models.DefaultListLimit})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("SaveAndGetMetadata", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		doc := NewDocument(t, "report.pdf")
		require.NoError(t, store.SaveDocument(ctx, doc))

		meta, err := store.GetMetadata(ctx, doc.Metadata.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Metadata.ID, meta.ID)
		assert.Equal(t, doc.Metadata.Name, meta.Name)
		assert.Equal(t, doc.Metadata.Checksum, meta.Checksum)
		assert.Equal(t, doc.Metadata.DetectedType, meta.DetectedType)
		assert.Equal(t, doc.Metadata.Size, meta.Size)
		assert.True(t, doc.Metadata.CreatedAt.Equal(meta.CreatedAt), "created_at must round-trip")
		require.NotNil(t, meta.Transcript)
		assert.Equal(t, *doc.Metadata.Transcript, *meta.Transcript)
	})

	t.Run("NullTranscript", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		doc := NewDocument(t, "scan.pdf")
		doc.Metadata.Transcript = nil
		require.NoError(t, store.SaveDocument(ctx, doc))

		meta, err := store.GetMetadata(ctx, doc.Metadata.ID)
		require.NoError(t, err)
		assert.Nil(t, meta.Transcript)
	})

	t.Run("BlobRoundTrip", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		doc := NewDocument(t, "blob.pdf")
		doc.FileContent = bytes.Repeat([]byte{0x00, 0xff, 0x25}, 4096)
		require.NoError(t, store.SaveDocument(ctx, doc))

		content, err := store.GetContent(ctx, doc.Metadata.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.FileContent, content)

		preview, err := store.GetPreview(ctx, doc.Metadata.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.FilePreview, preview)
	})

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		doc := NewDocument(t, "first.pdf")
		require.NoError(t, store.SaveDocument(ctx, doc))

		clash := NewDocument(t, "second.pdf")
		clash.Metadata.ID = doc.Metadata.ID
		err := store.SaveDocument(ctx, clash)
		require.Error(t, err)
		assert.ErrorIs(t, err, interfaces.ErrQueryExec)

		// The original row is untouched
		meta, err := store.GetMetadata(ctx, doc.Metadata.ID)
		require.NoError(t, err)
		assert.Equal(t, "first.pdf", meta.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, NewDocument(t, "present.pdf")))
		missing := uuid.New()

		_, err := store.GetMetadata(ctx, missing)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = store.GetPreview(ctx, missing)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		_, err = store.GetContent(ctx, missing)
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})

	t.Run("ZeroLimit", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		require.NoError(t, store.SaveDocument(ctx, NewDocument(t, "a.pdf")))

		list, err := store.ListDocuments(ctx, interfaces.ListCursor{Limit: 0})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("KeysetPaginationIsCompleteAndOrdered", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		const total = 45
		docs := make([]*models.Document, 0, total)
		for i := 0; i < total; i++ {
			docs = append(docs, NewDocument(t, fmt.Sprintf("doc-%02d.pdf", i)))
		}

		// Insertion order must not matter
		shuffled := append([]*models.Document(nil), docs...)
		rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, doc := range shuffled {
			require.NoError(t, store.SaveDocument(ctx, doc))
		}

		expected := make([]uuid.UUID, 0, total)
		for _, doc := range docs {
			expected = append(expected, doc.Metadata.ID)
		}
		sort.Slice(expected, func(i, j int) bool {
			return bytes.Compare(expected[i][:], expected[j][:]) < 0
		})

		var (
			seen     []uuid.UUID
			after    *uuid.UUID
			pageSize = 20
			pages    []int
		)
		for {
			page, err := store.ListDocuments(ctx, interfaces.ListCursor{AfterID: after, Limit: pageSize})
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			pages = append(pages, len(page))
			for _, meta := range page {
				seen = append(seen, meta.ID)
			}
			last := page[len(page)-1].ID
			after = &last
		}

		assert.Equal(t, []int{20, 20, 5}, pages)
		assert.Equal(t, expected, seen)
	})

	t.Run("CursorBetweenStoredIDs", func(t *testing.T) {
		store, cleanup := factory(t)
		defer cleanup()
		ctx := context.Background()

		first := NewDocument(t, "first.pdf")
		second := NewDocument(t, "second.pdf")
		require.NoError(t, store.SaveDocument(ctx, first))
		require.NoError(t, store.SaveDocument(ctx, second))

		// A cursor need not name a stored row; the nil UUID sorts before everything
		nilID := uuid.Nil
		list, err := store.ListDocuments(ctx, interfaces.ListCursor{AfterID: &nilID, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		var maxID uuid.UUID
		for i := range maxID {
			maxID[i] = 0xff
		}
		list, err = store.ListDocuments(ctx, interfaces.ListCursor{AfterID: &maxID, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
