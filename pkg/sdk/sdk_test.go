package sdk

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/common"
	"github.com/ternarybob/fyde/internal/services/pdf"
)

var updateGolden = flag.Bool("update", false, "rewrite golden transcript files")

const (
	basicTextFixture  = "testdata/basic-text.pdf"
	basicTextGolden   = "testdata/basic-text.transcript.golden"
	basicTextChecksum = "382ac9ea60bb0ba40c9eb0815f4ec7f60e248fc136d3055c411d09709e1b9b31"
	basicTextSize     = 74656
)

func initMemorySDK(t *testing.T) *SDK {
	t.Helper()
	s, err := Init(&Config{StorageType: StorageMemory, Logger: arbor.NewLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeComposedPDF(t *testing.T, name, markdown string) string {
	t.Helper()
	content, err := pdf.NewComposer(arbor.NewLogger()).ComposeFromMarkdown(markdown, name)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// assertRoundTrip checks list, get-by-id and both blob reads against the saved document
func assertRoundTrip(t *testing.T, s *SDK, saved *Document) {
	t.Helper()
	ctx := context.Background()

	docs, err := s.Documents.List(ctx, &ListOptions{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, saved.Metadata, *docs[0])

	preview, err := s.Documents.GetPreview(ctx, &saved.Metadata)
	require.NoError(t, err)
	assert.Equal(t, saved.FilePreview, preview)

	content, err := s.Documents.GetContent(ctx, &saved.Metadata)
	require.NoError(t, err)
	assert.Equal(t, saved.FileContent, content)

	meta, err := s.Documents.GetByID(ctx, saved.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Metadata, *meta)
}

func TestIntegration_BasicTextFixture(t *testing.T) {
	if _, err := os.Stat(basicTextFixture); err != nil {
		t.Skipf("fixture %s not present", basicTextFixture)
	}

	s := initMemorySDK(t)

	saved, err := s.Documents.SaveFileFromPath(context.Background(), basicTextFixture)
	require.NoError(t, err)

	assert.Equal(t, "basic-text.pdf", saved.Metadata.Name)
	assert.Equal(t, basicTextChecksum, saved.Metadata.Checksum)
	assert.Equal(t, "application/pdf", saved.Metadata.DetectedType)
	assert.Equal(t, int64(basicTextSize), saved.Metadata.Size)
	require.NotNil(t, saved.Metadata.Transcript)
	assert.Contains(t, *saved.Metadata.Transcript, "Sample Document for PDF Testing")
	assert.Contains(t, *saved.Metadata.Transcript, "This is an example of a block quote.")
	assert.Contains(t, *saved.Metadata.Transcript, "Sample-Files.com")
	assertGoldenTranscript(t, *saved.Metadata.Transcript)
	assert.NotEmpty(t, saved.FilePreview)
	assert.NotEmpty(t, saved.FileContent)

	assertRoundTrip(t, s, saved)
}

// assertGoldenTranscript compares the transcript byte for byte with the recorded
// MuPDF output. Run with -update to record it.
func assertGoldenTranscript(t *testing.T, transcript string) {
	t.Helper()

	if *updateGolden {
		require.NoError(t, os.WriteFile(basicTextGolden, []byte(transcript), 0644))
		return
	}

	golden, err := os.ReadFile(basicTextGolden)
	if errors.Is(err, os.ErrNotExist) {
		t.Logf("golden transcript %s not recorded; run with -update", basicTextGolden)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, string(golden), transcript)
}

func TestIntegration_ComposedDocument(t *testing.T) {
	s := initMemorySDK(t)
	path := writeComposedPDF(t, "minutes.pdf", "# Minutes\n\nAttendees agreed on the budget.\n\n---\n\nAction items follow.\n")

	saved, err := s.Documents.SaveFileFromPath(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "minutes.pdf", saved.Metadata.Name)
	assert.Equal(t, "application/pdf", saved.Metadata.DetectedType)
	require.NotNil(t, saved.Metadata.Transcript)
	assert.Contains(t, *saved.Metadata.Transcript, "Attendees agreed on the budget.")
	assert.Contains(t, *saved.Metadata.Transcript, "Action items follow.")

	assertRoundTrip(t, s, saved)
}

func TestIntegration_NonPDFIsRejectedAndNotStored(t *testing.T) {
	s := initMemorySDK(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("these are plain text notes\n"), 0644))

	_, err := s.Documents.SaveFileFromPath(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFileFormat)

	var formatErr *InvalidFileFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "text/plain", formatErr.FileType)

	docs, err := s.Documents.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIntegration_SavingTwiceCreatesTwoRecords(t *testing.T) {
	s := initMemorySDK(t)
	path := writeComposedPDF(t, "twice.pdf", "Same content both times.\n")
	ctx := context.Background()

	first, err := s.Documents.SaveFileFromPath(ctx, path)
	require.NoError(t, err)
	second, err := s.Documents.SaveFileFromPath(ctx, path)
	require.NoError(t, err)

	assert.NotEqual(t, first.Metadata.ID, second.Metadata.ID)
	assert.Equal(t, first.Metadata.Checksum, second.Metadata.Checksum)

	docs, err := s.Documents.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.Metadata.ID, docs[0].ID)
	assert.Equal(t, second.Metadata.ID, docs[1].ID)
}

func TestIntegration_MissingPath(t *testing.T) {
	s := initMemorySDK(t)

	_, err := s.Documents.SaveFileFromPath(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrFileAccess)
}

func TestIntegration_UnknownIDIsNotFound(t *testing.T) {
	s := initMemorySDK(t)
	path := writeComposedPDF(t, "one.pdf", "One.\n")
	saved, err := s.Documents.SaveFileFromPath(context.Background(), path)
	require.NoError(t, err)

	missing := saved.Metadata
	missing.ID[15] ^= 0xff

	_, err = s.Documents.GetByID(context.Background(), missing.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrStorage)

	_, err = s.Documents.GetContent(context.Background(), &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInit_FileSystemUsesConfigDirectory(t *testing.T) {
	t.Cleanup(xdg.Reload)
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	xdg.Reload()

	s, err := Init(&Config{StorageType: StorageFileSystem, Logger: arbor.NewLogger()})
	require.NoError(t, err)

	path := writeComposedPDF(t, "kept.pdf", "Kept across restarts.\n")
	saved, err := s.Documents.SaveFileFromPath(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(configHome, common.AppName, common.SQLiteFileName))
	require.NoError(t, err)

	reopened, err := Init(&Config{StorageType: StorageFileSystem, Logger: arbor.NewLogger()})
	require.NoError(t, err)
	defer reopened.Close()

	meta, err := reopened.Documents.GetByID(context.Background(), saved.Metadata.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Metadata, *meta)
}

func TestInit_ConfigDirectoryFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	systemDir := t.TempDir()

	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", blocker)
	t.Setenv("XDG_CONFIG_DIRS", systemDir)
	xdg.Reload()

	_, err := Init(&Config{StorageType: StorageFileSystem, Logger: arbor.NewLogger()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigSetup)

	_, statErr := os.Stat(filepath.Join(systemDir, common.AppName, common.SQLiteFileName))
	assert.True(t, os.IsNotExist(statErr), "database must not be placed in a system config dir")
}

func TestInit_BadgerFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "fyde.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[storage]
type = "badger"
`), 0644))

	s, err := Init(&Config{StorageType: StorageMemory, ConfigFiles: []string{configPath}, Logger: arbor.NewLogger()})
	require.NoError(t, err)
	defer s.Close()

	path := writeComposedPDF(t, "badger.pdf", "Stored in badger.\n")
	saved, err := s.Documents.SaveFileFromPath(context.Background(), path)
	require.NoError(t, err)

	assertRoundTrip(t, s, saved)
}
