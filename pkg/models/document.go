package models

import (
	"time"

	"github.com/google/uuid"
)

// Metadata describes one ingested file. All fields are set once at ingestion.
type Metadata struct {
	ID           uuid.UUID `json:"id"`            // time-ordered (v7), primary sort key
	Name         string    `json:"name"`          // last path segment of the source file
	Checksum     string    `json:"checksum"`      // hex SHA-256 of the raw bytes
	DetectedType string    `json:"detected_type"` // lower-cased sniffed media type
	Size         int64     `json:"size"`          // byte length of the raw content
	CreatedAt    time.Time `json:"created_at"`    // UTC
	Transcript   *string   `json:"transcript,omitempty"`
}

// HasTranscript reports whether text extraction produced a transcript.
func (m *Metadata) HasTranscript() bool {
	return m != nil && m.Transcript != nil
}

// Document is the full ingested unit: metadata plus the raw file and its rendered preview (PNG).
type Document struct {
	Metadata    Metadata `json:"metadata"`
	FileContent []byte   `json:"-"`
	FilePreview []byte   `json:"-"`
}
