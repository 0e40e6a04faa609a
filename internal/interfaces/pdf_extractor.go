// -----------------------------------------------------------------------
// PDF engine interfaces - rendering, text extraction and inspection
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PDFInfo contains what the inspector learned about a PDF before rendering
type PDFInfo struct {
	PageCount   int  `json:"page_count"`
	IsEncrypted bool `json:"is_encrypted"`
}

// PDFInspector validates the document structure and reports its page count.
// Implementations must return an error rather than panic on malformed input.
type PDFInspector interface {
	Inspect(ctx context.Context, content []byte) (*PDFInfo, error)
}

// PreviewRenderer rasterises the first renderable page of a document into PNG bytes.
// This interface abstracts the rendering engine so it can be replaced without
// touching the ingestion pipeline.
type PreviewRenderer interface {
	RenderPreview(ctx context.Context, content []byte) ([]byte, error)
}

// TextExtractor extracts a plain-text transcript of every page, in ascending page order.
type TextExtractor interface {
	ExtractText(ctx context.Context, content []byte) (string, error)
}

// TypeDetector sniffs the media type of raw content.
// Returns an empty string when no type could be detected.
type TypeDetector interface {
	Detect(content []byte) string
}
