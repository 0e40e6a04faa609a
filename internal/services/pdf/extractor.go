package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/interfaces"
)

// Extractor implements interfaces.TextExtractor using MuPDF
type Extractor struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Extractor)(nil)

// NewExtractor creates a new text extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// ExtractText extracts every page in ascending page order. Each page's text ends with a newline.
// Any page failure fails the whole extraction.
func (e *Extractor) ExtractText(ctx context.Context, content []byte) (transcript string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			transcript = ""
			err = fmt.Errorf("text engine panicked: %v", rec)
		}
	}()

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var builder strings.Builder
	pages := doc.NumPage()
	for i := 0; i < pages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i+1, err)
		}
		builder.WriteString(text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			builder.WriteByte('\n')
		}
	}

	e.logger.Debug().
		Int("pages", pages).
		Int("text_len", builder.Len()).
		Msg("Extracted PDF text")

	return builder.String(), nil
}
