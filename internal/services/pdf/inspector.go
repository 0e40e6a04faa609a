// -----------------------------------------------------------------------
// PDF Inspector - structural validation and page count via pdfcpu
// -----------------------------------------------------------------------

package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/interfaces"
)

// ErrNoPages is returned for a structurally valid PDF without any page
var ErrNoPages = errors.New("pdf has no pages")

var disableConfigDir sync.Once

// Inspector implements interfaces.PDFInspector using pdfcpu
type Inspector struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.PDFInspector = (*Inspector)(nil)

// NewInspector creates a new PDF inspector
func NewInspector(logger arbor.ILogger) *Inspector {
	// pdfcpu otherwise writes its own config directory on first use
	disableConfigDir.Do(api.DisableConfigDir)

	return &Inspector{
		logger: logger,
	}
}

// Inspect parses and validates the PDF in relaxed mode and reports its page count.
// Malformed input is returned as an error, never a panic.
func (i *Inspector) Inspect(ctx context.Context, content []byte) (info *interfaces.PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("pdf inspection panicked: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(content), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %w", err)
	}

	if pdfCtx.PageCount < 1 {
		return nil, ErrNoPages
	}

	info = &interfaces.PDFInfo{
		PageCount:   pdfCtx.PageCount,
		IsEncrypted: pdfCtx.Encrypt != nil,
	}

	i.logger.Debug().
		Int("page_count", info.PageCount).
		Bool("encrypted", info.IsEncrypted).
		Msg("PDF inspected")

	return info, nil
}
