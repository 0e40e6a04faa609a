package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fyde/internal/interfaces"
)

// PreviewDPI renders at 1.0x scale (PDF user space is 72 units per inch)
const PreviewDPI = 72.0

// ErrNoRenderablePage is returned when no page of the document could be rasterised
var ErrNoRenderablePage = errors.New("no renderable page")

// Renderer implements interfaces.PreviewRenderer using MuPDF
type Renderer struct {
	logger arbor.ILogger
	dpi    float64
}

// Compile-time interface assertion
var _ interfaces.PreviewRenderer = (*Renderer)(nil)

// NewRenderer creates a new preview renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	return &Renderer{
		logger: logger,
		dpi:    PreviewDPI,
	}
}

// RenderPreview rasterises the first renderable page onto a white background and PNG-encodes it
func (r *Renderer) RenderPreview(ctx context.Context, content []byte) (preview []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			preview = nil
			err = fmt.Errorf("render engine panicked: %v", rec)
		}
	}()

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var (
		page    image.Image
		lastErr error
	)
	for i := 0; i < doc.NumPage(); i++ {
		img, renderErr := doc.ImageDPI(i, r.dpi)
		if renderErr == nil {
			page = img
			r.logger.Debug().Int("page", i).Msg("Rendered preview page")
			break
		}
		lastErr = renderErr
		r.logger.Warn().Err(renderErr).Int("page", i).Msg("Page not renderable, trying next")
	}
	if page == nil {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoRenderablePage, lastErr)
		}
		return nil, ErrNoRenderablePage
	}

	bounds := page.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, page, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return buf.Bytes(), nil
}
