package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	composerFont     = "Arial"
	composerFontSize = 11.0
	composerLine     = 5.5
)

// Composer lays markdown out as a PDF that the ingestion pipeline accepts.
// A thematic break ("---") starts a new page.
type Composer struct {
	logger arbor.ILogger
	md     goldmark.Markdown
}

// NewComposer creates a new markdown composer
func NewComposer(logger arbor.ILogger) *Composer {
	return &Composer{
		logger: logger,
		md:     goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
	}
}

// ComposeFromMarkdown converts markdown to PDF bytes. title is written to the document properties.
func (c *Composer) ComposeFromMarkdown(markdown, title string) ([]byte, error) {
	c.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Composing PDF from markdown")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	if title != "" {
		doc.SetTitle(title, true)
	}
	doc.SetCreator("fyde", true)
	doc.AddPage()
	doc.SetFont(composerFont, "", composerFontSize)

	source := []byte(markdown)
	w := &markdownWriter{
		pdf:    doc,
		source: source,
	}
	if err := ast.Walk(c.md.Parser().Parse(text.NewReader(source)), w.walk); err != nil {
		return nil, fmt.Errorf("failed to lay out markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		c.logger.Error().Err(err).Msg("Failed to write PDF output")
		return nil, fmt.Errorf("failed to write PDF output: %w", err)
	}

	c.logger.Debug().Int("pdf_size", buf.Len()).Int("pages", doc.PageCount()).Msg("PDF composed")
	return buf.Bytes(), nil
}

type markdownWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	bold      bool
	italic    bool
	listLevel int
}

func (w *markdownWriter) applyFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(composerFont, style, composerFontSize)
}

func (w *markdownWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(4)
			w.pdf.SetFont(composerFont, "B", headingSize(node.Level))
		} else {
			w.pdf.Ln(8)
			w.applyFont()
		}
	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(composerLine + 2)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(composerLine, string(node.Segment.Value(w.source)))
			if node.SoftLineBreak() {
				w.pdf.Write(composerLine, " ")
			}
			if node.HardLineBreak() {
				w.pdf.Ln(composerLine)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.applyFont()
	case *ast.CodeSpan:
		if entering {
			w.pdf.SetFont("Courier", "", composerFontSize-1)
			w.pdf.Write(composerLine, string(node.Text(w.source)))
			w.applyFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			w.writeCodeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			w.writeCodeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		if entering {
			w.listLevel++
		} else {
			w.listLevel--
			if w.listLevel == 0 {
				w.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			w.pdf.SetX(15 + float64(w.listLevel)*5)
			w.pdf.Write(composerLine, "- ")
		}
	case *ast.ThematicBreak:
		if entering {
			w.pdf.AddPage()
			w.applyFont()
		}
	}
	return ast.WalkContinue, nil
}

func (w *markdownWriter) writeCodeBlock(lines *text.Segments) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Courier", "", composerFontSize-2)
	w.pdf.SetFillColor(245, 245, 245)

	var block strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		block.Write(line.Value(w.source))
	}
	w.pdf.MultiCell(0, composerLine-1, strings.TrimRight(block.String(), "\n"), "", "L", true)

	w.pdf.SetFillColor(255, 255, 255)
	w.applyFont()
	w.pdf.Ln(2)
}

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 12
	default:
		return composerFontSize
	}
}
