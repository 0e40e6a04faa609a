package pdf

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const twoPageMarkdown = `# Quarterly Notes

First page paragraph with **bold** and *italic* text.

- alpha
- beta

---

Second page paragraph with ` + "`inline code`" + `.
`

func composeTwoPages(t *testing.T) []byte {
	t.Helper()
	content, err := NewComposer(arbor.NewLogger()).ComposeFromMarkdown(twoPageMarkdown, "Quarterly Notes")
	require.NoError(t, err)
	return content
}

func TestComposeFromMarkdown(t *testing.T) {
	composer := NewComposer(arbor.NewLogger())

	tests := []struct {
		name     string
		markdown string
	}{
		{"Basic", "# Title\n\nSome paragraph text.\n\n- Item 1\n- Item 2"},
		{"Empty", ""},
		{"Code block", "Intro\n\n```go\nfunc main() {}\n```\n"},
		{"Emphasis", "Normal **Bold** *Italic* ***BoldItalic***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := composer.ComposeFromMarkdown(tt.markdown, tt.name)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
		})
	}
}

func TestInspector_CountsPages(t *testing.T) {
	info, err := NewInspector(arbor.NewLogger()).Inspect(context.Background(), composeTwoPages(t))
	require.NoError(t, err)
	assert.Equal(t, 2, info.PageCount)
	assert.False(t, info.IsEncrypted)
}

func TestInspector_RejectsMalformedInput(t *testing.T) {
	inspector := NewInspector(arbor.NewLogger())

	inputs := map[string][]byte{
		"empty":     {},
		"plain":     []byte("just some text, not a pdf"),
		"truncated": []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			info, err := inspector.Inspect(context.Background(), input)
			assert.Error(t, err)
			assert.Nil(t, info)
		})
	}
}

func TestRenderer_RendersFirstPageOnWhite(t *testing.T) {
	preview, err := NewRenderer(arbor.NewLogger()).RenderPreview(context.Background(), composeTwoPages(t))
	require.NoError(t, err)
	require.NotEmpty(t, preview)

	img, err := png.Decode(bytes.NewReader(preview))
	require.NoError(t, err)

	// A4 at 72 DPI is 595x842 points
	bounds := img.Bounds()
	assert.InDelta(t, 595, bounds.Dx(), 1)
	assert.InDelta(t, 842, bounds.Dy(), 1)

	r, g, b, a := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderer_RejectsGarbage(t *testing.T) {
	_, err := NewRenderer(arbor.NewLogger()).RenderPreview(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}

func TestExtractor_PagesInOrder(t *testing.T) {
	transcript, err := NewExtractor(arbor.NewLogger()).ExtractText(context.Background(), composeTwoPages(t))
	require.NoError(t, err)

	first := strings.Index(transcript, "First page paragraph")
	second := strings.Index(transcript, "Second page paragraph")
	require.GreaterOrEqual(t, first, 0, "transcript: %q", transcript)
	require.GreaterOrEqual(t, second, 0, "transcript: %q", transcript)
	assert.Less(t, first, second)
	assert.Contains(t, transcript, "Quarterly Notes")
}

func TestExtractor_RejectsGarbage(t *testing.T) {
	_, err := NewExtractor(arbor.NewLogger()).ExtractText(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
