package mimetype

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/fyde/internal/interfaces"
)

// genericType is what the sniffer falls back to when nothing more specific matched
const genericType = "application/octet-stream"

// Detector implements interfaces.TypeDetector by content sniffing
type Detector struct{}

// Compile-time interface assertion
var _ interfaces.TypeDetector = (*Detector)(nil)

// NewDetector creates a new content type detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the lower-cased media type without parameters, or "" when nothing matched
func (d *Detector) Detect(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	mtype := mimetype.Detect(content).String()
	if idx := strings.IndexByte(mtype, ';'); idx >= 0 {
		mtype = mtype[:idx]
	}
	mtype = strings.ToLower(strings.TrimSpace(mtype))

	if mtype == genericType {
		return ""
	}
	return mtype
}
