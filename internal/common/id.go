package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a time-ordered (v7) document ID.
// Its 16-byte big-endian form sorts in generation order, which keyset pagination relies on.
func NewDocumentID() (uuid.UUID, error) {
	return uuid.NewV7()
}
