package models

const (
	// DefaultListLimit is used when the caller does not supply a page size
	DefaultListLimit = 20
	// MaxListLimit caps any caller-supplied page size
	MaxListLimit = 100
)

// ListOptions selects one page of metadata ordered by ID ascending.
// After is a keyset cursor: only records with an ID strictly greater than After.ID are returned.
type ListOptions struct {
	After *Metadata
	Limit *int
}

// EffectiveLimit applies the default and the upper bound to the requested page size.
func (o *ListOptions) EffectiveLimit() int {
	if o == nil || o.Limit == nil {
		return DefaultListLimit
	}
	limit := *o.Limit
	if limit > MaxListLimit {
		return MaxListLimit
	}
	if limit < 0 {
		return 0
	}
	return limit
}
