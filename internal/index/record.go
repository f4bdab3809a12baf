// Package index holds the persisted filter record schema and the
// immutable in-memory index the searcher ranks against. The index is
// built exactly once, at startup, from records supplied by the indexer;
// after that it is read-only and safe for concurrent searches.
package index

import (
	"github.com/decimalpack/Static-Website-Search/internal/sbf"
)

// Record is the interchange schema for one document's filter, as emitted
// by the index builder and persisted in PostgreSQL. The JSON field names
// are the wire format and must not change.
type Record struct {
	SBFBase2p15    string `json:"sbf_base2p15"`
	NHashFunctions uint32 `json:"n_hash_functions"`
	Width          uint32 `json:"width"`
	Size           uint32 `json:"size"`
	URL            string `json:"url"`
	Title          string `json:"title"`
}

// Filter decodes the record into a validated spectral filter.
func (r Record) Filter() (*sbf.Filter, error) {
	return sbf.New(r.SBFBase2p15, r.NHashFunctions, r.Width, r.Size, r.Title, r.URL)
}

// FromFilter converts a built filter back into its record form.
func FromFilter(f *sbf.Filter) Record {
	return Record{
		SBFBase2p15:    f.Encoded(),
		NHashFunctions: f.HashCount(),
		Width:          f.Width(),
		Size:           f.Slots(),
		URL:            f.URL(),
		Title:          f.Title(),
	}
}
