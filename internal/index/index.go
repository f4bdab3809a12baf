package index

import (
	"fmt"
	"log/slog"

	"github.com/decimalpack/Static-Website-Search/internal/sbf"
)

// Index is the ordered, immutable collection of document filters.
// Construction is the only mutation point.
type Index struct {
	filters []*sbf.Filter
	skipped int
}

// Load validates every record and builds the Index, preserving record
// order. A record that fails to decode is skipped and logged rather than
// aborting the load; Load fails only when records were supplied and none
// of them survived.
func Load(records []Record) (*Index, error) {
	logger := slog.Default().With("component", "index")
	idx := &Index{
		filters: make([]*sbf.Filter, 0, len(records)),
	}
	for i, rec := range records {
		f, err := rec.Filter()
		if err != nil {
			idx.skipped++
			logger.Warn("skipping undecodable filter record",
				"position", i,
				"url", rec.URL,
				"error", err,
			)
			continue
		}
		idx.filters = append(idx.filters, f)
	}
	if len(records) > 0 && len(idx.filters) == 0 {
		return nil, fmt.Errorf("no usable filter records out of %d", len(records))
	}
	logger.Info("index loaded", "filters", len(idx.filters), "skipped", idx.skipped)
	return idx, nil
}

// Len returns the number of loaded filters.
func (x *Index) Len() int { return len(x.filters) }

// At returns the filter at position i.
func (x *Index) At(i int) *sbf.Filter { return x.filters[i] }

// Skipped returns the number of records dropped during Load.
func (x *Index) Skipped() int { return x.skipped }
