package indexer

import (
	"encoding/json"
	"io"

	"github.com/decimalpack/Static-Website-Search/internal/index"
)

// ExportJSON writes records as an indented JSON array, the portable index
// format consumed by static frontends and by the searcher's file loader.
func ExportJSON(records []index.Record, w io.Writer) error {
	if records == nil {
		records = []index.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ImportJSON reads a JSON array of records previously written by ExportJSON.
func ImportJSON(r io.Reader) ([]index.Record, error) {
	var records []index.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
