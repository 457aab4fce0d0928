// Package ingest loads raw transaction records from upstream export
// files. The records stay untyped: validation and normalization are
// the normalizer's job.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/finsight/dashis/pkg/models/domain"
)

// LoadFile reads a JSON array of raw records from path.
func LoadFile(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a JSON array of raw records from r. Array elements that
// are not objects are kept as empty records; the normalizer drops
// them later like any other malformed input.
func Load(r io.Reader) ([]domain.RawRecord, error) {
	var rows []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("records file is not a JSON array: %w", err)
	}

	records := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		var rec domain.RawRecord
		if err := json.Unmarshal(row, &rec); err != nil {
			rec = domain.RawRecord{}
		}
		records = append(records, rec)
	}
	return records, nil
}
