// Package targetlist loads the target device population from a CSV file of
// serial numbers and renders it as an RSQL target-filter query.
//
// The input format is one serial number per row in the first column. Blank
// rows are skipped and duplicate serials are collapsed, keeping the first
// occurrence so the verification report preserves the file's order.
package targetlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// TargetSet is an ordered, de-duplicated set of target serial numbers.
type TargetSet struct {
	Serials []string
}

// Load reads serial numbers from a CSV file.
// An empty or serial-free file is an error: a rollout against zero targets
// is always a mistake.
func Load(path string) (*TargetSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read target list: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may have trailing columns; only the first matters

	var serials []string
	seen := make(map[string]bool)

	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("malformed target list %s: %w", path, err)
		}

		if len(row) == 0 {
			continue
		}
		serial := strings.TrimSpace(row[0])
		if serial == "" {
			continue
		}
		if seen[serial] {
			continue
		}
		seen[serial] = true
		serials = append(serials, serial)
	}

	if len(serials) == 0 {
		return nil, fmt.Errorf("target list %s contains no serial numbers", path)
	}

	return &TargetSet{Serials: serials}, nil
}

// Query renders the set as an RSQL OR-query over target names:
//
//	(name=="SN1" or name=="SN2" or name=="SN3")
func (ts *TargetSet) Query() string {
	terms := make([]string, len(ts.Serials))
	for i, serial := range ts.Serials {
		terms[i] = fmt.Sprintf("name==%q", serial)
	}
	return "(" + strings.Join(terms, " or ") + ")"
}

// Len returns the number of distinct serials in the set.
func (ts *TargetSet) Len() int {
	return len(ts.Serials)
}

// Suffix returns the last n characters of the first serial, used to tag
// rollout names with a recognizable fleet hint.
func (ts *TargetSet) Suffix(n int) string {
	first := ts.Serials[0]
	if len(first) <= n {
		return first
	}
	return first[len(first)-n:]
}
