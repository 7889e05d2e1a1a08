// Package csvimport turns tabular uploads into validated entity-creation
// calls. Failures are accumulated per row and never abort the batch:
// a partially bad file imports its good rows and reports the rest.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Result accumulates per-row outcomes for one batch. Successes already
// committed stay committed regardless of later errors; the caller decides
// what "any success" means for its response.
type Result struct {
	Success []string `json:"success"`
	Errors  []string `json:"errors"`
}

func (r *Result) successf(format string, args ...interface{}) {
	r.Success = append(r.Success, fmt.Sprintf(format, args...))
}

func (r *Result) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// header maps column names to indexes for DictReader-style row access.
type header map[string]int

// row is one record paired with its header.
type row struct {
	h      header
	fields []string
}

// get returns the trimmed cell under the first column name that exists.
func (r row) get(names ...string) string {
	for _, n := range names {
		if idx, ok := r.h[n]; ok && idx < len(r.fields) {
			return strings.TrimSpace(r.fields[idx])
		}
	}
	return ""
}

// readAll parses CSV content into a header and data rows. Records may have
// ragged lengths; short rows simply read as empty cells.
func readAll(content string) (header, []row, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV file")
	}
	h := header{}
	for i, name := range records[0] {
		h[strings.TrimSpace(name)] = i
	}
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, row{h: h, fields: rec})
	}
	return h, rows, nil
}

// truthy interprets the yes/no cells of the upload format.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
