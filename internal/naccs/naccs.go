// Package naccs maps free-text package style descriptions to NACCS package
// codes using an alias master table.
package naccs

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// Lookup statuses.
const (
	StatusEmpty    = "EMPTY"    // no package text supplied
	StatusMapped   = "MAPPED"   // alias found in the master
	StatusUnmapped = "UNMAPPED" // text present but unknown
)

// Result is the outcome of one package text lookup.
type Result struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize canonicalizes package text for matching: trimmed, upper-cased,
// full-width spaces folded, runs of whitespace collapsed.
func Normalize(text string) string {
	value := strings.ToUpper(strings.TrimSpace(text))
	value = strings.ReplaceAll(value, "　", " ")
	return whitespace.ReplaceAllString(value, " ")
}

// LoadMaster parses an alias master CSV with "alias,code" columns into a
// lookup table keyed by normalized alias. Rows with an empty alias are
// skipped.
func LoadMaster(data []byte) (map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read package master: %w", err)
	}

	mapping := make(map[string]string)
	for i, row := range records {
		if len(row) < 2 {
			continue
		}
		alias := strings.TrimSpace(row[0])
		code := strings.TrimSpace(row[1])
		if alias == "" {
			continue
		}
		// Skip a header row if present.
		if i == 0 && strings.EqualFold(alias, "alias") {
			continue
		}
		mapping[Normalize(alias)] = code
	}
	return mapping, nil
}

// Map resolves one package text against the master table.
func Map(text string, mapping map[string]string) Result {
	if text == "" {
		return Result{Status: StatusEmpty}
	}
	if code, ok := mapping[Normalize(text)]; ok && code != "" {
		return Result{Code: code, Status: StatusMapped}
	}
	return Result{Status: StatusUnmapped}
}
