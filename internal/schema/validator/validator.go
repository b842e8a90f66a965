package validator

import (
	"fmt"
	"strings"

	"github.com/rpattn/salesingest/internal/schema"
)

const byteOrderMark = "\ufeff"

// ValidationError lists every required column absent from a header row.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NormalizeHeader strips a leading byte order mark from the first header cell.
// Names are otherwise kept verbatim and matching is case-sensitive.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	copy(out, header)
	if len(out) > 0 {
		out[0] = strings.TrimPrefix(out[0], byteOrderMark)
	}
	return out
}

// Validate checks that every column in required appears by exact name in
// header. Missing names are reported in schema order.
func Validate(header []string, required []schema.Column) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range NormalizeHeader(header) {
		present[h] = struct{}{}
	}

	var missing []string
	for _, col := range required {
		if _, ok := present[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
