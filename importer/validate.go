package importer

import (
	"fmt"
	"strings"
)

// MissingColumnsError lists required columns absent from a sheet header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RequireColumns checks required names against canonical headers by exact
// match.
func RequireColumns(headers []string, required []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, header := range headers {
		if header != "" {
			present[header] = struct{}{}
		}
	}

	missing := make([]string, 0)
	for _, column := range required {
		if _, ok := present[NormalizeHeader(column)]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
