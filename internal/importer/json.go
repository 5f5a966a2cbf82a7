package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ghbulk/ghbulk/internal/domain"
)

// ParseJSON decodes a JSON array of issue objects into drafts. Anything but
// an array at the top level is rejected before decoding, as is an array whose
// elements are not objects.
func ParseJSON(data []byte) ([]domain.IssueDraft, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &domain.ValidationError{Violations: []string{"import payload must be a JSON array"}}
	}

	var drafts []domain.IssueDraft
	if err := json.Unmarshal(trimmed, &drafts); err != nil {
		return nil, &domain.ValidationError{Violations: []string{fmt.Sprintf("invalid JSON import payload: %v", err)}}
	}

	return drafts, nil
}
