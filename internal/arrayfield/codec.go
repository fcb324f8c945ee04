// Package arrayfield converts ordered string lists to and from the single
// encoded TEXT value they are stored as. It is only used at the storage boundary.
package arrayfield

import (
	"encoding/json"
	"fmt"
	"strings"

	"boothbook/internal/apperrors"
)

// Normalize trims every element and drops empty ones. It returns nil when
// nothing is left, so an all-blank list is treated as absent.
func Normalize(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Encode normalizes list and serializes it. Absent (nil) is returned for an
// empty result, never an encoded empty list.
func Encode(list []string) (*string, error) {
	norm := Normalize(list)
	if norm == nil {
		return nil, nil
	}
	b, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("encode array field: %w", err)
	}
	s := string(b)
	return &s, nil
}

// Decode parses an encoded value. Absent decodes to an empty list; anything
// that is not a JSON array of strings is an apperrors.ErrDecode.
func Decode(encoded *string) ([]string, error) {
	if encoded == nil {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(*encoded), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	if out == nil {
		// "null" is not a list
		return nil, fmt.Errorf("%w: expected array, got %q", apperrors.ErrDecode, *encoded)
	}
	return out, nil
}

