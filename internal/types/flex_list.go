package types

import (
	"encoding/json"
)

// FlexList accepts either a single JSON value or a JSON array of values.
// The web client sends a bare string when only one applicant is selected
// and an array otherwise, so body fields like userIds and userEmails must
// tolerate both shapes.
type FlexList[T any] []T

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	// Try array form first
	var list []T
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}

	// Fall back to a single value
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = []T{single}
	return nil
}

// Slice returns the underlying slice
func (f FlexList[T]) Slice() []T {
	return []T(f)
}
