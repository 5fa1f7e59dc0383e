package repo

import (
	"encoding/json"
	"fmt"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// Helpers shared by the SQL adapters, which keep type-specific check data
// and nested monitor config in JSON columns.

// NullableJSON marshals v, returning nil (SQL NULL) for a nil pointer.
func NullableJSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return b, nil
}

// ScanJSON unmarshals a nullable JSON column into a fresh *T.
func ScanJSON[T any](raw []byte) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return v, nil
}

// CheckDetails returns the type-specific section of c, or nil for plain checks.
func CheckDetails(c *domain.Check) ([]byte, error) {
	switch {
	case c.PageSpeed != nil:
		return NullableJSON(c.PageSpeed)
	case c.Hardware != nil:
		return NullableJSON(c.Hardware)
	case c.Distributed != nil:
		return NullableJSON(c.Distributed)
	}
	return nil, nil
}
