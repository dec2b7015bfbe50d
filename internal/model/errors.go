package model

import (
	"fmt"
	"strings"
)

// ValidationError rejects caller input that names an unknown value.
type ValidationError struct {
	Field string   `json:"field"`
	Value string   `json:"value"`
	Valid []string `json:"valid,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q (valid: %s)", e.Field, e.Value, strings.Join(e.Valid, ", "))
}
