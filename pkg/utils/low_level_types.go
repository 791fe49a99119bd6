package utils

import (
	"errors"
	"fmt"
)

// XError is a storage/transport failure with a short reason and the
// underlying cause in Meta.
type XError struct {
	Reason string
	Meta   any
}

func (xe XError) ToError() error {
	if cause, ok := xe.Meta.(error); ok {
		return fmt.Errorf("xerror: %v: %w", xe.Reason, cause)
	}
	if xe.Meta == nil {
		return errors.New("xerror: " + xe.Reason)
	}
	return fmt.Errorf("xerror: %v\nmeta: %v", xe.Reason, xe.Meta)
}

// FirstNonEmpty returns the first non-blank value, or "" when all are blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
