package domain

import (
	"fmt"
	"strings"
)

// ErrSchemaViolation is returned when a payload does not conform to an
// exported JSON schema. Errors holds one line per failing keyword.
type ErrSchemaViolation struct {
	Schema string   `json:"schema"`
	Errors []string `json:"errors"`
}

func (e *ErrSchemaViolation) Error() string {
	return fmt.Sprintf("schema %s validation failed: %s", e.Schema, strings.Join(e.Errors, "; "))
}
