package validation

import (
	"strings"

	"github.com/metaschema/registry/internal/registry"
)

// MaxIDLength bounds catalog identifiers accepted over the API
const MaxIDLength = registry.MaxIDLength

// ValidateNonEmpty validates that a string is not empty
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Reason: "cannot be empty"}
	}
	return nil
}

// ValidateID validates a catalog identifier taken from a request path. The
// rule is the one the registry applies at registration, so every stored
// entity stays addressable.
func ValidateID(field, id string) error {
	if err := ValidateNonEmpty(field, id); err != nil {
		return err
	}
	if err := registry.CheckID(id); err != nil {
		return ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

// ValidateTarget validates a required query parameter such as format or language
func ValidateTarget(field, value string) error {
	if err := ValidateNonEmpty(field, value); err != nil {
		return ValidationError{Field: field, Reason: "query parameter is required"}
	}
	return nil
}
