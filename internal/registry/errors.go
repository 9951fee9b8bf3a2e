package registry

import (
	"fmt"
	"strings"
)

// Kind names the catalog an error refers to
type Kind string

const (
	KindSchema         Kind = "schema"
	KindEncodingScheme Kind = "encoding scheme"
	KindVocabulary     Kind = "controlled vocabulary"
)

// ValidationError indicates a candidate entity failed validation. Errors
// carries every finding, not just the first.
type ValidationError struct {
	Kind   Kind
	ID     string
	Errors []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Kind, e.ID, strings.Join(e.Errors, "; "))
}

// DuplicateIDError indicates an entity with the same ID is already registered
type DuplicateIDError struct {
	Kind Kind
	ID   string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s with ID %s already exists", e.Kind, e.ID)
}

// NotFoundError indicates the entity is not registered
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DependencyError indicates a deletion was blocked by referencing schemas
type DependencyError struct {
	Kind       Kind
	ID         string
	Dependents []string
}

func (e DependencyError) Error() string {
	return fmt.Sprintf("cannot delete %s %s: referenced by %s", e.Kind, e.ID, strings.Join(e.Dependents, ", "))
}
