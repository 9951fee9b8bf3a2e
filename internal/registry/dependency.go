package registry

import (
	"context"
	"slices"
)

// Dependents returns the IDs of the other schemas that list id among their
// encoding scheme or controlled vocabulary references. A non-empty result
// blocks DeleteSchema.
func (r *Registry) Dependents(ctx context.Context, id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dependents(id)
}

// dependents must be called with the lock held
func (r *Registry) dependents(id string) []string {
	deps := []string{}
	r.schemas.each(func(schemaID string, s *Schema) {
		if schemaID == id {
			return
		}
		if slices.Contains(s.EncodingSchemes, id) || slices.Contains(s.ControlledVocabularies, id) {
			deps = append(deps, schemaID)
		}
	})
	return deps
}

// referencingSchemas returns every schema that references the encoding
// scheme or vocabulary id, at schema level or from one of its elements.
// Only references of the given kind count. Must be called with the lock held.
func (r *Registry) referencingSchemas(kind Kind, id string) []string {
	deps := []string{}
	r.schemas.each(func(schemaID string, s *Schema) {
		if references(kind, s, id) {
			deps = append(deps, schemaID)
		}
	})
	return deps
}

func references(kind Kind, s *Schema, id string) bool {
	switch kind {
	case KindEncodingScheme:
		if slices.Contains(s.EncodingSchemes, id) {
			return true
		}
		return slices.ContainsFunc(s.Elements, func(el Element) bool { return el.EncodingScheme == id })
	case KindVocabulary:
		if slices.Contains(s.ControlledVocabularies, id) {
			return true
		}
		return slices.ContainsFunc(s.Elements, func(el Element) bool { return el.ControlledVocabulary == id })
	}
	return false
}
