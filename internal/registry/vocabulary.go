package registry

import (
	"context"
)

// RegisterControlledVocabulary validates and stores a copy of the vocabulary
func (r *Registry) RegisterControlledVocabulary(ctx context.Context, vocab *ControlledVocabulary) (receipt *Receipt, err error) {
	id := ""
	if vocab != nil {
		id = vocab.ID
	}
	_, o := r.begin(ctx, "register_vocabulary", KindVocabulary, id)
	defer func() { o.end(err) }()

	if res := validateVocabulary(vocab); !res.Valid {
		r.metrics.RecordValidationFailure(catalogVocabularies)
		return nil, ValidationError{Kind: KindVocabulary, ID: id, Errors: res.Errors}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vocabularies.has(vocab.ID) {
		return nil, DuplicateIDError{Kind: KindVocabulary, ID: vocab.ID}
	}

	now := r.now()
	r.vocabularies.put(vocab.ID, vocab.Clone())
	r.updateGauges()

	r.log.Info().Str("vocabulary_id", vocab.ID).Int("terms", len(vocab.Terms)).Msg("Controlled vocabulary registered")

	return &Receipt{ID: vocab.ID, Version: vocab.Version, RegisteredAt: now}, nil
}

// GetControlledVocabulary returns a copy of the vocabulary, or false if absent
func (r *Registry) GetControlledVocabulary(ctx context.Context, id string) (*ControlledVocabulary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vocabularies.get(id)
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// ListControlledVocabularies summarizes every vocabulary in registration order
func (r *Registry) ListControlledVocabularies(ctx context.Context) []ControlledVocabularySummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ControlledVocabularySummary, 0, r.vocabularies.len())
	r.vocabularies.each(func(_ string, v *ControlledVocabulary) {
		out = append(out, ControlledVocabularySummary{
			ID:          v.ID,
			Name:        v.Name,
			Type:        v.Type,
			Version:     v.Version,
			Description: v.Description,
			TermCount:   len(v.Terms),
		})
	})
	return out
}

// DeleteControlledVocabulary removes a vocabulary no schema references
func (r *Registry) DeleteControlledVocabulary(ctx context.Context, id string) (receipt *DeletionReceipt, err error) {
	_, o := r.begin(ctx, "delete_vocabulary", KindVocabulary, id)
	defer func() { o.end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.vocabularies.has(id) {
		return nil, NotFoundError{Kind: KindVocabulary, ID: id}
	}
	if deps := r.referencingSchemas(KindVocabulary, id); len(deps) > 0 {
		return nil, DependencyError{Kind: KindVocabulary, ID: id, Dependents: deps}
	}

	r.vocabularies.remove(id)
	r.updateGauges()

	r.log.Info().Str("vocabulary_id", id).Msg("Controlled vocabulary deleted")

	return &DeletionReceipt{ID: id, DeletedAt: r.now()}, nil
}
