package registry

import (
	"context"
)

// RegisterEncodingScheme validates and stores a copy of the scheme
func (r *Registry) RegisterEncodingScheme(ctx context.Context, scheme *EncodingScheme) (receipt *Receipt, err error) {
	id := ""
	if scheme != nil {
		id = scheme.ID
	}
	_, o := r.begin(ctx, "register_encoding_scheme", KindEncodingScheme, id)
	defer func() { o.end(err) }()

	if res := validateEncodingScheme(scheme); !res.Valid {
		r.metrics.RecordValidationFailure(catalogEncodingSchemes)
		return nil, ValidationError{Kind: KindEncodingScheme, ID: id, Errors: res.Errors}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schemes.has(scheme.ID) {
		return nil, DuplicateIDError{Kind: KindEncodingScheme, ID: scheme.ID}
	}

	now := r.now()
	r.schemes.put(scheme.ID, scheme.Clone())
	r.updateGauges()

	r.log.Info().Str("encoding_scheme_id", scheme.ID).Int("values", len(scheme.Values)).Msg("Encoding scheme registered")

	return &Receipt{ID: scheme.ID, Version: scheme.Version, RegisteredAt: now}, nil
}

// GetEncodingScheme returns a copy of the scheme, or false if absent
func (r *Registry) GetEncodingScheme(ctx context.Context, id string) (*EncodingScheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemes.get(id)
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// ListEncodingSchemes summarizes every scheme in registration order
func (r *Registry) ListEncodingSchemes(ctx context.Context) []EncodingSchemeSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EncodingSchemeSummary, 0, r.schemes.len())
	r.schemes.each(func(_ string, s *EncodingScheme) {
		out = append(out, EncodingSchemeSummary{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Version:     s.Version,
			Description: s.Description,
			ValueCount:  len(s.Values),
		})
	})
	return out
}

// DeleteEncodingScheme removes a scheme no schema references
func (r *Registry) DeleteEncodingScheme(ctx context.Context, id string) (receipt *DeletionReceipt, err error) {
	_, o := r.begin(ctx, "delete_encoding_scheme", KindEncodingScheme, id)
	defer func() { o.end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.schemes.has(id) {
		return nil, NotFoundError{Kind: KindEncodingScheme, ID: id}
	}
	if deps := r.referencingSchemas(KindEncodingScheme, id); len(deps) > 0 {
		return nil, DependencyError{Kind: KindEncodingScheme, ID: id, Dependents: deps}
	}

	r.schemes.remove(id)
	r.updateGauges()

	r.log.Info().Str("encoding_scheme_id", id).Msg("Encoding scheme deleted")

	return &DeletionReceipt{ID: id, DeletedAt: r.now()}, nil
}
