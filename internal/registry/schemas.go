package registry

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is assigned to schemas registered without a version
const DefaultVersion = "1.0.0"

// RegisterSchema validates the schema against the current catalogs and
// stores a copy. Validation runs before the duplicate check; neither
// failure modifies the registry.
func (r *Registry) RegisterSchema(ctx context.Context, schema *Schema) (receipt *Receipt, err error) {
	id := ""
	if schema != nil {
		id = schema.ID
	}
	_, o := r.begin(ctx, "register_schema", KindSchema, id)
	defer func() { o.end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if res := r.validateSchema(schema); !res.Valid {
		r.metrics.RecordValidationFailure(catalogSchemas)
		r.log.Debug().Str("schema_id", id).Strs("errors", res.Errors).Msg("Schema rejected")
		return nil, ValidationError{Kind: KindSchema, ID: id, Errors: res.Errors}
	}

	if r.schemas.has(schema.ID) {
		return nil, DuplicateIDError{Kind: KindSchema, ID: schema.ID}
	}

	now := r.now()
	stored := schema.Clone()
	if stored.Version == "" {
		stored.Version = DefaultVersion
	}
	stored.RegisteredAt = now
	stored.LastModified = now
	r.schemas.put(stored.ID, stored)
	r.updateGauges()

	r.log.Info().
		Str("schema_id", stored.ID).
		Str("version", stored.Version).
		Int("elements", len(stored.Elements)).
		Msg("Schema registered")

	return &Receipt{ID: stored.ID, Version: stored.Version, RegisteredAt: now}, nil
}

// GetSchema returns a copy of the schema, or false if absent
func (r *Registry) GetSchema(ctx context.Context, id string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas.get(id)
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// ListSchemas summarizes every schema in registration order
func (r *Registry) ListSchemas(ctx context.Context) []SchemaSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SchemaSummary, 0, r.schemas.len())
	r.schemas.each(func(_ string, s *Schema) {
		out = append(out, SchemaSummary{
			ID:           s.ID,
			Name:         s.Name,
			Version:      s.Version,
			Description:  s.Description,
			ElementCount: len(s.Elements),
			RegisteredAt: s.RegisteredAt,
		})
	})
	return out
}

// UpdateSchema merges the update into the stored schema, bumps the patch
// version and revalidates. The version is bumped on every successful call,
// including updates that change nothing. On failure the stored schema is
// left unchanged.
func (r *Registry) UpdateSchema(ctx context.Context, id string, update SchemaUpdate) (receipt *UpdateReceipt, err error) {
	_, o := r.begin(ctx, "update_schema", KindSchema, id)
	defer func() { o.end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.schemas.get(id)
	if !ok {
		return nil, NotFoundError{Kind: KindSchema, ID: id}
	}

	candidate := existing.Clone()
	update.apply(candidate)

	version, err := bumpPatch(existing.Version)
	if err != nil {
		return nil, err
	}
	candidate.Version = version

	if res := r.validateSchema(candidate); !res.Valid {
		r.metrics.RecordValidationFailure(catalogSchemas)
		r.log.Debug().Str("schema_id", id).Strs("errors", res.Errors).Msg("Schema update rejected")
		return nil, ValidationError{Kind: KindSchema, ID: id, Errors: res.Errors}
	}

	now := r.now()
	candidate.LastModified = now
	r.schemas.put(id, candidate)
	r.compiled.invalidate(id)

	r.log.Info().
		Str("schema_id", id).
		Str("version", candidate.Version).
		Msg("Schema updated")

	return &UpdateReceipt{ID: id, Version: candidate.Version, UpdatedAt: now}, nil
}

// DeleteSchema removes a schema unless another schema depends on it
func (r *Registry) DeleteSchema(ctx context.Context, id string) (receipt *DeletionReceipt, err error) {
	_, o := r.begin(ctx, "delete_schema", KindSchema, id)
	defer func() { o.end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.schemas.has(id) {
		return nil, NotFoundError{Kind: KindSchema, ID: id}
	}
	if deps := r.dependents(id); len(deps) > 0 {
		return nil, DependencyError{Kind: KindSchema, ID: id, Dependents: deps}
	}

	r.schemas.remove(id)
	r.compiled.invalidate(id)
	r.updateGauges()

	r.log.Info().Str("schema_id", id).Msg("Schema deleted")

	return &DeletionReceipt{ID: id, DeletedAt: r.now()}, nil
}

// apply copies every set field of the update onto s
func (u SchemaUpdate) apply(s *Schema) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Elements != nil {
		s.Elements = make([]Element, len(u.Elements))
		for i, el := range u.Elements {
			s.Elements[i] = el.Clone()
		}
	}
	if u.ElementGroups != nil {
		s.ElementGroups = (&Schema{ElementGroups: u.ElementGroups}).Clone().ElementGroups
	}
	if u.EncodingSchemes != nil {
		s.EncodingSchemes = cloneStrings(u.EncodingSchemes)
	}
	if u.ControlledVocabularies != nil {
		s.ControlledVocabularies = cloneStrings(u.ControlledVocabularies)
	}
	if u.ValidationRules != nil {
		s.ValidationRules = cloneRules(u.ValidationRules)
	}
	if u.ObligationLevels != nil {
		s.ObligationLevels = append([]ObligationLevel{}, u.ObligationLevels...)
	}
	if u.DefaultValues != nil {
		s.DefaultValues = (&Schema{DefaultValues: u.DefaultValues}).Clone().DefaultValues
	}
}

func bumpPatch(version string) (string, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", fmt.Errorf("stored version %q is not semantic: %w", version, err)
	}
	return v.IncPatch().String(), nil
}
