package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/rules"
	"github.com/rs/zerolog"
)

// Catalog names used for metrics labels
const (
	catalogSchemas         = "schemas"
	catalogEncodingSchemes = "encoding_schemes"
	catalogVocabularies    = "vocabularies"
)

// Registry holds the schema, encoding scheme and controlled vocabulary
// catalogs. A single lock guards all three so that validation against one
// catalog and mutation of another happen in one critical section.
type Registry struct {
	mu           sync.RWMutex
	schemas      *catalog[*Schema]
	schemes      *catalog[*EncodingScheme]
	vocabularies *catalog[*ControlledVocabulary]

	compiled  *compiledCache
	evaluator rules.Evaluator
	metrics   *metrics.RegistryMetrics
	now       func() time.Time
	seed      *Seed
	log       zerolog.Logger
}

// Option configures a Registry
type Option func(*Registry)

// WithSeed preloads the registry. Seed contents go through the same
// validation as runtime registrations.
func WithSeed(seed Seed) Option {
	return func(r *Registry) {
		r.seed = &seed
	}
}

// WithMetrics attaches Prometheus recorders
func WithMetrics(m *metrics.RegistryMetrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithRuleEvaluator replaces the evaluator used for record validation
func WithRuleEvaluator(e rules.Evaluator) Option {
	return func(r *Registry) {
		r.evaluator = e
	}
}

// New creates a registry. Without WithSeed the catalogs start empty.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		schemas:      newCatalog[*Schema](),
		schemes:      newCatalog[*EncodingScheme](),
		vocabularies: newCatalog[*ControlledVocabulary](),
		compiled:     newCompiledCache(),
		evaluator:    rules.NewEvaluator(),
		now:          func() time.Time { return time.Now().UTC() },
		log:          logger.WithComponent("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.seed != nil {
		if err := r.load(*r.seed); err != nil {
			return nil, fmt.Errorf("failed to load seed: %w", err)
		}
	}

	r.updateGauges()
	return r, nil
}

// load admits seed contents in dependency order
func (r *Registry) load(seed Seed) error {
	ctx := context.Background()
	for i := range seed.EncodingSchemes {
		if _, err := r.RegisterEncodingScheme(ctx, &seed.EncodingSchemes[i]); err != nil {
			return err
		}
	}
	for i := range seed.ControlledVocabularies {
		if _, err := r.RegisterControlledVocabulary(ctx, &seed.ControlledVocabularies[i]); err != nil {
			return err
		}
	}
	for i := range seed.Schemas {
		if _, err := r.RegisterSchema(ctx, &seed.Schemas[i]); err != nil {
			return err
		}
	}
	r.log.Info().
		Int("encoding_schemes", len(seed.EncodingSchemes)).
		Int("vocabularies", len(seed.ControlledVocabularies)).
		Int("schemas", len(seed.Schemas)).
		Msg("Seed loaded")
	return nil
}

// Stats reports the number of entries per catalog
type Stats struct {
	Schemas                int `json:"schemas"`
	EncodingSchemes        int `json:"encoding_schemes"`
	ControlledVocabularies int `json:"controlled_vocabularies"`
}

// Stats returns catalog sizes
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Schemas:                r.schemas.len(),
		EncodingSchemes:        r.schemes.len(),
		ControlledVocabularies: r.vocabularies.len(),
	}
}

// updateGauges must be called with the lock held or before the registry is shared
func (r *Registry) updateGauges() {
	r.metrics.SetCatalogSize(catalogSchemas, r.schemas.len())
	r.metrics.SetCatalogSize(catalogEncodingSchemes, r.schemes.len())
	r.metrics.SetCatalogSize(catalogVocabularies, r.vocabularies.len())
}
