package designer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/registry"
	"github.com/metaschema/registry/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Designer drafts schemas from requirement documents. Each aspect of the
// draft is delegated to a policy which can be replaced with an Option.
type Designer struct {
	elements     ElementSelector
	grouping     GroupingPolicy
	encodings    EncodingSelector
	vocabularies VocabularySelector
	rules        RuleDeriver
	obligations  ObligationAssigner
	defaults     DefaultAssigner

	now func() time.Time
	log zerolog.Logger
}

// Option configures a Designer
type Option func(*Designer)

// WithElementSelector replaces the policy choosing the draft's elements
func WithElementSelector(p ElementSelector) Option {
	return func(d *Designer) { d.elements = p }
}

// WithGroupingPolicy replaces the policy building element groups
func WithGroupingPolicy(p GroupingPolicy) Option {
	return func(d *Designer) { d.grouping = p }
}

// WithEncodingSelector replaces the policy listing referenced encoding schemes
func WithEncodingSelector(p EncodingSelector) Option {
	return func(d *Designer) { d.encodings = p }
}

// WithVocabularySelector replaces the policy listing referenced vocabularies
func WithVocabularySelector(p VocabularySelector) Option {
	return func(d *Designer) { d.vocabularies = p }
}

// WithRuleDeriver replaces the policy deriving validation rules
func WithRuleDeriver(p RuleDeriver) Option {
	return func(d *Designer) { d.rules = p }
}

// WithObligationAssigner replaces the policy assigning obligation levels
func WithObligationAssigner(p ObligationAssigner) Option {
	return func(d *Designer) { d.obligations = p }
}

// WithDefaultAssigner replaces the policy assigning default values
func WithDefaultAssigner(p DefaultAssigner) Option {
	return func(d *Designer) { d.defaults = p }
}

// WithClock overrides the time source used for schema IDs
func WithClock(now func() time.Time) Option {
	return func(d *Designer) { d.now = now }
}

// New creates a designer using the keyword-driven default policies
func New(opts ...Option) *Designer {
	d := &Designer{
		elements:     KeywordElementSelector{},
		grouping:     OriginGrouping{},
		encodings:    ReferencedSchemes{},
		vocabularies: ReferencedVocabularies{},
		rules:        ComplianceRules{},
		obligations:  MirroredObligations{},
		defaults:     StandardDefaults{},
		now:          time.Now,
		log:          logger.WithComponent("designer"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DesignSchema drafts a schema for the requirements. It never fails; with
// empty policies the draft simply has no elements.
func (d *Designer) DesignSchema(ctx context.Context, req Requirements) *registry.Schema {
	_, span := otel.Tracer("metaregistry.designer").Start(ctx, "designer.design_schema")
	defer span.End()

	candidates := d.elements.SelectElements(req)

	s := &registry.Schema{
		ID:                     SchemaID(req.Domain, d.now()),
		Name:                   schemaName(req),
		Version:                registry.DefaultVersion,
		Description:            req.Description,
		Elements:               make([]registry.Element, 0, len(candidates)),
		ElementGroups:          d.grouping.Group(req, candidates),
		EncodingSchemes:        d.encodings.SelectEncodingSchemes(req, candidates),
		ControlledVocabularies: d.vocabularies.SelectVocabularies(req, candidates),
		ValidationRules:        d.rules.DeriveRules(req, candidates),
		ObligationLevels:       d.obligations.AssignObligations(req, candidates),
		DefaultValues:          d.defaults.AssignDefaults(req, candidates),
	}
	for _, c := range candidates {
		s.Elements = append(s.Elements, c.Element)
	}

	span.SetAttributes(
		attribute.String(tracing.AttrEntityID, s.ID),
		attribute.Int(tracing.AttrElementCount, len(s.Elements)),
	)
	d.log.Info().
		Str("schema_id", s.ID).
		Int("elements", len(s.Elements)).
		Msg("Schema drafted")

	return s
}

// maxSlugLength keeps generated IDs within registry.MaxIDLength
const maxSlugLength = 64

// SchemaID builds "{domain}-metadata-schema-{unix millis}". The domain is
// lower-cased and every run of characters other than ASCII letters, digits,
// '.' and '_' becomes a single hyphen, so the ID passes registry.CheckID.
func SchemaID(domain string, at time.Time) string {
	slug := slugify(domain)
	if slug == "" {
		slug = "general"
	}
	return fmt.Sprintf("%s-metadata-schema-%d", slug, at.UnixMilli())
}

func slugify(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
		default:
			hyphen = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}
	return strings.Trim(b.String()[:min(b.Len(), maxSlugLength)], "-.")
}

func schemaName(req Requirements) string {
	if req.SchemaName != "" {
		return req.SchemaName
	}
	if strings.TrimSpace(req.Domain) == "" {
		return "Metadata Schema"
	}
	return strings.TrimSpace(req.Domain) + " Metadata Schema"
}
