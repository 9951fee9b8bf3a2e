package designer

import "github.com/metaschema/registry/internal/registry"

// Requirements describes the schema a caller wants drafted
type Requirements struct {
	Domain                 string   `json:"domain" yaml:"domain"`
	SchemaName             string   `json:"schema_name,omitempty" yaml:"schema_name,omitempty"`
	Description            string   `json:"description,omitempty" yaml:"description,omitempty"`
	BusinessRequirements   []string `json:"business_requirements,omitempty" yaml:"business_requirements,omitempty"`
	TechnicalRequirements  []string `json:"technical_requirements,omitempty" yaml:"technical_requirements,omitempty"`
	ComplianceRequirements []string `json:"compliance_requirements,omitempty" yaml:"compliance_requirements,omitempty"`
}

// Origin is the requirement list that caused an element to be selected
type Origin string

const (
	OriginCore       Origin = "core"
	OriginBusiness   Origin = "business"
	OriginTechnical  Origin = "technical"
	OriginCompliance Origin = "compliance"
)

// Candidate is a selected element together with its origin
type Candidate struct {
	Element registry.Element
	Origin  Origin
}

// ElementSelector picks the elements of the draft
type ElementSelector interface {
	SelectElements(req Requirements) []Candidate
}

// GroupingPolicy arranges selected elements into groups
type GroupingPolicy interface {
	Group(req Requirements, candidates []Candidate) []registry.ElementGroup
}

// EncodingSelector picks the encoding schemes the schema references
type EncodingSelector interface {
	SelectEncodingSchemes(req Requirements, candidates []Candidate) []string
}

// VocabularySelector picks the controlled vocabularies the schema references
type VocabularySelector interface {
	SelectVocabularies(req Requirements, candidates []Candidate) []string
}

// RuleDeriver derives validation rules
type RuleDeriver interface {
	DeriveRules(req Requirements, candidates []Candidate) []registry.ValidationRule
}

// ObligationAssigner derives obligation levels
type ObligationAssigner interface {
	AssignObligations(req Requirements, candidates []Candidate) []registry.ObligationLevel
}

// DefaultAssigner derives default values
type DefaultAssigner interface {
	AssignDefaults(req Requirements, candidates []Candidate) []registry.DefaultValue
}
