package registry

import (
	"fmt"
	"time"
)

// DataType is the value type of a schema element
type DataType string

const (
	DataTypeText             DataType = "text"
	DataTypeNumber           DataType = "number"
	DataTypeBoolean          DataType = "boolean"
	DataTypeDate             DataType = "date"
	DataTypeDateTime         DataType = "date-time"
	DataTypeOrderedList      DataType = "ordered-list"
	DataTypeStructuredObject DataType = "structured-object"
	DataTypeEnumerated       DataType = "enumerated"
)

// Valid reports whether d is one of the known data types
func (d DataType) Valid() bool {
	switch d {
	case DataTypeText, DataTypeNumber, DataTypeBoolean, DataTypeDate, DataTypeDateTime,
		DataTypeOrderedList, DataTypeStructuredObject, DataTypeEnumerated:
		return true
	}
	return false
}

// Obligation states whether an element must be present in a record
type Obligation string

const (
	ObligationMandatory   Obligation = "mandatory"
	ObligationOptional    Obligation = "optional"
	ObligationConditional Obligation = "conditional"
)

// Repeatability states whether an element may carry several values
type Repeatability string

const (
	RepeatabilitySingle     Repeatability = "single"
	RepeatabilityRepeatable Repeatability = "repeatable"
)

// SchemeType classifies an encoding scheme
type SchemeType string

const (
	SchemeTypeLanguage SchemeType = "language-codes"
	SchemeTypeCountry  SchemeType = "country-codes"
	SchemeTypeCurrency SchemeType = "currency-codes"
	SchemeTypeTime     SchemeType = "time-codes"
	SchemeTypeCustom   SchemeType = "custom-codes"
)

// VocabularyType classifies a controlled vocabulary
type VocabularyType string

const (
	VocabularyTypeRecord    VocabularyType = "record-classification"
	VocabularyTypeSecurity  VocabularyType = "security-classification"
	VocabularyTypeBusiness  VocabularyType = "business-classification"
	VocabularyTypeTechnical VocabularyType = "technical-classification"
)

// RuleType selects how a validation rule's expression is interpreted
type RuleType string

const (
	RuleTypeExpression  RuleType = "expression"
	RuleTypePattern     RuleType = "pattern"
	RuleTypeEnumeration RuleType = "enumeration"
	RuleTypeLength      RuleType = "length"
	RuleTypeCustom      RuleType = "custom"
)

// Schema is a named, versioned composite metadata definition
type Schema struct {
	ID                     string            `json:"id" yaml:"id"`
	Name                   string            `json:"name" yaml:"name"`
	Version                string            `json:"version" yaml:"version"`
	Description            string            `json:"description,omitempty" yaml:"description,omitempty"`
	Elements               []Element         `json:"elements" yaml:"elements"`
	ElementGroups          []ElementGroup    `json:"element_groups,omitempty" yaml:"element_groups,omitempty"`
	EncodingSchemes        []string          `json:"encoding_schemes,omitempty" yaml:"encoding_schemes,omitempty"`
	ControlledVocabularies []string          `json:"controlled_vocabularies,omitempty" yaml:"controlled_vocabularies,omitempty"`
	ValidationRules        []ValidationRule  `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	ObligationLevels       []ObligationLevel `json:"obligation_levels,omitempty" yaml:"obligation_levels,omitempty"`
	DefaultValues          []DefaultValue    `json:"default_values,omitempty" yaml:"default_values,omitempty"`
	RegisteredAt           time.Time         `json:"registered_at" yaml:"registered_at,omitempty"`
	LastModified           time.Time         `json:"last_modified" yaml:"last_modified,omitempty"`
}

// Element is a single metadata field definition
type Element struct {
	ID                   string        `json:"id" yaml:"id"`
	Name                 string        `json:"name" yaml:"name"`
	Definition           string        `json:"definition,omitempty" yaml:"definition,omitempty"`
	DataType             DataType      `json:"data_type" yaml:"data_type"`
	MaxLength            *int          `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	MinLength            *int          `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	Pattern              string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Obligation           Obligation    `json:"obligation,omitempty" yaml:"obligation,omitempty"`
	Repeatability        Repeatability `json:"repeatability,omitempty" yaml:"repeatability,omitempty"`
	DefaultValue         interface{}   `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	ParentElement        string        `json:"parent_element,omitempty" yaml:"parent_element,omitempty"`
	ChildElements        []string      `json:"child_elements,omitempty" yaml:"child_elements,omitempty"`
	RelatedElements      []string      `json:"related_elements,omitempty" yaml:"related_elements,omitempty"`
	ControlledVocabulary string        `json:"controlled_vocabulary,omitempty" yaml:"controlled_vocabulary,omitempty"`
	EncodingScheme       string        `json:"encoding_scheme,omitempty" yaml:"encoding_scheme,omitempty"`
}

// Repeatable reports whether the element accepts a list of values
func (e Element) Repeatable() bool {
	return e.Repeatability == RepeatabilityRepeatable
}

// ElementGroup groups element IDs within a schema
type ElementGroup struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Elements    []string `json:"elements" yaml:"elements"`
	ParentGroup string   `json:"parent_group,omitempty" yaml:"parent_group,omitempty"`
	ChildGroups []string `json:"child_groups,omitempty" yaml:"child_groups,omitempty"`
}

// SchemeValue is one entry of an encoding scheme
type SchemeValue struct {
	Value      string `json:"value" yaml:"value"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
}

// EncodingScheme is a reusable enumerable value catalog
type EncodingScheme struct {
	ID                  string           `json:"id" yaml:"id"`
	Name                string           `json:"name" yaml:"name"`
	Type                SchemeType       `json:"type,omitempty" yaml:"type,omitempty"`
	Values              []SchemeValue    `json:"values" yaml:"values"`
	ValidationRules     []ValidationRule `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	FormatSpecification string           `json:"format_specification,omitempty" yaml:"format_specification,omitempty"`
	Description         string           `json:"description,omitempty" yaml:"description,omitempty"`
	Authority           string           `json:"authority,omitempty" yaml:"authority,omitempty"`
	Version             string           `json:"version,omitempty" yaml:"version,omitempty"`
}

// Term is one concept of a controlled vocabulary
type Term struct {
	ID            string   `json:"id" yaml:"id"`
	Label         string   `json:"label" yaml:"label"`
	Definition    string   `json:"definition,omitempty" yaml:"definition,omitempty"`
	BroaderTerm   string   `json:"broader_term,omitempty" yaml:"broader_term,omitempty"`
	NarrowerTerms []string `json:"narrower_terms,omitempty" yaml:"narrower_terms,omitempty"`
	RelatedTerms  []string `json:"related_terms,omitempty" yaml:"related_terms,omitempty"`
}

// ControlledVocabulary is a reusable hierarchical term catalog
type ControlledVocabulary struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        VocabularyType `json:"type,omitempty" yaml:"type,omitempty"`
	Version     string         `json:"version,omitempty" yaml:"version,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Terms       []Term         `json:"terms" yaml:"terms"`
	Authority   string         `json:"authority,omitempty" yaml:"authority,omitempty"`
	URI         string         `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// ValidationRule is a check attached to a schema or encoding scheme
type ValidationRule struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Type        RuleType `json:"type,omitempty" yaml:"type,omitempty"`
	Element     string   `json:"element,omitempty" yaml:"element,omitempty"`
	Expression  string   `json:"expression" yaml:"expression"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// ObligationLevel overrides when an element is required. Condition is a
// rule expression consulted for conditional obligations.
type ObligationLevel struct {
	Element     string     `json:"element" yaml:"element"`
	Level       Obligation `json:"level" yaml:"level"`
	Condition   string     `json:"condition,omitempty" yaml:"condition,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultValue supplies a value for an absent element, optionally only
// when Condition holds
type DefaultValue struct {
	Element     string      `json:"element" yaml:"element"`
	Value       interface{} `json:"value" yaml:"value"`
	Condition   string      `json:"condition,omitempty" yaml:"condition,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// SchemaUpdate is a partial update. Nil fields are left unchanged; a
// non-nil empty slice clears the field.
type SchemaUpdate struct {
	Name                   *string           `json:"name,omitempty" yaml:"name,omitempty"`
	Description            *string           `json:"description,omitempty" yaml:"description,omitempty"`
	Elements               []Element         `json:"elements,omitempty" yaml:"elements,omitempty"`
	ElementGroups          []ElementGroup    `json:"element_groups,omitempty" yaml:"element_groups,omitempty"`
	EncodingSchemes        []string          `json:"encoding_schemes,omitempty" yaml:"encoding_schemes,omitempty"`
	ControlledVocabularies []string          `json:"controlled_vocabularies,omitempty" yaml:"controlled_vocabularies,omitempty"`
	ValidationRules        []ValidationRule  `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	ObligationLevels       []ObligationLevel `json:"obligation_levels,omitempty" yaml:"obligation_levels,omitempty"`
	DefaultValues          []DefaultValue    `json:"default_values,omitempty" yaml:"default_values,omitempty"`
}

// Receipt acknowledges a registration
type Receipt struct {
	ID           string    `json:"id"`
	Version      string    `json:"version"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UpdateReceipt acknowledges a schema update
type UpdateReceipt struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeletionReceipt acknowledges a deletion
type DeletionReceipt struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// SchemaSummary is the list view of a schema
type SchemaSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Description  string    `json:"description,omitempty"`
	ElementCount int       `json:"element_count"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EncodingSchemeSummary is the list view of an encoding scheme
type EncodingSchemeSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        SchemeType `json:"type,omitempty"`
	Version     string     `json:"version,omitempty"`
	Description string     `json:"description,omitempty"`
	ValueCount  int        `json:"value_count"`
}

// ControlledVocabularySummary is the list view of a controlled vocabulary
type ControlledVocabularySummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        VocabularyType `json:"type,omitempty"`
	Version     string         `json:"version,omitempty"`
	Description string         `json:"description,omitempty"`
	TermCount   int            `json:"term_count"`
}

// ValidationResult aggregates every finding of a validation pass
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// newValidationResult returns a result that is valid until an error is added
func newValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError appends an error message and marks the result invalid
func (v *ValidationResult) AddError(format string, args ...interface{}) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if the result contains errors
func (v *ValidationResult) HasErrors() bool {
	return len(v.Errors) > 0
}
