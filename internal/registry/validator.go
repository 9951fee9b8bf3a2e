package registry

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/metaschema/registry/internal/rules"
)

// ValidateSchema checks a candidate schema against the structural rules and
// the current catalogs. Every failing check contributes a message; the
// result is never short-circuited. The registry is not modified.
func (r *Registry) ValidateSchema(ctx context.Context, schema *Schema) ValidationResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.validateSchema(schema)
}

// validateSchema must be called with the lock held
func (r *Registry) validateSchema(s *Schema) *ValidationResult {
	res := newValidationResult()
	if s == nil {
		res.AddError("schema is required")
		return res
	}

	if strings.TrimSpace(s.ID) == "" {
		res.AddError("schema ID is required")
	} else {
		checkID(res, "schema", s.ID)
	}
	if strings.TrimSpace(s.Name) == "" {
		res.AddError("schema name is required")
	}
	if s.Version != "" {
		if _, err := semver.StrictNewVersion(s.Version); err != nil {
			res.AddError("version %q must be major.minor.patch", s.Version)
		}
	}

	elementIDs := make(map[string]bool, len(s.Elements))
	for i, el := range s.Elements {
		r.validateElement(res, i, el, elementIDs)
	}

	for i, g := range s.ElementGroups {
		label := g.ID
		if label == "" {
			label = "#" + strconv.Itoa(i)
		}
		if g.ID == "" {
			res.AddError("element group %s: ID is required", label)
		}
		if g.Name == "" {
			res.AddError("element group %s: name is required", label)
		}
		if len(g.Elements) == 0 {
			res.AddError("element group %s: must contain at least one element", label)
		}
	}

	for _, id := range s.EncodingSchemes {
		if !r.schemes.has(id) {
			res.AddError("encoding scheme %s not found", id)
		}
	}
	for _, id := range s.ControlledVocabularies {
		if !r.vocabularies.has(id) {
			res.AddError("controlled vocabulary %s not found", id)
		}
	}

	for i, rule := range s.ValidationRules {
		validateRule(res, i, rule, elementIDs)
	}

	for _, ob := range s.ObligationLevels {
		if ob.Element == "" {
			res.AddError("obligation level: element is required")
		} else if !elementIDs[ob.Element] {
			res.AddError("obligation level for unknown element %s", ob.Element)
		}
		switch ob.Level {
		case ObligationMandatory, ObligationOptional:
		case ObligationConditional:
			if strings.TrimSpace(ob.Condition) == "" {
				res.AddError("conditional obligation for %s requires a condition", ob.Element)
			} else if _, err := rules.Parse(ob.Condition); err != nil {
				res.AddError("obligation condition for %s: %v", ob.Element, err)
			}
		default:
			res.AddError("obligation level for %s: unknown level %q", ob.Element, ob.Level)
		}
	}

	for _, dv := range s.DefaultValues {
		if dv.Element == "" {
			res.AddError("default value: element is required")
			continue
		}
		if !elementIDs[dv.Element] {
			res.AddError("default value for unknown element %s", dv.Element)
		}
		if _, err := rules.Parse(dv.Condition); err != nil {
			res.AddError("default value condition for %s: %v", dv.Element, err)
		}
	}

	return res
}

func (r *Registry) validateElement(res *ValidationResult, i int, el Element, seen map[string]bool) {
	label := el.ID
	if label == "" {
		label = "#" + strconv.Itoa(i)
	}

	if el.ID == "" {
		res.AddError("element %s: ID is required", label)
	} else if seen[el.ID] {
		res.AddError("element %s: duplicate element ID", label)
	}
	seen[el.ID] = true

	if el.Name == "" {
		res.AddError("element %s: name is required", label)
	}
	if el.DataType == "" {
		res.AddError("element %s: data type is required", label)
	} else if !el.DataType.Valid() {
		res.AddError("element %s: unknown data type %q", label, el.DataType)
	}
	if el.MaxLength != nil && *el.MaxLength <= 0 {
		res.AddError("element %s: max length must be positive", label)
	}
	if el.MinLength != nil {
		if *el.MinLength < 0 {
			res.AddError("element %s: min length must not be negative", label)
		} else if el.MaxLength != nil && *el.MaxLength > 0 && *el.MinLength > *el.MaxLength {
			res.AddError("element %s: min length exceeds max length", label)
		}
	}
	if el.Pattern != "" {
		if _, err := regexp.Compile(el.Pattern); err != nil {
			res.AddError("element %s: invalid pattern: %v", label, err)
		}
	}
	switch el.Obligation {
	case "", ObligationMandatory, ObligationOptional, ObligationConditional:
	default:
		res.AddError("element %s: unknown obligation %q", label, el.Obligation)
	}
	switch el.Repeatability {
	case "", RepeatabilitySingle, RepeatabilityRepeatable:
	default:
		res.AddError("element %s: unknown repeatability %q", label, el.Repeatability)
	}
	if el.EncodingScheme != "" && !r.schemes.has(el.EncodingScheme) {
		res.AddError("element %s: encoding scheme %s not found", label, el.EncodingScheme)
	}
	if el.ControlledVocabulary != "" && !r.vocabularies.has(el.ControlledVocabulary) {
		res.AddError("element %s: controlled vocabulary %s not found", label, el.ControlledVocabulary)
	}
}

// validateRule checks a rule in isolation; elementIDs may be nil when the
// rule does not belong to a schema
func validateRule(res *ValidationResult, i int, rule ValidationRule, elementIDs map[string]bool) {
	label := rule.Name
	if label == "" {
		label = "#" + strconv.Itoa(i)
	}
	if rule.Name == "" {
		res.AddError("validation rule %s: name is required", label)
	}
	if err := rules.Compile(rule.check()); err != nil {
		res.AddError("validation rule %s: %v", label, err)
	}
	if rule.Element != "" && elementIDs != nil && !elementIDs[rule.Element] {
		res.AddError("validation rule %s: unknown element %s", label, rule.Element)
	}
}

// check converts the rule to an evaluator check
func (v ValidationRule) check() rules.Check {
	return rules.Check{
		Kind:       rules.Kind(v.Type),
		Target:     v.Element,
		Expression: v.Expression,
	}
}

func validateEncodingScheme(s *EncodingScheme) *ValidationResult {
	res := newValidationResult()
	if s == nil {
		res.AddError("encoding scheme is required")
		return res
	}
	if strings.TrimSpace(s.ID) == "" {
		res.AddError("encoding scheme ID is required")
	} else {
		checkID(res, "encoding scheme", s.ID)
	}
	if strings.TrimSpace(s.Name) == "" {
		res.AddError("encoding scheme name is required")
	}
	if len(s.Values) == 0 {
		res.AddError("encoding scheme must define at least one value")
	}
	for i, v := range s.Values {
		if strings.TrimSpace(v.Value) == "" {
			res.AddError("value #%d: value is required", i)
		}
	}
	switch s.Type {
	case "", SchemeTypeLanguage, SchemeTypeCountry, SchemeTypeCurrency, SchemeTypeTime, SchemeTypeCustom:
	default:
		res.AddError("unknown encoding scheme type %q", s.Type)
	}
	for i, rule := range s.ValidationRules {
		validateRule(res, i, rule, nil)
	}
	return res
}

func validateVocabulary(v *ControlledVocabulary) *ValidationResult {
	res := newValidationResult()
	if v == nil {
		res.AddError("controlled vocabulary is required")
		return res
	}
	if strings.TrimSpace(v.ID) == "" {
		res.AddError("controlled vocabulary ID is required")
	} else {
		checkID(res, "controlled vocabulary", v.ID)
	}
	if strings.TrimSpace(v.Name) == "" {
		res.AddError("controlled vocabulary name is required")
	}
	if len(v.Terms) == 0 {
		res.AddError("controlled vocabulary must define at least one term")
	}
	seen := make(map[string]bool, len(v.Terms))
	for i, t := range v.Terms {
		if strings.TrimSpace(t.ID) == "" {
			res.AddError("term #%d: ID is required", i)
		} else if seen[t.ID] {
			res.AddError("term %s: duplicate term ID", t.ID)
		}
		seen[t.ID] = true
		if strings.TrimSpace(t.Label) == "" {
			res.AddError("term #%d: label is required", i)
		}
	}
	switch v.Type {
	case "", VocabularyTypeRecord, VocabularyTypeSecurity, VocabularyTypeBusiness, VocabularyTypeTechnical:
	default:
		res.AddError("unknown vocabulary type %q", v.Type)
	}
	return res
}
