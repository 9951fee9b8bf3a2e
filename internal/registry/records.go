package registry

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/rules"
)

// ValidateRecord checks a metadata record against a registered schema: the
// derived JSON Schema first, then conditional obligations, schema rules and
// the rules of any encoding scheme an element is bound to. All findings are
// aggregated into the result.
func (r *Registry) ValidateRecord(ctx context.Context, schemaID string, record map[string]interface{}) (result *ValidationResult, err error) {
	_, o := r.begin(ctx, "validate_record", KindSchema, schemaID)
	defer func() { o.end(err) }()

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas.get(schemaID)
	if !ok {
		return nil, NotFoundError{Kind: KindSchema, ID: schemaID}
	}

	cs, err := r.compiledSchema(s)
	if err != nil {
		return nil, err
	}

	doc, err := normalizeRecord(record)
	if err != nil {
		return nil, err
	}

	res := newValidationResult()
	if verr := cs.Validate(doc); verr != nil {
		for _, msg := range validationMessages(verr) {
			res.AddError("%s", msg)
		}
	}

	for _, ob := range s.ObligationLevels {
		if ob.Level != ObligationConditional {
			continue
		}
		if _, present := doc[ob.Element]; present {
			continue
		}
		required, cerr := rules.EvaluateBool(ob.Condition, doc)
		if cerr != nil {
			res.AddError("obligation condition for %s: %v", ob.Element, cerr)
			continue
		}
		if required {
			res.AddError("element %s is required when %s", ob.Element, ob.Condition)
		}
	}

	for _, rule := range s.ValidationRules {
		r.applyRule(res, rule, rule.check(), doc)
	}

	for _, el := range s.Elements {
		if el.EncodingScheme == "" {
			continue
		}
		scheme, ok := r.schemes.get(el.EncodingScheme)
		if !ok {
			continue
		}
		for _, rule := range scheme.ValidationRules {
			check := rule.check()
			if check.Target == "" {
				check.Target = el.ID
			}
			r.applyRule(res, rule, check, doc)
		}
	}

	r.metrics.RecordRecordValidation(res.Valid)
	return res, nil
}

func (r *Registry) applyRule(res *ValidationResult, rule ValidationRule, check rules.Check, doc map[string]interface{}) {
	ok, err := r.evaluator.Evaluate(check, doc)
	switch {
	case err != nil:
		res.AddError("rule %s: %v", rule.Name, err)
	case !ok && rule.Description != "":
		res.AddError("rule %s failed: %s", rule.Name, rule.Description)
	case !ok:
		res.AddError("rule %s failed: %s", rule.Name, rule.Expression)
	}
}

// ApplyDefaults returns a copy of the record with defaults filled in for
// absent elements. Element-level defaults apply first; schema default value
// entries apply when their condition holds.
func (r *Registry) ApplyDefaults(ctx context.Context, schemaID string, record map[string]interface{}) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas.get(schemaID)
	if !ok {
		return nil, NotFoundError{Kind: KindSchema, ID: schemaID}
	}

	out := cloneRecord(record)
	for _, el := range s.Elements {
		if _, present := out[el.ID]; present || el.DefaultValue == nil {
			continue
		}
		out[el.ID] = cloneValue(el.DefaultValue)
	}

	for _, dv := range s.DefaultValues {
		if _, present := out[dv.Element]; present {
			continue
		}
		apply, err := rules.EvaluateBool(dv.Condition, out)
		if err != nil {
			return nil, fmt.Errorf("default value condition for %s: %w", dv.Element, err)
		}
		if apply {
			out[dv.Element] = cloneValue(dv.Value)
		}
	}

	return out, nil
}

// normalizeRecord converts arbitrary Go values into the JSON data model
// the validator expects
func normalizeRecord(record map[string]interface{}) (map[string]interface{}, error) {
	if record == nil {
		return map[string]interface{}{}, nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("record is not representable as JSON: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return doc, nil
}
