package registry

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneValue deep-copies the JSON-shaped values used for defaults and records
func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return cloneStrings(t)
	default:
		return v
	}
}

func cloneRecord(r map[string]interface{}) map[string]interface{} {
	if r == nil {
		return map[string]interface{}{}
	}
	return cloneValue(r).(map[string]interface{})
}

func cloneRules(in []ValidationRule) []ValidationRule {
	if in == nil {
		return nil
	}
	return append([]ValidationRule(nil), in...)
}

// Clone returns a deep copy of the element
func (e Element) Clone() Element {
	out := e
	out.MaxLength = cloneInt(e.MaxLength)
	out.MinLength = cloneInt(e.MinLength)
	out.DefaultValue = cloneValue(e.DefaultValue)
	out.ChildElements = cloneStrings(e.ChildElements)
	out.RelatedElements = cloneStrings(e.RelatedElements)
	return out
}

// Clone returns a deep copy of the schema
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Elements != nil {
		out.Elements = make([]Element, len(s.Elements))
		for i, el := range s.Elements {
			out.Elements[i] = el.Clone()
		}
	}
	if s.ElementGroups != nil {
		out.ElementGroups = make([]ElementGroup, len(s.ElementGroups))
		for i, g := range s.ElementGroups {
			g.Elements = cloneStrings(g.Elements)
			g.ChildGroups = cloneStrings(g.ChildGroups)
			out.ElementGroups[i] = g
		}
	}
	out.EncodingSchemes = cloneStrings(s.EncodingSchemes)
	out.ControlledVocabularies = cloneStrings(s.ControlledVocabularies)
	out.ValidationRules = cloneRules(s.ValidationRules)
	if s.ObligationLevels != nil {
		out.ObligationLevels = append([]ObligationLevel(nil), s.ObligationLevels...)
	}
	if s.DefaultValues != nil {
		out.DefaultValues = make([]DefaultValue, len(s.DefaultValues))
		for i, d := range s.DefaultValues {
			d.Value = cloneValue(d.Value)
			out.DefaultValues[i] = d
		}
	}
	return &out
}

// Clone returns a deep copy of the encoding scheme
func (e *EncodingScheme) Clone() *EncodingScheme {
	if e == nil {
		return nil
	}
	out := *e
	if e.Values != nil {
		out.Values = append([]SchemeValue(nil), e.Values...)
	}
	out.ValidationRules = cloneRules(e.ValidationRules)
	return &out
}

// Clone returns a deep copy of the controlled vocabulary
func (v *ControlledVocabulary) Clone() *ControlledVocabulary {
	if v == nil {
		return nil
	}
	out := *v
	if v.Terms != nil {
		out.Terms = make([]Term, len(v.Terms))
		for i, t := range v.Terms {
			t.NarrowerTerms = cloneStrings(t.NarrowerTerms)
			t.RelatedTerms = cloneStrings(t.RelatedTerms)
			out.Terms[i] = t
		}
	}
	return &out
}
