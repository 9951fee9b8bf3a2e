package registry

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const jsonSchemaDraft = "https://json-schema.org/draft/2020-12/schema"

// JSONSchema returns the JSON Schema document records of the schema are
// validated against
func (r *Registry) JSONSchema(ctx context.Context, schemaID string) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas.get(schemaID)
	if !ok {
		return nil, NotFoundError{Kind: KindSchema, ID: schemaID}
	}
	return r.buildJSONSchema(s), nil
}

// buildJSONSchema must be called with the lock held
func (r *Registry) buildJSONSchema(s *Schema) map[string]interface{} {
	props := make(map[string]interface{}, len(s.Elements))
	required := []interface{}{}
	requiredSet := make(map[string]bool)

	for _, el := range s.Elements {
		props[el.ID] = r.elementSchema(el)
		if el.Obligation == ObligationMandatory {
			requiredSet[el.ID] = true
		}
	}
	for _, ob := range s.ObligationLevels {
		switch ob.Level {
		case ObligationMandatory:
			requiredSet[ob.Element] = true
		case ObligationOptional, ObligationConditional:
			delete(requiredSet, ob.Element)
		}
	}
	for _, el := range s.Elements {
		if requiredSet[el.ID] {
			required = append(required, el.ID)
		}
	}

	doc := map[string]interface{}{
		"$schema":    jsonSchemaDraft,
		"title":      s.Name,
		"type":       "object",
		"properties": props,
	}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (r *Registry) elementSchema(el Element) map[string]interface{} {
	item := map[string]interface{}{}
	if el.Definition != "" {
		item["description"] = el.Definition
	}

	switch el.DataType {
	case DataTypeNumber:
		item["type"] = "number"
	case DataTypeBoolean:
		item["type"] = "boolean"
	case DataTypeDate:
		item["type"] = "string"
		item["format"] = "date"
	case DataTypeDateTime:
		item["type"] = "string"
		item["format"] = "date-time"
	case DataTypeStructuredObject:
		item["type"] = "object"
	default:
		item["type"] = "string"
	}

	if item["type"] == "string" {
		if el.MinLength != nil {
			item["minLength"] = *el.MinLength
		}
		if el.MaxLength != nil {
			item["maxLength"] = *el.MaxLength
		}
		if el.Pattern != "" {
			item["pattern"] = el.Pattern
		}
		if enum := r.allowedValues(el); len(enum) > 0 {
			item["enum"] = enum
		}
	}

	if el.DataType == DataTypeOrderedList || el.Repeatable() {
		return map[string]interface{}{
			"type":  "array",
			"items": item,
		}
	}
	return item
}

// allowedValues resolves the enumeration an element is bound to. Time code
// schemes describe formats rather than values and do not constrain.
func (r *Registry) allowedValues(el Element) []interface{} {
	var out []interface{}
	if el.EncodingScheme != "" {
		if scheme, ok := r.schemes.get(el.EncodingScheme); ok && scheme.Type != SchemeTypeTime {
			for _, v := range scheme.Values {
				out = append(out, v.Value)
			}
		}
	}
	if el.ControlledVocabulary != "" {
		if vocab, ok := r.vocabularies.get(el.ControlledVocabulary); ok {
			for _, t := range vocab.Terms {
				out = append(out, t.ID)
			}
		}
	}
	return out
}

// compiledCache holds compiled documents keyed by schema ID. An entry is
// only served for the version it was compiled from.
type compiledCache struct {
	mu      sync.Mutex
	entries map[string]compiledEntry
}

type compiledEntry struct {
	version string
	schema  *jsonschema.Schema
}

func newCompiledCache() *compiledCache {
	return &compiledCache{entries: make(map[string]compiledEntry)}
}

func (c *compiledCache) get(id, version string) (*jsonschema.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.version != version {
		return nil, false
	}
	return e.schema, true
}

func (c *compiledCache) put(id, version string, s *jsonschema.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = compiledEntry{version: version, schema: s}
}

func (c *compiledCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// compiledSchema returns the compiled document for s. Must be called with the
// registry lock held.
func (r *Registry) compiledSchema(s *Schema) (*jsonschema.Schema, error) {
	if cs, ok := r.compiled.get(s.ID, s.Version); ok {
		return cs, nil
	}

	cs, err := CompileJSONSchema(r.buildJSONSchema(s))
	if err != nil {
		return nil, err
	}
	r.compiled.put(s.ID, s.Version, cs)
	return cs, nil
}

// CompileJSONSchema compiles a draft 2020-12 document with format assertions on
func CompileJSONSchema(doc map[string]interface{}) (*jsonschema.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema document: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	cs, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return cs, nil
}

// validationMessages flattens a jsonschema error tree into leaf messages
func validationMessages(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
