package projection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/metaschema/registry/internal/registry"
)

// Documentation is the human-oriented description of a schema with its
// referenced encoding schemes and vocabularies resolved at render time
type Documentation struct {
	SchemaID        string          `json:"schema_id"`
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Description     string          `json:"description,omitempty"`
	Elements        []ElementDoc    `json:"elements"`
	Groups          []GroupDoc      `json:"groups,omitempty"`
	EncodingSchemes []SchemeDoc     `json:"encoding_schemes,omitempty"`
	Vocabularies    []VocabularyDoc `json:"vocabularies,omitempty"`
	Rules           []RuleDoc       `json:"rules,omitempty"`
	Unresolved      []string        `json:"unresolved,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// ElementDoc documents one element
type ElementDoc struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Definition           string   `json:"definition,omitempty"`
	DataType             string   `json:"data_type"`
	Obligation           string   `json:"obligation,omitempty"`
	Repeatability        string   `json:"repeatability,omitempty"`
	Constraints          []string `json:"constraints,omitempty"`
	EncodingScheme       string   `json:"encoding_scheme,omitempty"`
	ControlledVocabulary string   `json:"controlled_vocabulary,omitempty"`
}

// GroupDoc documents one element group
type GroupDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Elements    []string `json:"elements"`
}

// SchemeDoc summarizes a referenced encoding scheme
type SchemeDoc struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Authority string   `json:"authority,omitempty"`
	Values    []string `json:"values"`
}

// VocabularyDoc summarizes a referenced controlled vocabulary
type VocabularyDoc struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Type  string   `json:"type,omitempty"`
	Terms []string `json:"terms"`
}

// RuleDoc documents a validation rule
type RuleDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Element     string `json:"element,omitempty"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
}

// RenderDocumentation documents a schema. Encoding schemes and vocabularies
// referenced by the schema or its elements are looked up live; references
// that no longer resolve are listed in Unresolved instead of failing.
func (e *Engine) RenderDocumentation(ctx context.Context, id string) (*Documentation, error) {
	ctx, span, s, err := e.schema(ctx, "docs", "documentation", id)
	defer span.End()
	if err != nil {
		return nil, err
	}

	doc := &Documentation{
		SchemaID:    s.ID,
		Name:        s.Name,
		Version:     s.Version,
		Description: s.Description,
		Elements:    make([]ElementDoc, 0, len(s.Elements)),
		GeneratedAt: e.now(),
	}

	for _, el := range s.Elements {
		doc.Elements = append(doc.Elements, ElementDoc{
			ID:                   el.ID,
			Name:                 el.Name,
			Definition:           el.Definition,
			DataType:             string(el.DataType),
			Obligation:           string(el.Obligation),
			Repeatability:        string(el.Repeatability),
			Constraints:          constraints(el),
			EncodingScheme:       el.EncodingScheme,
			ControlledVocabulary: el.ControlledVocabulary,
		})
	}
	for _, g := range s.ElementGroups {
		doc.Groups = append(doc.Groups, GroupDoc{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Elements:    append([]string(nil), g.Elements...),
		})
	}
	for _, r := range s.ValidationRules {
		doc.Rules = append(doc.Rules, RuleDoc{
			Name:        r.Name,
			Type:        string(r.Type),
			Element:     r.Element,
			Expression:  r.Expression,
			Description: r.Description,
		})
	}

	schemeIDs, vocabIDs := references(s)
	for _, sid := range schemeIDs {
		scheme, ok := e.src.GetEncodingScheme(ctx, sid)
		if !ok {
			doc.Unresolved = append(doc.Unresolved, "encoding scheme "+sid)
			continue
		}
		values := make([]string, 0, len(scheme.Values))
		for _, v := range scheme.Values {
			values = append(values, v.Value)
		}
		doc.EncodingSchemes = append(doc.EncodingSchemes, SchemeDoc{
			ID:        scheme.ID,
			Name:      scheme.Name,
			Type:      string(scheme.Type),
			Authority: scheme.Authority,
			Values:    values,
		})
	}
	for _, vid := range vocabIDs {
		vocab, ok := e.src.GetControlledVocabulary(ctx, vid)
		if !ok {
			doc.Unresolved = append(doc.Unresolved, "controlled vocabulary "+vid)
			continue
		}
		terms := make([]string, 0, len(vocab.Terms))
		for _, t := range vocab.Terms {
			terms = append(terms, t.ID)
		}
		doc.Vocabularies = append(doc.Vocabularies, VocabularyDoc{
			ID:    vocab.ID,
			Name:  vocab.Name,
			Type:  string(vocab.Type),
			Terms: terms,
		})
	}

	return doc, nil
}

// references collects scheme and vocabulary IDs from the schema and its
// elements, deduplicated in first-seen order
func references(s *registry.Schema) (schemes, vocabs []string) {
	seenS := make(map[string]bool)
	seenV := make(map[string]bool)
	addS := func(id string) {
		if id != "" && !seenS[id] {
			seenS[id] = true
			schemes = append(schemes, id)
		}
	}
	addV := func(id string) {
		if id != "" && !seenV[id] {
			seenV[id] = true
			vocabs = append(vocabs, id)
		}
	}
	for _, id := range s.EncodingSchemes {
		addS(id)
	}
	for _, id := range s.ControlledVocabularies {
		addV(id)
	}
	for _, el := range s.Elements {
		addS(el.EncodingScheme)
		addV(el.ControlledVocabulary)
	}
	return schemes, vocabs
}

func constraints(el registry.Element) []string {
	var out []string
	if el.MinLength != nil {
		out = append(out, fmt.Sprintf("min length %d", *el.MinLength))
	}
	if el.MaxLength != nil {
		out = append(out, fmt.Sprintf("max length %d", *el.MaxLength))
	}
	if el.Pattern != "" {
		out = append(out, "pattern "+el.Pattern)
	}
	if el.DefaultValue != nil {
		out = append(out, fmt.Sprintf("default %v", el.DefaultValue))
	}
	return out
}

// Markdown renders the documentation as a Markdown page
func (d *Documentation) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	fmt.Fprintf(&b, "- ID: `%s`\n- Version: %s\n\n", d.SchemaID, d.Version)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}

	b.WriteString("## Elements\n\n")
	b.WriteString("| ID | Name | Type | Obligation | Repeatability | Constraints |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, el := range d.Elements {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s | %s |\n",
			el.ID, el.Name, el.DataType, el.Obligation, el.Repeatability, strings.Join(el.Constraints, "; "))
	}

	if len(d.Groups) > 0 {
		b.WriteString("\n## Groups\n\n")
		for _, g := range d.Groups {
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", g.Name, g.ID, strings.Join(g.Elements, ", "))
		}
	}

	if len(d.Rules) > 0 {
		b.WriteString("\n## Validation rules\n\n")
		for _, r := range d.Rules {
			fmt.Fprintf(&b, "- **%s**: `%s`", r.Name, r.Expression)
			if r.Description != "" {
				fmt.Fprintf(&b, " %s", r.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(d.EncodingSchemes) > 0 {
		b.WriteString("\n## Encoding schemes\n\n")
		for _, s := range d.EncodingSchemes {
			fmt.Fprintf(&b, "- **%s** (`%s`): %d values\n", s.Name, s.ID, len(s.Values))
		}
	}

	if len(d.Vocabularies) > 0 {
		b.WriteString("\n## Controlled vocabularies\n\n")
		for _, v := range d.Vocabularies {
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", v.Name, v.ID, strings.Join(v.Terms, ", "))
		}
	}

	if len(d.Unresolved) > 0 {
		b.WriteString("\n## Unresolved references\n\n")
		for _, u := range d.Unresolved {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}

	return b.String()
}
