package projection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/registry"
	"github.com/metaschema/registry/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setupEngine(t *testing.T) (*Engine, *registry.Registry) {
	t.Helper()
	r := test.NewRegistry(t)
	_, err := r.RegisterSchema(context.Background(), test.SampleSchema("project"))
	require.NoError(t, err)
	return NewEngine(r, WithClock(test.Clock)), r
}

// stubSource serves one schema and no schemes or vocabularies
type stubSource struct {
	schema *registry.Schema
}

func (s stubSource) GetSchema(ctx context.Context, id string) (*registry.Schema, bool) {
	if s.schema == nil || s.schema.ID != id {
		return nil, false
	}
	return s.schema.Clone(), true
}

func (s stubSource) GetEncodingScheme(ctx context.Context, id string) (*registry.EncodingScheme, bool) {
	return nil, false
}

func (s stubSource) GetControlledVocabulary(ctx context.Context, id string) (*registry.ControlledVocabulary, bool) {
	return nil, false
}

func (s stubSource) JSONSchema(ctx context.Context, schemaID string) (map[string]interface{}, error) {
	return nil, registry.NotFoundError{Kind: registry.KindSchema, ID: schemaID}
}

func TestRenderSchema_JSONRoundTrip(t *testing.T) {
	e, r := setupEngine(t)
	ctx := context.Background()

	for _, id := range []string{"project", "dublin-core-basic"} {
		t.Run(id, func(t *testing.T) {
			out, err := e.RenderSchema(ctx, id, FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, "application/json", out.ContentType)

			var decoded registry.Schema
			require.NoError(t, json.Unmarshal([]byte(out.Body), &decoded))

			stored, ok := r.GetSchema(ctx, id)
			require.True(t, ok)
			assert.Equal(t, stored.ID, decoded.ID)
			assert.Equal(t, stored.Version, decoded.Version)
			assert.Equal(t, stored.Elements, decoded.Elements)
			assert.Equal(t, stored.ValidationRules, decoded.ValidationRules)
			assert.True(t, stored.RegisteredAt.Equal(decoded.RegisteredAt))
		})
	}
}

func TestRenderSchema_OutlineFormats(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	xmlOut, err := e.RenderSchema(ctx, "project", FormatXML)
	require.NoError(t, err)
	assert.Contains(t, xmlOut.Body, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, xmlOut.Body, `<metadataSchema id="project" version="1.0.0">`)
	assert.Contains(t, xmlOut.Body, `<element id="identifier" dataType="text" obligation="mandatory">`)

	rdf, err := e.RenderSchema(ctx, "project", FormatRDF)
	require.NoError(t, err)
	assert.Equal(t, "text/turtle", rdf.ContentType)
	assert.Contains(t, rdf.Body, "<urn:metaregistry:schema:project> a mr:MetadataSchema")
	assert.Contains(t, rdf.Body, `dc:title "Project Record"`)
	assert.Contains(t, rdf.Body, "<urn:metaregistry:schema:project/element/security_classification> a mr:Element")

	yml, err := e.RenderSchema(ctx, "project", FormatYAML)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(yml.Body), &doc))
	assert.Equal(t, "project", doc["id"])
	assert.Equal(t, "1.0.0", doc["version"])
	assert.Len(t, doc["elements"], 7)
}

func TestRenderSchema_Errors(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	_, err := e.RenderSchema(ctx, "missing-id", FormatJSON)
	var nf registry.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing-id", nf.ID)

	_, err = e.RenderSchema(ctx, "project", Format("pdf"))
	var unsupported UnsupportedTargetError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "format", unsupported.Kind)
}

func TestParseTargets(t *testing.T) {
	lang, err := ParseLanguage("TypeScript")
	require.NoError(t, err)
	assert.Equal(t, LanguageTypeScript, lang)

	f, err := ParseFormat(" Turtle ")
	require.NoError(t, err)
	assert.Equal(t, FormatRDF, f)

	fw, err := ParseFramework("JSONSchema")
	require.NoError(t, err)
	assert.Equal(t, FrameworkJSONSchema, fw)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
	_, err = ParseLanguage("cobol")
	assert.EqualError(t, err, "unsupported language: cobol")
	_, err = ParseFramework("ajv")
	assert.Error(t, err)
}

func TestGenerateImplementation_MissingSchema(t *testing.T) {
	e, _ := setupEngine(t)

	lang, err := ParseLanguage("TypeScript")
	require.NoError(t, err)

	_, err = e.GenerateImplementation(context.Background(), "missing-id", lang)
	var nf registry.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestGenerateImplementation(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	tests := []struct {
		language Language
		contains []string
		pattern  string
	}{
		{
			language: LanguageTypeScript,
			contains: []string{"export interface ProjectRecord {", "  identifier: string;", "  keywords?: string[];", "  budget?: number;"},
		},
		{
			language: LanguagePython,
			contains: []string{"@dataclass", "class ProjectRecord:", "    title: str\n", "    budget: Optional[float] = None"},
		},
		{
			language: LanguageJava,
			contains: []string{"public class ProjectRecord {", "private java.util.List<String> keywords;", "public String getSecurityClassification()"},
		},
		{
			language: LanguageGo,
			contains: []string{"package projectrecord", "type ProjectRecord struct {"},
			pattern:  `Budget\s+\*float64\s+` + "`" + `json:"budget,omitempty"` + "`",
		},
		{
			language: LanguageCSharp,
			contains: []string{"public class ProjectRecord", "public List<string> Keywords { get; set; }", "public double? Budget { get; set; }"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.language), func(t *testing.T) {
			out, err := e.GenerateImplementation(ctx, "project", tt.language)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			if tt.pattern != "" {
				assert.Regexp(t, tt.pattern, out)
			}
		})
	}

	_, err := e.GenerateImplementation(ctx, "project", Language("cobol"))
	var unsupported UnsupportedTargetError
	assert.True(t, errors.As(err, &unsupported))
}

func TestGenerateImplementation_PythonRequiredFirst(t *testing.T) {
	e, r := setupEngine(t)
	ctx := context.Background()

	_, err := r.RegisterSchema(ctx, &registry.Schema{
		ID:   "late-required",
		Name: "late required",
		Elements: []registry.Element{
			{ID: "note", Name: "Note", DataType: registry.DataTypeText},
			{ID: "code", Name: "Code", DataType: registry.DataTypeText, Obligation: registry.ObligationMandatory},
		},
	})
	require.NoError(t, err)

	out, err := e.GenerateImplementation(ctx, "late-required", LanguagePython)
	require.NoError(t, err)
	assert.Contains(t, out, "class laterequired:")
	assert.Less(t, strings.Index(out, "code: str"), strings.Index(out, "note: Optional[str] = None"))
}

func TestGenerateImplementation_Identifiers(t *testing.T) {
	e, r := setupEngine(t)
	ctx := context.Background()

	for _, s := range []*registry.Schema{
		{ID: "kw-type", Name: "Type", Elements: []registry.Element{{ID: "code", Name: "Code", DataType: registry.DataTypeText}}},
		{ID: "kw-map", Name: "map", Elements: []registry.Element{{ID: "code", Name: "Code", DataType: registry.DataTypeText}}},
		{
			ID:   "civil",
			Name: "Civil\nRecord",
			Elements: []registry.Element{
				{ID: "état", Name: "État", DataType: registry.DataTypeText},
				{ID: "date-created", Name: "Created", DataType: registry.DataTypeDate},
				{ID: "date_created", Name: "Created again", DataType: registry.DataTypeDate},
			},
		},
	} {
		_, err := r.RegisterSchema(ctx, s)
		require.NoError(t, err)
	}

	tests := []struct {
		id       string
		language Language
		contains []string
	}{
		{"kw-type", LanguageGo, []string{"package typeschema", "type Type struct {"}},
		{"kw-map", LanguageGo, []string{"package mapschema", "type Map struct {"}},
		{"civil", LanguageJava, []string{"private String état;", "public String getÉtat()", "dateCreated;", "dateCreated2;", "getDateCreated2()"}},
		{"civil", LanguageCSharp, []string{"public string État { get; set; }", "public DateTime? DateCreated2 { get; set; }"}},
		{"civil", LanguageGo, []string{`json:"état,omitempty"`, `json:"date_created,omitempty"`, "// Package civilrecord holds the Civil Record record type."}},
		{"civil", LanguagePython, []string{"    état: Optional[str] = None", "    date_created_2: Optional[date] = None"}},
		{"civil", LanguageTypeScript, []string{"  \"état\"?: string;", "  date_created?: string;"}},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+string(tt.language), func(t *testing.T) {
			out, err := e.GenerateImplementation(ctx, tt.id, tt.language)
			require.NoError(t, err)
			assert.True(t, utf8.ValidString(out))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}

	goOut, err := e.GenerateImplementation(ctx, "civil", LanguageGo)
	require.NoError(t, err)
	assert.Regexp(t, `État\s+string`, goOut)
	assert.Regexp(t, `DateCreated\s+string`, goOut)
	assert.Regexp(t, `DateCreated2\s+string`, goOut)
}

func TestJSRegex(t *testing.T) {
	assert.Equal(t, `/^a\/b\/c$/`, jsRegex(`^a\/b/c$`))
	assert.Equal(t, `/^[0-9]+$/`, jsRegex(`^[0-9]+$`))
	assert.Equal(t, `/\\\//`, jsRegex(`\\/`))
}

func TestGenerateValidation(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	tests := []struct {
		framework Framework
		contains  []string
	}{
		{FrameworkJoi, []string{"const projectRecordSchema = Joi.object({", "identifier: Joi.string().pattern(/^PRJ-[0-9]+$/).required(),", "keywords: Joi.array().items(Joi.string()),"}},
		{FrameworkYup, []string{"import * as yup from 'yup';", "title: yup.string().max(200).required(),"}},
		{FrameworkZod, []string{"title: z.string().max(200),", "budget: z.number().optional(),", "export type ProjectRecord = z.infer<typeof projectRecordSchema>;"}},
		{FrameworkPydantic, []string{"class ProjectRecord(BaseModel):", `title: str = Field(..., max_length=200, description="Title")`}},
	}

	for _, tt := range tests {
		t.Run(string(tt.framework), func(t *testing.T) {
			out, err := e.GenerateValidation(ctx, "project", tt.framework)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestGenerateValidation_JSONSchema(t *testing.T) {
	e, _ := setupEngine(t)

	out, err := e.GenerateValidation(context.Background(), "project", FrameworkJSONSchema)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
	assert.ElementsMatch(t, []interface{}{"identifier", "title"}, doc["required"])

	compiled, err := registry.CompileJSONSchema(doc)
	require.NoError(t, err)
	assert.NoError(t, compiled.Validate(map[string]interface{}{"identifier": "PRJ-1", "title": "Bridge"}))
	assert.Error(t, compiled.Validate(map[string]interface{}{"identifier": "X", "title": "Bridge"}))
}

func TestRenderDocumentation(t *testing.T) {
	e, _ := setupEngine(t)

	doc, err := e.RenderDocumentation(context.Background(), "project")
	require.NoError(t, err)

	assert.Equal(t, "project", doc.SchemaID)
	assert.Len(t, doc.Elements, 7)
	assert.Equal(t, test.FixedTime, doc.GeneratedAt)
	assert.Empty(t, doc.Unresolved)

	require.Len(t, doc.EncodingSchemes, 2)
	assert.Equal(t, "iso-639-1", doc.EncodingSchemes[0].ID)
	assert.Contains(t, doc.EncodingSchemes[0].Values, "en")
	require.Len(t, doc.Vocabularies, 1)
	assert.Equal(t, []string{"public", "internal", "confidential", "restricted"}, doc.Vocabularies[0].Terms)

	md := doc.Markdown()
	assert.Contains(t, md, "# Project Record")
	assert.Contains(t, md, "| `title` | Title | text | mandatory |  | max length 200 |")
	assert.Contains(t, md, "## Controlled vocabularies")
	assert.NotContains(t, md, "## Unresolved references")
}

func TestRenderDocumentation_Unresolved(t *testing.T) {
	schema := test.SampleSchema("orphan")
	e := NewEngine(stubSource{schema: schema}, WithClock(func() time.Time { return test.FixedTime }))

	doc, err := e.RenderDocumentation(context.Background(), "orphan")
	require.NoError(t, err)

	assert.Empty(t, doc.EncodingSchemes)
	assert.Equal(t, []string{
		"encoding scheme iso-639-1",
		"encoding scheme iso-3166-1-alpha-2",
		"controlled vocabulary security-classification",
	}, doc.Unresolved)
	assert.Contains(t, doc.Markdown(), "- encoding scheme iso-639-1\n")

	_, err = e.GenerateValidation(context.Background(), "orphan", FrameworkJSONSchema)
	assert.Error(t, err)
}
