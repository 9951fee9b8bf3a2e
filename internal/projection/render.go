package projection

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/registry"
	"gopkg.in/yaml.v3"
)

// Rendering is a serialized schema
type Rendering struct {
	Format      Format `json:"format"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// RenderSchema serializes a registered schema. JSON is a complete
// serialization that decodes back into an equal Schema; XML, RDF and YAML
// carry the schema's identity fields and an element outline.
func (e *Engine) RenderSchema(ctx context.Context, id string, format Format) (*Rendering, error) {
	_, span, s, err := e.schema(ctx, "render", string(format), id)
	defer span.End()
	if err != nil {
		return nil, err
	}

	var body []byte
	switch format {
	case FormatJSON:
		body, err = json.MarshalIndent(s, "", "  ")
	case FormatXML:
		body, err = renderXML(s)
	case FormatRDF:
		body, err = renderTurtle(s)
	case FormatYAML:
		body, err = yaml.Marshal(outline(s))
	default:
		return nil, fail(span, UnsupportedTargetError{Kind: "format", Target: string(format)})
	}
	if err != nil {
		return nil, fail(span, fmt.Errorf("failed to render %s as %s: %w", id, format, err))
	}

	return &Rendering{Format: format, ContentType: format.ContentType(), Body: string(body)}, nil
}

// schemaOutline is the identity header shared by the outline formats
type schemaOutline struct {
	XMLName     xml.Name         `xml:"metadataSchema" yaml:"-"`
	ID          string           `xml:"id,attr" yaml:"id"`
	Version     string           `xml:"version,attr" yaml:"version"`
	Name        string           `xml:"name" yaml:"name"`
	Description string           `xml:"description,omitempty" yaml:"description,omitempty"`
	Elements    []elementOutline `xml:"elements>element" yaml:"elements"`
}

type elementOutline struct {
	ID            string `xml:"id,attr" yaml:"id"`
	Name          string `xml:"name" yaml:"name"`
	DataType      string `xml:"dataType,attr" yaml:"data_type"`
	Obligation    string `xml:"obligation,attr,omitempty" yaml:"obligation,omitempty"`
	Repeatability string `xml:"repeatability,attr,omitempty" yaml:"repeatability,omitempty"`
}

func outline(s *registry.Schema) schemaOutline {
	o := schemaOutline{
		ID:          s.ID,
		Version:     s.Version,
		Name:        s.Name,
		Description: s.Description,
		Elements:    make([]elementOutline, 0, len(s.Elements)),
	}
	for _, el := range s.Elements {
		o.Elements = append(o.Elements, elementOutline{
			ID:            el.ID,
			Name:          el.Name,
			DataType:      string(el.DataType),
			Obligation:    string(el.Obligation),
			Repeatability: string(el.Repeatability),
		})
	}
	return o
}

func renderXML(s *registry.Schema) ([]byte, error) {
	body, err := xml.MarshalIndent(outline(s), "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

var turtleTemplate = template.Must(template.New("turtle").Funcs(template.FuncMap{
	"lit": turtleLiteral,
	"iri": url.PathEscape,
}).Parse(`@prefix dc: <http://purl.org/dc/elements/1.1/> .
@prefix dcterms: <http://purl.org/dc/terms/> .
@prefix mr: <urn:metaregistry:> .

<urn:metaregistry:schema:{{iri .ID}}> a mr:MetadataSchema ;
    dc:identifier {{lit .ID}} ;
    dc:title {{lit .Name}} ;
    dcterms:hasVersion {{lit .Version}}{{if .Description}} ;
    dc:description {{lit .Description}}{{end}}{{range .Elements}} ;
    mr:element <urn:metaregistry:schema:{{iri $.ID}}/element/{{iri .ID}}>{{end}} .
{{range .Elements}}
<urn:metaregistry:schema:{{iri $.ID}}/element/{{iri .ID}}> a mr:Element ;
    dc:identifier {{lit .ID}} ;
    dc:title {{lit .Name}} ;
    mr:dataType {{lit .DataType}} .
{{end}}`))

func renderTurtle(s *registry.Schema) ([]byte, error) {
	var buf bytes.Buffer
	if err := turtleTemplate.Execute(&buf, outline(s)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var turtleEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func turtleLiteral(s string) string {
	return `"` + turtleEscaper.Replace(s) + `"`
}
