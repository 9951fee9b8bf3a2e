package projection

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"sort"
	"text/template"

	"github.com/metaschema/registry/internal/registry"
)

// codeModel is the data passed to implementation templates
type codeModel struct {
	TypeName string
	Schema   *registry.Schema
	Fields   []field
}

var implementationTemplates = map[Language]*template.Template{
	LanguageTypeScript: template.Must(template.New("ts").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
export interface {{.TypeName}} {
{{- range .Fields}}
  {{.ID | tsKey}}{{if not .Required}}?{{end}}: {{tsType .}};
{{- end}}
}
`)),
	LanguagePython: template.Must(template.New("py").Funcs(codeFuncs).Parse(
		`# {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
from dataclasses import dataclass
from datetime import date, datetime
from typing import Any, Dict, List, Optional


@dataclass
class {{.TypeName}}:
{{- range (requiredFirst .Fields)}}
    {{.Ident | snake}}: {{pyType .}}{{if not .Required}} = None{{end}}
{{- else}}
    pass
{{- end}}
`)),
	LanguageJava: template.Must(template.New("java").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
public class {{.TypeName}} {
{{- range .Fields}}
    private {{javaType .}} {{.Ident | camel}};
{{- end}}
{{range .Fields}}
    public {{javaType .}} get{{.Ident | pascal}}() {
        return {{.Ident | camel}};
    }

    public void set{{.Ident | pascal}}({{javaType .}} {{.Ident | camel}}) {
        this.{{.Ident | camel}} = {{.Ident | camel}};
    }
{{end -}}
}
`)),
	LanguageGo: template.Must(template.New("go").Funcs(codeFuncs).Parse(
		`// Package {{.TypeName | goPackage}} holds the {{.Schema.Name | oneLine}} record type.
package {{.TypeName | goPackage}}

// {{.TypeName | goTypeName}} is a record of schema {{.Schema.ID}} version {{.Schema.Version}}
type {{.TypeName | goTypeName}} struct {
{{- range .Fields}}
	{{.Ident | pascal}} {{goType .}} ` + "`" + `json:"{{.ID}}{{if not .Required}},omitempty{{end}}"` + "`" + `
{{- end}}
}
`)),
	LanguageCSharp: template.Must(template.New("cs").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
using System;
using System.Collections.Generic;

public class {{.TypeName}}
{
{{- range .Fields}}
    public {{csType .}} {{.Ident | pascal}} { get; set; }
{{- end}}
}
`)),
}

// GenerateImplementation returns a type skeleton for the schema in the
// target language. The type is named after the schema name with
// whitespace removed.
func (e *Engine) GenerateImplementation(ctx context.Context, id string, language Language) (string, error) {
	_, span, s, err := e.schema(ctx, "code", string(language), id)
	defer span.End()
	if err != nil {
		return "", err
	}

	tmpl, ok := implementationTemplates[language]
	if !ok {
		return "", fail(span, UnsupportedTargetError{Kind: "language", Target: string(language)})
	}

	var buf bytes.Buffer
	model := codeModel{TypeName: typeName(s.Name), Schema: s, Fields: fields(s)}
	if err := tmpl.Execute(&buf, model); err != nil {
		return "", fail(span, fmt.Errorf("failed to generate %s code: %w", language, err))
	}

	if language == LanguageGo {
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return "", fail(span, fmt.Errorf("generated Go code does not parse: %w", err))
		}
		return string(src), nil
	}
	return buf.String(), nil
}

// requiredFirst orders required fields first; Python dataclasses reject
// fields without defaults after fields with defaults
func requiredFirst(in []field) []field {
	out := append([]field(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Required && !out[j].Required
	})
	return out
}

func tsType(f field) string {
	var t string
	switch f.DataType {
	case registry.DataTypeNumber:
		t = "number"
	case registry.DataTypeBoolean:
		t = "boolean"
	case registry.DataTypeStructuredObject:
		t = "Record<string, unknown>"
	default:
		t = "string"
	}
	if f.List {
		return t + "[]"
	}
	return t
}

func pyType(f field) string {
	var t string
	switch f.DataType {
	case registry.DataTypeNumber:
		t = "float"
	case registry.DataTypeBoolean:
		t = "bool"
	case registry.DataTypeDate:
		t = "date"
	case registry.DataTypeDateTime:
		t = "datetime"
	case registry.DataTypeStructuredObject:
		t = "Dict[str, Any]"
	default:
		t = "str"
	}
	if f.List {
		t = "List[" + t + "]"
	}
	if !f.Required {
		t = "Optional[" + t + "]"
	}
	return t
}

func javaType(f field) string {
	var t string
	switch f.DataType {
	case registry.DataTypeNumber:
		t = "Double"
	case registry.DataTypeBoolean:
		t = "Boolean"
	case registry.DataTypeDate:
		t = "java.time.LocalDate"
	case registry.DataTypeDateTime:
		t = "java.time.OffsetDateTime"
	case registry.DataTypeStructuredObject:
		t = "java.util.Map<String, Object>"
	default:
		t = "String"
	}
	if f.List {
		return "java.util.List<" + t + ">"
	}
	return t
}

func goType(f field) string {
	var t string
	switch f.DataType {
	case registry.DataTypeNumber:
		t = "float64"
	case registry.DataTypeBoolean:
		t = "bool"
	case registry.DataTypeStructuredObject:
		t = "map[string]interface{}"
	default:
		t = "string"
	}
	if f.List {
		return "[]" + t
	}
	if !f.Required && (f.DataType == registry.DataTypeNumber || f.DataType == registry.DataTypeBoolean) {
		return "*" + t
	}
	return t
}

func csType(f field) string {
	var t string
	switch f.DataType {
	case registry.DataTypeNumber:
		t = "double"
	case registry.DataTypeBoolean:
		t = "bool"
	case registry.DataTypeDate, registry.DataTypeDateTime:
		t = "DateTime"
	case registry.DataTypeStructuredObject:
		t = "Dictionary<string, object>"
	default:
		t = "string"
	}
	if f.List {
		return "List<" + t + ">"
	}
	if !f.Required && t != "string" && t != "Dictionary<string, object>" {
		return t + "?"
	}
	return t
}

func tsKey(id string) string {
	for i, r := range id {
		isIdent := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !isIdent {
			return fmt.Sprintf("%q", id)
		}
	}
	return id
}
