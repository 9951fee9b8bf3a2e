package projection

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/registry"
)

var codeFuncs = template.FuncMap{
	"camel":         camel,
	"pascal":        pascal,
	"snake":         snake,
	"goTypeName":    goTypeName,
	"goPackage":     goPackage,
	"oneLine":       oneLine,
	"tsKey":         tsKey,
	"tsType":        tsType,
	"pyType":        pyType,
	"javaType":      javaType,
	"goType":        goType,
	"csType":        csType,
	"requiredFirst": requiredFirst,
	"joi":           joiChain,
	"yup":           yupChain,
	"zod":           zodChain,
	"pydanticField": pydanticField,
}

var validationTemplates = map[Framework]*template.Template{
	FrameworkJoi: template.Must(template.New("joi").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
const Joi = require('joi');

const {{.TypeName | camel}}Schema = Joi.object({
{{- range .Fields}}
  {{.ID | tsKey}}: {{joi .}},
{{- end}}
});

module.exports = { {{.TypeName | camel}}Schema };
`)),
	FrameworkYup: template.Must(template.New("yup").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
import * as yup from 'yup';

export const {{.TypeName | camel}}Schema = yup.object({
{{- range .Fields}}
  {{.ID | tsKey}}: {{yup .}},
{{- end}}
});
`)),
	FrameworkZod: template.Must(template.New("zod").Funcs(codeFuncs).Parse(
		`// {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
import { z } from 'zod';

export const {{.TypeName | camel}}Schema = z.object({
{{- range .Fields}}
  {{.ID | tsKey}}: {{zod .}},
{{- end}}
});

export type {{.TypeName}} = z.infer<typeof {{.TypeName | camel}}Schema>;
`)),
	FrameworkPydantic: template.Must(template.New("pydantic").Funcs(codeFuncs).Parse(
		`# {{.Schema.Name | oneLine}} {{.Schema.Version}} ({{.Schema.ID}})
from datetime import date, datetime
from typing import Any, Dict, List, Optional

from pydantic import BaseModel, Field


class {{.TypeName}}(BaseModel):
{{- range .Fields}}
    {{.Ident | snake}}: {{pyType .}} = {{pydanticField .}}
{{- else}}
    pass
{{- end}}
`)),
}

// GenerateValidation returns a validation skeleton for the schema in the
// target framework. JSON Schema output is compiled before it is returned.
func (e *Engine) GenerateValidation(ctx context.Context, id string, framework Framework) (string, error) {
	ctx, span, s, err := e.schema(ctx, "validation", string(framework), id)
	defer span.End()
	if err != nil {
		return "", err
	}

	if framework == FrameworkJSONSchema {
		doc, err := e.src.JSONSchema(ctx, id)
		if err != nil {
			return "", fail(span, err)
		}
		if _, err := registry.CompileJSONSchema(doc); err != nil {
			return "", fail(span, err)
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fail(span, fmt.Errorf("failed to encode JSON Schema: %w", err))
		}
		return string(out), nil
	}

	tmpl, ok := validationTemplates[framework]
	if !ok {
		return "", fail(span, UnsupportedTargetError{Kind: "validation framework", Target: string(framework)})
	}

	var buf bytes.Buffer
	model := codeModel{TypeName: typeName(s.Name), Schema: s, Fields: fields(s)}
	if err := tmpl.Execute(&buf, model); err != nil {
		return "", fail(span, fmt.Errorf("failed to generate %s validation: %w", framework, err))
	}
	return buf.String(), nil
}

// jsRegex wraps a pattern in a JavaScript regex literal. Slashes that are
// not already escaped are escaped.
func jsRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('/')
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('/')
	return b.String()
}

func joiChain(f field) string {
	var b strings.Builder
	switch f.DataType {
	case registry.DataTypeNumber:
		b.WriteString("Joi.number()")
	case registry.DataTypeBoolean:
		b.WriteString("Joi.boolean()")
	case registry.DataTypeDate, registry.DataTypeDateTime:
		b.WriteString("Joi.date().iso()")
	case registry.DataTypeStructuredObject:
		b.WriteString("Joi.object()")
	default:
		b.WriteString("Joi.string()")
		writeStringBounds(&b, f, "min", "max")
		if f.Pattern != "" {
			fmt.Fprintf(&b, ".pattern(%s)", jsRegex(f.Pattern))
		}
	}
	out := b.String()
	if f.List {
		out = "Joi.array().items(" + out + ")"
	}
	if f.Required {
		return out + ".required()"
	}
	return out
}

func yupChain(f field) string {
	var b strings.Builder
	switch f.DataType {
	case registry.DataTypeNumber:
		b.WriteString("yup.number()")
	case registry.DataTypeBoolean:
		b.WriteString("yup.boolean()")
	case registry.DataTypeDate, registry.DataTypeDateTime:
		b.WriteString("yup.date()")
	case registry.DataTypeStructuredObject:
		b.WriteString("yup.object()")
	default:
		b.WriteString("yup.string()")
		writeStringBounds(&b, f, "min", "max")
		if f.Pattern != "" {
			fmt.Fprintf(&b, ".matches(%s)", jsRegex(f.Pattern))
		}
	}
	out := b.String()
	if f.List {
		out = "yup.array().of(" + out + ")"
	}
	if f.Required {
		return out + ".required()"
	}
	return out
}

func zodChain(f field) string {
	var b strings.Builder
	switch f.DataType {
	case registry.DataTypeNumber:
		b.WriteString("z.number()")
	case registry.DataTypeBoolean:
		b.WriteString("z.boolean()")
	case registry.DataTypeDate:
		b.WriteString("z.string().date()")
	case registry.DataTypeDateTime:
		b.WriteString("z.string().datetime()")
	case registry.DataTypeStructuredObject:
		b.WriteString("z.record(z.unknown())")
	default:
		b.WriteString("z.string()")
		writeStringBounds(&b, f, "min", "max")
		if f.Pattern != "" {
			fmt.Fprintf(&b, ".regex(%s)", jsRegex(f.Pattern))
		}
	}
	out := b.String()
	if f.List {
		out = "z.array(" + out + ")"
	}
	if !f.Required {
		return out + ".optional()"
	}
	return out
}

func pydanticField(f field) string {
	var args []string
	if f.Required {
		args = append(args, "...")
	} else {
		args = append(args, "None")
	}
	if !f.List && f.MinLength != nil {
		args = append(args, fmt.Sprintf("min_length=%d", *f.MinLength))
	}
	if !f.List && f.MaxLength != nil {
		args = append(args, fmt.Sprintf("max_length=%d", *f.MaxLength))
	}
	if !f.List && f.Pattern != "" {
		args = append(args, "pattern="+strconv.Quote(f.Pattern))
	}
	if f.Name != "" {
		args = append(args, "description="+strconv.Quote(f.Name))
	}
	return "Field(" + strings.Join(args, ", ") + ")"
}

func writeStringBounds(b *strings.Builder, f field, minCall, maxCall string) {
	if f.MinLength != nil {
		fmt.Fprintf(b, ".%s(%d)", minCall, *f.MinLength)
	}
	if f.MaxLength != nil {
		fmt.Fprintf(b, ".%s(%d)", maxCall, *f.MaxLength)
	}
}
