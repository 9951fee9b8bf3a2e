package projection

import (
	"fmt"
	"strings"
)

// Format is a serialization format for RenderSchema
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatRDF  Format = "rdf"
	FormatYAML Format = "yaml"
)

// Language is a target language for GenerateImplementation
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
	LanguageCSharp     Language = "csharp"
)

// Framework is a target validation library for GenerateValidation
type Framework string

const (
	FrameworkJSONSchema Framework = "json-schema"
	FrameworkJoi        Framework = "joi"
	FrameworkYup        Framework = "yup"
	FrameworkZod        Framework = "zod"
	FrameworkPydantic   Framework = "pydantic"
)

// Formats lists every supported format
var Formats = []Format{FormatJSON, FormatXML, FormatRDF, FormatYAML}

// Languages lists every supported language
var Languages = []Language{LanguageTypeScript, LanguagePython, LanguageJava, LanguageGo, LanguageCSharp}

// Frameworks lists every supported validation framework
var Frameworks = []Framework{FrameworkJSONSchema, FrameworkJoi, FrameworkYup, FrameworkZod, FrameworkPydantic}

// UnsupportedTargetError indicates an unknown format, language or framework
type UnsupportedTargetError struct {
	Kind   string
	Target string
}

func (e UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Kind, e.Target)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseFormat parses a format name case-insensitively
func ParseFormat(s string) (Format, error) {
	switch normalize(s) {
	case "json", "structured-data":
		return FormatJSON, nil
	case "xml", "markup":
		return FormatXML, nil
	case "rdf", "turtle", "ttl", "graph":
		return FormatRDF, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", UnsupportedTargetError{Kind: "format", Target: s}
}

// ParseLanguage parses a language name case-insensitively
func ParseLanguage(s string) (Language, error) {
	switch normalize(s) {
	case "typescript", "ts":
		return LanguageTypeScript, nil
	case "python", "py":
		return LanguagePython, nil
	case "java":
		return LanguageJava, nil
	case "go", "golang":
		return LanguageGo, nil
	case "csharp", "c#", "cs":
		return LanguageCSharp, nil
	}
	return "", UnsupportedTargetError{Kind: "language", Target: s}
}

// ParseFramework parses a validation framework name case-insensitively
func ParseFramework(s string) (Framework, error) {
	switch normalize(s) {
	case "json-schema", "jsonschema":
		return FrameworkJSONSchema, nil
	case "joi":
		return FrameworkJoi, nil
	case "yup":
		return FrameworkYup, nil
	case "zod":
		return FrameworkZod, nil
	case "pydantic":
		return FrameworkPydantic, nil
	}
	return "", UnsupportedTargetError{Kind: "validation framework", Target: s}
}

// ContentType returns the media type of a rendering
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	case FormatRDF:
		return "text/turtle"
	case FormatYAML:
		return "application/yaml"
	}
	return "text/plain"
}
