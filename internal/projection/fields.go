package projection

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/metaschema/registry/internal/registry"
)

// field is the language-neutral view of an element used by the generators
type field struct {
	ID        string
	Ident     string
	Name      string
	DataType  registry.DataType
	List      bool
	Required  bool
	MinLength *int
	MaxLength *int
	Pattern   string
}

func fields(s *registry.Schema) []field {
	required := make(map[string]bool)
	for _, el := range s.Elements {
		if el.Obligation == registry.ObligationMandatory {
			required[el.ID] = true
		}
	}
	for _, ob := range s.ObligationLevels {
		required[ob.Element] = ob.Level == registry.ObligationMandatory
	}

	idents := newIdentSet()
	out := make([]field, 0, len(s.Elements))
	for _, el := range s.Elements {
		out = append(out, field{
			ID:        el.ID,
			Ident:     idents.claim(el.ID),
			Name:      el.Name,
			DataType:  el.DataType,
			List:      el.DataType == registry.DataTypeOrderedList || el.Repeatable(),
			Required:  required[el.ID],
			MinLength: el.MinLength,
			MaxLength: el.MaxLength,
			Pattern:   el.Pattern,
		})
	}
	return out
}

// identSet hands out element identifiers that stay distinct after case
// conversion. "date-created" and "date_created" both become DateCreated,
// so the second one is claimed as "date_created_2".
type identSet map[string]bool

func newIdentSet() identSet {
	return make(identSet)
}

func (s identSet) claim(id string) string {
	ident := id
	for n := 2; s.taken(ident); n++ {
		ident = fmt.Sprintf("%s_%d", id, n)
	}
	s["p:"+pascal(ident)] = true
	s["s:"+snake(ident)] = true
	return ident
}

func (s identSet) taken(ident string) bool {
	return s["p:"+pascal(ident)] || s["s:"+snake(ident)]
}

// typeName strips whitespace from the schema name. Characters that cannot
// appear in an identifier are dropped too.
func typeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || startsWithDigit(out) {
		out = "Schema" + out
	}
	return out
}

// goTypeName exports the type name so it can never be a Go keyword
func goTypeName(name string) string {
	return upperFirst(name)
}

// goPackage derives a package name from the type name. Names that lower-case
// to a keyword such as "type" or "map" get a "schema" suffix.
func goPackage(name string) string {
	pkg := strings.ToLower(name)
	if token.IsKeyword(pkg) || pkg == "_" {
		pkg += "schema"
	}
	return pkg
}

// oneLine collapses whitespace so a name can sit in a line comment
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// words splits an element ID such as "retention_period" or "date-created"
func words(id string) []string {
	return strings.FieldsFunc(id, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func pascal(id string) string {
	var b strings.Builder
	for _, w := range words(id) {
		b.WriteString(upperFirst(w))
	}
	out := b.String()
	if out == "" || startsWithDigit(out) {
		out = "F" + out
	}
	return out
}

func camel(id string) string {
	return lowerFirst(pascal(id))
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

func snake(id string) string {
	ws := words(id)
	for i := range ws {
		ws[i] = strings.ToLower(ws[i])
	}
	out := strings.Join(ws, "_")
	if out == "" || startsWithDigit(out) {
		out = "f_" + out
	}
	return out
}
