package designer

import (
	"strings"

	"github.com/metaschema/registry/internal/registry"
)

// Seed identifiers the default policies bind to
const (
	SchemeLanguage   = "iso-639-1"
	SchemeCountry    = "iso-3166-1-alpha-2"
	SchemeCurrency   = "iso-4217"
	SchemeTime       = "iso-8601"
	VocabularyRecord = "record-classification"
	VocabularySecure = "security-classification"
)

func intPtr(n int) *int { return &n }

// coreElements are always selected
var coreElements = []registry.Element{
	{ID: "identifier", Name: "Identifier", Definition: "An unambiguous reference to the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationMandatory, Repeatability: registry.RepeatabilitySingle},
	{ID: "title", Name: "Title", Definition: "A name given to the resource", DataType: registry.DataTypeText, MinLength: intPtr(1), MaxLength: intPtr(500), Obligation: registry.ObligationMandatory, Repeatability: registry.RepeatabilitySingle},
	{ID: "description", Name: "Description", Definition: "An account of the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle},
	{ID: "creator", Name: "Creator", Definition: "An entity primarily responsible for making the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilityRepeatable},
	{ID: "date", Name: "Date", Definition: "A point in time associated with the resource", DataType: registry.DataTypeDate, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, EncodingScheme: SchemeTime},
}

type keywordElement struct {
	keywords []string
	elements []registry.Element
}

// keywordElements maps requirement keywords to the elements they add.
// Entries are matched in order and an element is added at most once.
var keywordElements = []keywordElement{
	{
		keywords: []string{"language", "multilingual", "translation"},
		elements: []registry.Element{
			{ID: "language", Name: "Language", Definition: "A language of the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, EncodingScheme: SchemeLanguage},
		},
	},
	{
		keywords: []string{"country", "jurisdiction", "region", "geograph"},
		elements: []registry.Element{
			{ID: "country", Name: "Country", Definition: "The country the resource applies to", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, EncodingScheme: SchemeCountry},
		},
	},
	{
		keywords: []string{"currency", "price", "cost", "amount", "budget", "invoice"},
		elements: []registry.Element{
			{ID: "amount", Name: "Amount", Definition: "A monetary amount", DataType: registry.DataTypeNumber, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle},
			{ID: "currency", Name: "Currency", Definition: "The currency of the amount", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, EncodingScheme: SchemeCurrency},
		},
	},
	{
		keywords: []string{"retention", "archiv", "disposal", "record"},
		elements: []registry.Element{
			{ID: "record_classification", Name: "Record Classification", Definition: "The records series the resource belongs to", DataType: registry.DataTypeEnumerated, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, ControlledVocabulary: VocabularyRecord},
			{ID: "retention_period", Name: "Retention Period", Definition: "How long the resource must be kept, as an ISO 8601 duration", DataType: registry.DataTypeText, Pattern: `^P(\d+Y)?(\d+M)?(\d+D)?$`, Obligation: registry.ObligationConditional, Repeatability: registry.RepeatabilitySingle},
		},
	},
	{
		keywords: []string{"security", "privacy", "confidential", "access control", "classified", "gdpr"},
		elements: []registry.Element{
			{ID: "security_classification", Name: "Security Classification", Definition: "The protective marking of the resource", DataType: registry.DataTypeEnumerated, Obligation: registry.ObligationMandatory, Repeatability: registry.RepeatabilitySingle, ControlledVocabulary: VocabularySecure},
		},
	},
	{
		keywords: []string{"author", "contributor", "collaborat"},
		elements: []registry.Element{
			{ID: "contributor", Name: "Contributor", Definition: "An entity responsible for making contributions to the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilityRepeatable},
		},
	},
	{
		keywords: []string{"keyword", "tag", "subject", "search", "discover"},
		elements: []registry.Element{
			{ID: "keywords", Name: "Keywords", Definition: "Terms describing the topic of the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilityRepeatable},
		},
	},
	{
		keywords: []string{"version"},
		elements: []registry.Element{
			{ID: "version_number", Name: "Version Number", Definition: "The revision of the resource", DataType: registry.DataTypeText, Pattern: `^\d+(\.\d+)*$`, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle},
		},
	},
	{
		keywords: []string{"format", "file", "mime", "media type"},
		elements: []registry.Element{
			{ID: "format", Name: "Format", Definition: "The file format or media type of the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle},
		},
	},
	{
		keywords: []string{"rights", "license", "licence", "copyright"},
		elements: []registry.Element{
			{ID: "rights", Name: "Rights", Definition: "Rights held in and over the resource", DataType: registry.DataTypeText, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle},
		},
	},
	{
		keywords: []string{"audit", "modified", "updated", "change history"},
		elements: []registry.Element{
			{ID: "modified", Name: "Date Modified", Definition: "When the resource was last changed", DataType: registry.DataTypeDateTime, Obligation: registry.ObligationOptional, Repeatability: registry.RepeatabilitySingle, EncodingScheme: SchemeTime},
		},
	},
	{
		keywords: []string{"checksum", "integrity", "tamper", "fixity"},
		elements: []registry.Element{
			{ID: "checksum", Name: "Checksum", Definition: "SHA-256 digest of the resource content", DataType: registry.DataTypeText, Pattern: `^[a-f0-9]{64}$`, Obligation: registry.ObligationMandatory, Repeatability: registry.RepeatabilitySingle},
		},
	},
}

// KeywordElementSelector selects the core Dublin Core elements plus
// elements whose keywords appear in the requirement texts. Business
// requirements are scanned first, then technical, then compliance; an
// element's origin is the first list that mentions it.
type KeywordElementSelector struct{}

func (KeywordElementSelector) SelectElements(req Requirements) []Candidate {
	out := make([]Candidate, 0, len(coreElements))
	seen := make(map[string]bool)
	add := func(el registry.Element, origin Origin) {
		if seen[el.ID] {
			return
		}
		seen[el.ID] = true
		el.MinLength = copyInt(el.MinLength)
		el.MaxLength = copyInt(el.MaxLength)
		out = append(out, Candidate{Element: el, Origin: origin})
	}

	for _, el := range coreElements {
		add(el, OriginCore)
	}

	lists := []struct {
		origin Origin
		texts  []string
	}{
		{OriginBusiness, req.BusinessRequirements},
		{OriginTechnical, req.TechnicalRequirements},
		{OriginCompliance, req.ComplianceRequirements},
	}
	for _, list := range lists {
		for _, text := range list.texts {
			text = strings.ToLower(text)
			for _, ke := range keywordElements {
				if !mentions(text, ke.keywords) {
					continue
				}
				for _, el := range ke.elements {
					add(el, list.origin)
				}
			}
		}
	}
	return out
}

func mentions(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

var groupNames = map[Origin]string{
	OriginCore:       "Core",
	OriginBusiness:   "Business",
	OriginTechnical:  "Technical",
	OriginCompliance: "Compliance",
}

// OriginGrouping creates one group per origin that selected any element
type OriginGrouping struct{}

func (OriginGrouping) Group(req Requirements, candidates []Candidate) []registry.ElementGroup {
	var groups []registry.ElementGroup
	for _, origin := range []Origin{OriginCore, OriginBusiness, OriginTechnical, OriginCompliance} {
		var ids []string
		for _, c := range candidates {
			if c.Origin == origin {
				ids = append(ids, c.Element.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		groups = append(groups, registry.ElementGroup{
			ID:          string(origin),
			Name:        groupNames[origin],
			Description: groupNames[origin] + " elements",
			Elements:    ids,
		})
	}
	return groups
}

// ReferencedSchemes lists the encoding schemes bound by selected elements
type ReferencedSchemes struct{}

func (ReferencedSchemes) SelectEncodingSchemes(req Requirements, candidates []Candidate) []string {
	return unique(candidates, func(el registry.Element) string { return el.EncodingScheme })
}

// ReferencedVocabularies lists the vocabularies bound by selected elements
type ReferencedVocabularies struct{}

func (ReferencedVocabularies) SelectVocabularies(req Requirements, candidates []Candidate) []string {
	return unique(candidates, func(el registry.Element) string { return el.ControlledVocabulary })
}

func unique(candidates []Candidate, key func(registry.Element) string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		k := key(c.Element)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ComplianceRules bounds the title length and asserts that mandatory
// compliance elements are present
type ComplianceRules struct{}

func (ComplianceRules) DeriveRules(req Requirements, candidates []Candidate) []registry.ValidationRule {
	var out []registry.ValidationRule
	for _, c := range candidates {
		el := c.Element
		switch {
		case el.ID == "title":
			out = append(out, registry.ValidationRule{
				Name:        "title-length",
				Type:        registry.RuleTypeLength,
				Element:     "title",
				Expression:  "1..500",
				Description: "Title must be between 1 and 500 characters",
			})
		case c.Origin == OriginCompliance && el.Obligation == registry.ObligationMandatory:
			out = append(out, registry.ValidationRule{
				Name:        el.ID + "-present",
				Type:        registry.RuleTypeExpression,
				Element:     el.ID,
				Expression:  el.ID + " != null",
				Description: el.Name + " is required for compliance",
			})
		}
	}
	return out
}

// retentionCondition makes retention mandatory for legal and financial records
const retentionCondition = `record_classification == "legal" || record_classification == "financial"`

// MirroredObligations restates every mandatory or conditional element
// obligation as an obligation level
type MirroredObligations struct{}

func (MirroredObligations) AssignObligations(req Requirements, candidates []Candidate) []registry.ObligationLevel {
	var out []registry.ObligationLevel
	for _, c := range candidates {
		switch c.Element.Obligation {
		case registry.ObligationMandatory:
			out = append(out, registry.ObligationLevel{Element: c.Element.ID, Level: registry.ObligationMandatory})
		case registry.ObligationConditional:
			if c.Element.ID == "retention_period" {
				out = append(out, registry.ObligationLevel{
					Element:     "retention_period",
					Level:       registry.ObligationConditional,
					Condition:   retentionCondition,
					Description: "Legal and financial records must state a retention period",
				})
			}
		}
	}
	return out
}

// StandardDefaults defaults language to English and security
// classification to internal
type StandardDefaults struct{}

func (StandardDefaults) AssignDefaults(req Requirements, candidates []Candidate) []registry.DefaultValue {
	var out []registry.DefaultValue
	for _, c := range candidates {
		switch c.Element.ID {
		case "language":
			out = append(out, registry.DefaultValue{Element: "language", Value: "en"})
		case "security_classification":
			out = append(out, registry.DefaultValue{Element: "security_classification", Value: "internal"})
		}
	}
	return out
}
