package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the initial content of a registry. Entries are admitted in
// field order: schemes, then vocabularies, then schemas.
type Seed struct {
	EncodingSchemes        []EncodingScheme       `yaml:"encoding_schemes" json:"encoding_schemes"`
	ControlledVocabularies []ControlledVocabulary `yaml:"controlled_vocabularies" json:"controlled_vocabularies"`
	Schemas                []Schema               `yaml:"schemas" json:"schemas"`
}

// DefaultSeed returns the built-in catalogs: ISO language, country, currency
// and time codes, record and security classifications, and a Dublin Core
// schema
func DefaultSeed() Seed {
	seed, err := ParseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}
	return seed
}

// LoadSeed reads a seed from a YAML file
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes a YAML seed document. Unknown fields are rejected; an
// empty document is an empty seed.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, err
	}
	return seed, nil
}

// Merge appends other's entries to s
func (s Seed) Merge(other Seed) Seed {
	return Seed{
		EncodingSchemes:        append(append([]EncodingScheme{}, s.EncodingSchemes...), other.EncodingSchemes...),
		ControlledVocabularies: append(append([]ControlledVocabulary{}, s.ControlledVocabularies...), other.ControlledVocabularies...),
		Schemas:                append(append([]Schema{}, s.Schemas...), other.Schemas...),
	}
}
