package test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/metaschema/registry/internal/registry"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// FixedTime is the clock used by registries built with NewRegistry
var FixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Clock returns FixedTime
func Clock() time.Time {
	return FixedTime
}

// NewRegistry creates a registry loaded with the default seed and a fixed
// clock. Additional options are applied after the defaults.
func NewRegistry(t *testing.T, opts ...registry.Option) *registry.Registry {
	t.Helper()
	opts = append([]registry.Option{
		registry.WithSeed(registry.DefaultSeed()),
		registry.WithClock(Clock),
	}, opts...)
	r, err := registry.New(opts...)
	require.NoError(t, err)
	return r
}

// SampleSchema returns a schema that validates against the default seed.
// It references the language and country schemes and the security
// classification vocabulary.
func SampleSchema(id string) *registry.Schema {
	maxTitle := 200
	return &registry.Schema{
		ID:          id,
		Name:        "Project Record",
		Version:     "1.0.0",
		Description: "Records describing a project deliverable",
		Elements: []registry.Element{
			{ID: "identifier", Name: "Identifier", DataType: registry.DataTypeText, Obligation: registry.ObligationMandatory, Pattern: "^PRJ-[0-9]+$"},
			{ID: "title", Name: "Title", DataType: registry.DataTypeText, Obligation: registry.ObligationMandatory, MaxLength: &maxTitle},
			{ID: "language", Name: "Language", DataType: registry.DataTypeText, EncodingScheme: "iso-639-1", DefaultValue: "en"},
			{ID: "country", Name: "Country", DataType: registry.DataTypeText, EncodingScheme: "iso-3166-1-alpha-2"},
			{ID: "budget", Name: "Budget", DataType: registry.DataTypeNumber},
			{ID: "keywords", Name: "Keywords", DataType: registry.DataTypeText, Repeatability: registry.RepeatabilityRepeatable},
			{ID: "security_classification", Name: "Security Classification", DataType: registry.DataTypeEnumerated, ControlledVocabulary: "security-classification"},
		},
		ElementGroups: []registry.ElementGroup{
			{ID: "core", Name: "Core", Elements: []string{"identifier", "title"}},
		},
		EncodingSchemes:        []string{"iso-639-1", "iso-3166-1-alpha-2"},
		ControlledVocabularies: []string{"security-classification"},
		ValidationRules: []registry.ValidationRule{
			{Name: "budget positive", Type: registry.RuleTypeExpression, Expression: "budget == null || budget > 0"},
		},
	}
}

// WriteYAML marshals v into a file under a temporary directory and
// returns its path
func WriteYAML(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := yaml.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(TempDir(t), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// TempDir creates a temporary directory for testing and returns its path.
// The directory is automatically cleaned up after the test.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "metaregistry-test-*")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir) // Ignore cleanup errors in tests
	})
	return dir
}
