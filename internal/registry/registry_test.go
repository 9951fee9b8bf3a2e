package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func languageScheme() *EncodingScheme {
	return &EncodingScheme{
		ID:      "iso-639-1",
		Name:    "ISO 639-1",
		Type:    SchemeTypeLanguage,
		Version: "2002",
		Values:  []SchemeValue{{Value: "en", Label: "English"}, {Value: "es", Label: "Spanish"}},
	}
}

func securityVocabulary() *ControlledVocabulary {
	return &ControlledVocabulary{
		ID:   "security",
		Name: "Security",
		Type: VocabularyTypeSecurity,
		Terms: []Term{
			{ID: "public", Label: "Public"},
			{ID: "internal", Label: "Internal"},
		},
	}
}

func basicSchema(id string) *Schema {
	return &Schema{
		ID:      id,
		Name:    "Basic " + id,
		Version: "1.0.0",
		Elements: []Element{
			{ID: "title", Name: "Title", DataType: DataTypeText, Obligation: ObligationMandatory},
		},
	}
}

func TestRegisterSchema(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	receipt, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)
	assert.Equal(t, "s1", receipt.ID)
	assert.Equal(t, "1.0.0", receipt.Version)
	assert.Equal(t, fixedNow, receipt.RegisteredAt)

	got, ok := r.GetSchema(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, fixedNow, got.RegisteredAt)
	assert.Equal(t, fixedNow, got.LastModified)
}

func TestRegisterSchema_DefaultVersion(t *testing.T) {
	r := setupTestRegistry(t)
	s := basicSchema("s1")
	s.Version = ""

	receipt, err := r.RegisterSchema(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, receipt.Version)
}

func TestRegisterSchema_Duplicate(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)

	_, err = r.RegisterSchema(ctx, basicSchema("s1"))
	require.Error(t, err)
	var dup DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "s1", dup.ID)
	assert.Contains(t, err.Error(), "already exists")

	// allowed again once deleted
	_, err = r.DeleteSchema(ctx, "s1")
	require.NoError(t, err)
	_, err = r.RegisterSchema(ctx, basicSchema("s1"))
	assert.NoError(t, err)
}

func TestRegisterSchema_ConcurrentUniqueness(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.RegisterSchema(ctx, basicSchema("contended"))
			mu.Lock()
			defer mu.Unlock()
			var dup DuplicateIDError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &dup):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, dupes)
}

func TestDeleteVocabulary_ConcurrentReferencingRegistration(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		r := setupTestRegistry(t)
		_, err := r.RegisterControlledVocabulary(ctx, securityVocabulary())
		require.NoError(t, err)

		referencing := basicSchema("B")
		referencing.ControlledVocabularies = []string{"security"}

		var (
			wg          sync.WaitGroup
			deleteErr   error
			registerErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, deleteErr = r.DeleteControlledVocabulary(ctx, "security")
		}()
		go func() {
			defer wg.Done()
			_, registerErr = r.RegisterSchema(ctx, referencing)
		}()
		wg.Wait()

		var (
			dep     DependencyError
			invalid ValidationError
		)
		switch {
		case deleteErr == nil:
			require.True(t, errors.As(registerErr, &invalid), "registration must fail once the vocabulary is gone: %v", registerErr)
			_, ok := r.GetSchema(ctx, "B")
			assert.False(t, ok)
		case registerErr == nil:
			require.True(t, errors.As(deleteErr, &dep), "delete must be blocked by the new schema: %v", deleteErr)
			assert.Equal(t, []string{"B"}, dep.Dependents)
			_, ok := r.GetControlledVocabulary(ctx, "security")
			assert.True(t, ok)
		default:
			t.Fatalf("both operations failed: delete=%v register=%v", deleteErr, registerErr)
		}
	}
}

func TestUpdateSchema_ConcurrentLastWriterWins(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		versions = make(map[string]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("name-%d", i)
			desc := fmt.Sprintf("description-%d", i)
			receipt, err := r.UpdateSchema(ctx, "s1", SchemaUpdate{Name: &name, Description: &desc})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			versions[receipt.Version] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// each update saw a distinct predecessor
	assert.Len(t, versions, workers)

	got, ok := r.GetSchema(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("1.0.%d", workers), got.Version)
	assert.True(t, versions[got.Version])

	// name and description come from the same update
	suffix := strings.TrimPrefix(got.Name, "name-")
	assert.Equal(t, "description-"+suffix, got.Description)
}

func TestRegister_RejectsMalformedIDs(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterSchema(ctx, basicSchema("dc:core"))
	var invalid ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Errors, `schema ID "dc:core" contains invalid character :`)

	_, err = r.RegisterSchema(ctx, basicSchema(strings.Repeat("a", MaxIDLength+1)))
	assert.ErrorContains(t, err, "exceeds 128 characters")

	_, err = r.RegisterEncodingScheme(ctx, &EncodingScheme{ID: "a/b", Name: "AB", Values: []SchemeValue{{Value: "x"}}})
	assert.ErrorContains(t, err, `encoding scheme ID "a/b" contains invalid character /`)

	_, err = r.RegisterControlledVocabulary(ctx, &ControlledVocabulary{ID: "é", Name: "E", Terms: []Term{{ID: "t", Label: "T"}}})
	assert.ErrorContains(t, err, "contains invalid character é")

	assert.Empty(t, r.ListSchemas(ctx))
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, CheckID("iso-639-1"))
	assert.NoError(t, CheckID("Dublin_Core.v2"))
	assert.NoError(t, CheckID(strings.Repeat("a", MaxIDLength)))
	assert.EqualError(t, CheckID(""), "cannot be empty")
	assert.EqualError(t, CheckID("a b"), "contains invalid character  ")
}

func TestRegisterSchema_ReferentialIntegrity(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	s := basicSchema("s1")
	s.EncodingSchemes = []string{"iso-639-1"}

	_, err := r.RegisterSchema(ctx, s)
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Errors, "encoding scheme iso-639-1 not found")
	_, ok := r.GetSchema(ctx, "s1")
	assert.False(t, ok)

	_, err = r.RegisterEncodingScheme(ctx, languageScheme())
	require.NoError(t, err)

	_, err = r.RegisterSchema(ctx, s)
	assert.NoError(t, err)
}

func TestValidateSchema_Aggregation(t *testing.T) {
	r := setupTestRegistry(t)

	s := &Schema{
		ID:              "s1",
		Name:            "S1",
		Elements:        []Element{{ID: "e1", DataType: DataTypeText}},
		EncodingSchemes: []string{"unregistered"},
	}

	res := r.ValidateSchema(context.Background(), s)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "element e1: name is required")
	assert.Contains(t, res.Errors, "encoding scheme unregistered not found")
	assert.Len(t, res.Errors, 2)
}

func TestValidateSchema_StructuralChecks(t *testing.T) {
	r := setupTestRegistry(t)
	zero, five, ten := 0, 5, 10

	tests := []struct {
		name   string
		mutate func(s *Schema)
		want   string
	}{
		{"missing id", func(s *Schema) { s.ID = "" }, "schema ID is required"},
		{"missing name", func(s *Schema) { s.Name = "" }, "schema name is required"},
		{"bad version", func(s *Schema) { s.Version = "1.0" }, `version "1.0" must be major.minor.patch`},
		{"missing data type", func(s *Schema) { s.Elements[0].DataType = "" }, "element title: data type is required"},
		{"unknown data type", func(s *Schema) { s.Elements[0].DataType = "blob" }, `element title: unknown data type "blob"`},
		{"zero max length", func(s *Schema) { s.Elements[0].MaxLength = &zero }, "element title: max length must be positive"},
		{"min over max", func(s *Schema) { s.Elements[0].MinLength = &ten; s.Elements[0].MaxLength = &five }, "element title: min length exceeds max length"},
		{"duplicate element", func(s *Schema) { s.Elements = append(s.Elements, s.Elements[0]) }, "element title: duplicate element ID"},
		{"empty group", func(s *Schema) { s.ElementGroups = []ElementGroup{{ID: "g", Name: "G"}} }, "element group g: must contain at least one element"},
		{"missing vocabulary", func(s *Schema) { s.ControlledVocabularies = []string{"nope"} }, "controlled vocabulary nope not found"},
		{"element scheme ref", func(s *Schema) { s.Elements[0].EncodingScheme = "nope" }, "element title: encoding scheme nope not found"},
		{
			"unparseable rule",
			func(s *Schema) {
				s.ValidationRules = []ValidationRule{{Name: "r1", Type: RuleTypeExpression, Expression: "title =="}}
			},
			"validation rule r1: unexpected end of expression",
		},
		{
			"conditional without condition",
			func(s *Schema) {
				s.ObligationLevels = []ObligationLevel{{Element: "title", Level: ObligationConditional}}
			},
			"conditional obligation for title requires a condition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := basicSchema("s1")
			tt.mutate(s)
			res := r.ValidateSchema(context.Background(), s)
			assert.False(t, res.Valid)
			assert.Contains(t, res.Errors, tt.want)
		})
	}
}

func TestGetSchema_IdempotentRead(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)

	first, ok := r.GetSchema(ctx, "s1")
	require.True(t, ok)
	second, ok := r.GetSchema(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, first, second)

	// returned values are copies
	first.Elements[0].Name = "changed"
	third, _ := r.GetSchema(ctx, "s1")
	assert.Equal(t, "Title", third.Elements[0].Name)

	_, ok = r.GetSchema(ctx, "missing")
	assert.False(t, ok)
}

func TestUpdateSchema_VersionMonotonicity(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)

	name := "Renamed"
	receipt, err := r.UpdateSchema(ctx, "s1", SchemaUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", receipt.Version)

	// a no-op update still bumps the patch version
	receipt, err = r.UpdateSchema(ctx, "s1", SchemaUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", receipt.Version)

	got, _ := r.GetSchema(ctx, "s1")
	assert.Equal(t, "1.0.2", got.Version)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Elements, 1, "unset fields are unchanged")
}

func TestUpdateSchema_InvalidLeavesStoredSchema(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterSchema(ctx, basicSchema("s1"))
	require.NoError(t, err)

	_, err = r.UpdateSchema(ctx, "s1", SchemaUpdate{EncodingSchemes: []string{"missing"}})
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "s1", verr.ID)

	got, _ := r.GetSchema(ctx, "s1")
	assert.Equal(t, "1.0.0", got.Version)
	assert.Empty(t, got.EncodingSchemes)
}

func TestUpdateSchema_NotFound(t *testing.T) {
	r := setupTestRegistry(t)
	_, err := r.UpdateSchema(context.Background(), "missing", SchemaUpdate{})
	var nf NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, KindSchema, nf.Kind)
}

func TestUpdateSchema_EmptySliceClears(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterEncodingScheme(ctx, languageScheme())
	require.NoError(t, err)

	s := basicSchema("s1")
	s.EncodingSchemes = []string{"iso-639-1"}
	_, err = r.RegisterSchema(ctx, s)
	require.NoError(t, err)

	_, err = r.UpdateSchema(ctx, "s1", SchemaUpdate{EncodingSchemes: []string{}})
	require.NoError(t, err)

	got, _ := r.GetSchema(ctx, "s1")
	assert.Empty(t, got.EncodingSchemes)
}

func TestDeleteSchema_DependencyBlocked(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	// A is both a vocabulary and a schema; B lists A among its vocabularies
	_, err := r.RegisterControlledVocabulary(ctx, &ControlledVocabulary{
		ID: "A", Name: "A", Terms: []Term{{ID: "t", Label: "T"}},
	})
	require.NoError(t, err)
	_, err = r.RegisterSchema(ctx, basicSchema("A"))
	require.NoError(t, err)

	b := basicSchema("B")
	b.ControlledVocabularies = []string{"A"}
	_, err = r.RegisterSchema(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, r.Dependents(ctx, "A"))

	_, err = r.DeleteSchema(ctx, "A")
	var dep DependencyError
	require.True(t, errors.As(err, &dep))
	assert.Equal(t, []string{"B"}, dep.Dependents)
	_, ok := r.GetSchema(ctx, "A")
	assert.True(t, ok, "blocked deletion must not mutate")

	_, err = r.DeleteSchema(ctx, "B")
	require.NoError(t, err)
	receipt, err := r.DeleteSchema(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", receipt.ID)
	assert.Equal(t, fixedNow, receipt.DeletedAt)
}

func TestDeleteSchema_NotFound(t *testing.T) {
	r := setupTestRegistry(t)
	_, err := r.DeleteSchema(context.Background(), "missing")
	assert.IsType(t, NotFoundError{}, err)
}

func TestScenario_LanguageSchemeAndSchema(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterEncodingScheme(ctx, languageScheme())
	require.NoError(t, err)

	s1 := basicSchema("S1")
	s1.EncodingSchemes = []string{"iso-639-1"}
	_, err = r.RegisterSchema(ctx, s1)
	require.NoError(t, err)

	stored, ok := r.GetSchema(ctx, "S1")
	require.True(t, ok)
	assert.True(t, r.ValidateSchema(ctx, stored).Valid)

	_, err = r.DeleteSchema(ctx, "S1")
	assert.NoError(t, err)
}

func TestEncodingSchemes(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	receipt, err := r.RegisterEncodingScheme(ctx, languageScheme())
	require.NoError(t, err)
	assert.Equal(t, "2002", receipt.Version)

	_, err = r.RegisterEncodingScheme(ctx, languageScheme())
	assert.IsType(t, DuplicateIDError{}, err)

	_, err = r.RegisterEncodingScheme(ctx, &EncodingScheme{ID: "bad", Values: []SchemeValue{{Value: ""}}})
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Errors, "encoding scheme name is required")
	assert.Contains(t, verr.Errors, "value #0: value is required")

	list := r.ListEncodingSchemes(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ValueCount)

	got, ok := r.GetEncodingScheme(ctx, "iso-639-1")
	require.True(t, ok)
	got.Values[0].Value = "xx"
	again, _ := r.GetEncodingScheme(ctx, "iso-639-1")
	assert.Equal(t, "en", again.Values[0].Value)
}

func TestDeleteEncodingScheme_Guarded(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	_, err := r.RegisterEncodingScheme(ctx, languageScheme())
	require.NoError(t, err)

	s := basicSchema("s1")
	s.Elements = append(s.Elements, Element{
		ID: "language", Name: "Language", DataType: DataTypeText, EncodingScheme: "iso-639-1",
	})
	_, err = r.RegisterSchema(ctx, s)
	require.NoError(t, err)

	_, err = r.DeleteEncodingScheme(ctx, "iso-639-1")
	var dep DependencyError
	require.True(t, errors.As(err, &dep))
	assert.Equal(t, []string{"s1"}, dep.Dependents)

	_, err = r.DeleteSchema(ctx, "s1")
	require.NoError(t, err)
	_, err = r.DeleteEncodingScheme(ctx, "iso-639-1")
	require.NoError(t, err)

	_, err = r.DeleteEncodingScheme(ctx, "iso-639-1")
	assert.IsType(t, NotFoundError{}, err)
}

func TestDeleteGuard_MatchesReferenceKind(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	// a scheme and a vocabulary share the ID "shared"
	_, err := r.RegisterEncodingScheme(ctx, &EncodingScheme{
		ID: "shared", Name: "Shared", Values: []SchemeValue{{Value: "x"}},
	})
	require.NoError(t, err)
	_, err = r.RegisterControlledVocabulary(ctx, &ControlledVocabulary{
		ID: "shared", Name: "Shared", Terms: []Term{{ID: "t", Label: "T"}},
	})
	require.NoError(t, err)

	s := basicSchema("s1")
	s.Elements = append(s.Elements, Element{
		ID: "level", Name: "Level", DataType: DataTypeEnumerated, ControlledVocabulary: "shared",
	})
	_, err = r.RegisterSchema(ctx, s)
	require.NoError(t, err)

	_, err = r.DeleteControlledVocabulary(ctx, "shared")
	var dep DependencyError
	require.True(t, errors.As(err, &dep))
	assert.Equal(t, []string{"s1"}, dep.Dependents)

	// the vocabulary reference does not pin the scheme
	_, err = r.DeleteEncodingScheme(ctx, "shared")
	assert.NoError(t, err)
}

func TestControlledVocabularies(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterControlledVocabulary(ctx, securityVocabulary())
	require.NoError(t, err)

	_, err = r.RegisterControlledVocabulary(ctx, &ControlledVocabulary{ID: "empty", Name: "Empty"})
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Errors, "controlled vocabulary must define at least one term")

	list := r.ListControlledVocabularies(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TermCount)

	s := basicSchema("s1")
	s.ControlledVocabularies = []string{"security"}
	_, err = r.RegisterSchema(ctx, s)
	require.NoError(t, err)

	_, err = r.DeleteControlledVocabulary(ctx, "security")
	assert.IsType(t, DependencyError{}, err)
}

func TestListSchemas_RegistrationOrder(t *testing.T) {
	r := setupTestRegistry(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := r.RegisterSchema(ctx, basicSchema(id))
		require.NoError(t, err)
	}

	list := r.ListSchemas(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "b", list[2].ID)
	assert.Equal(t, 1, list[0].ElementCount)
}

func TestNew_DefaultSeed(t *testing.T) {
	r := setupTestRegistry(t, WithSeed(DefaultSeed()))

	stats := r.Stats()
	assert.Equal(t, 4, stats.EncodingSchemes)
	assert.Equal(t, 2, stats.ControlledVocabularies)
	assert.Equal(t, 1, stats.Schemas)

	dc, ok := r.GetSchema(context.Background(), "dublin-core-basic")
	require.True(t, ok)
	assert.Len(t, dc.Elements, 15)
}

func TestNew_InvalidSeed(t *testing.T) {
	seed := Seed{Schemas: []Schema{{ID: "s", Name: "S", EncodingSchemes: []string{"missing"}}}}
	_, err := New(WithSeed(seed))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to load seed"))
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
encoding_schemes:
  - id: colors
    name: Colors
    type: custom-codes
    values:
      - value: red
      - value: blue
`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.EncodingSchemes, 1)
	assert.Equal(t, SchemeTypeCustom, seed.EncodingSchemes[0].Type)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("schemas:\n  - id: x\n    colour: red\n"), 0o644))
	_, err = LoadSeed(bad)
	assert.Error(t, err)

	_, err = LoadSeed(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
