package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/api/http/handlers"
	"github.com/metaschema/registry/internal/api/http/middleware"
	"github.com/metaschema/registry/internal/designer"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/projection"
	"github.com/metaschema/registry/internal/registry"
	"github.com/metaschema/registry/internal/test"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Errors     []string        `json:"errors"`
	Dependents []string        `json:"dependents"`
}

func setupRouter(t *testing.T) (*Router, *registry.Registry) {
	t.Helper()
	r := test.NewRegistry(t)
	h := handlers.New(r, projection.NewEngine(r, projection.WithClock(test.Clock)), designer.New(designer.WithClock(test.Clock)), 64*1024)
	return NewRouter(h, nil, func() bool { return true }), r
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestServer_StartStop(t *testing.T) {
	router, _ := setupRouter(t)
	server := NewServer("127.0.0.1:0", router)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Start(ctx))
	assert.True(t, server.Ready())

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Stop(ctx))
	assert.False(t, server.Ready())
}

func TestHealthAndReadiness(t *testing.T) {
	router, _ := setupRouter(t)

	w, _ := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w, _ = do(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	notReady := NewRouter(router.handlers, nil, func() bool { return false })
	w, _ = do(t, notReady, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not ready")
}

func TestSchemaLifecycle(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/schemas", test.SampleSchema("project"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	var receipt registry.Receipt
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, "project", receipt.ID)
	assert.Equal(t, "1.0.0", receipt.Version)

	w, env = do(t, router, http.MethodPost, "/api/v1/schemas", test.SampleSchema("project"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "already exists")

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/project", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var s registry.Schema
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Len(t, s.Elements, 7)

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []registry.SchemaSummary
	require.NoError(t, json.Unmarshal(env.Data, &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "dublin-core-basic", summaries[0].ID)
	assert.Equal(t, "project", summaries[1].ID)

	w, env = do(t, router, http.MethodPatch, "/api/v1/schemas/project", map[string]interface{}{"description": "Updated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var update registry.UpdateReceipt
	require.NoError(t, json.Unmarshal(env.Data, &update))
	assert.Equal(t, "1.0.1", update.Version)

	w, _ = do(t, router, http.MethodDelete, "/api/v1/schemas/project", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/project", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestRegisterSchema_Invalid(t *testing.T) {
	router, _ := setupRouter(t)

	bad := test.SampleSchema("broken")
	bad.Name = ""
	bad.EncodingSchemes = append(bad.EncodingSchemes, "no-such-scheme")

	w, env := do(t, router, http.MethodPost, "/api/v1/schemas", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "schema name is required")
	assert.Contains(t, env.Errors, "encoding scheme no-such-scheme not found")

	w, env = do(t, router, http.MethodPost, "/api/v1/schemas", `{"id": "x", "unknown_field": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "body")

	w, _ = do(t, router, http.MethodPost, "/api/v1/schemas", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/v1/schemas", `{"id":"`+strings.Repeat("a", 70*1024)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestValidateSchema_NoMutation(t *testing.T) {
	router, r := setupRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/schemas/validate", test.SampleSchema("candidate"))
	require.Equal(t, http.StatusOK, w.Code)
	var res registry.ValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Valid)

	_, ok := r.GetSchema(context.Background(), "candidate")
	assert.False(t, ok)
}

func TestDependencyBlockedDelete(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := do(t, router, http.MethodDelete, "/api/v1/encoding-schemes/iso-639-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, []string{"dublin-core-basic"}, env.Dependents)

	w, _ = do(t, router, http.MethodDelete, "/api/v1/vocabularies/no-such-vocab", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/iso-639-1/dependents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deps handlers.DependentsResponse
	require.NoError(t, json.Unmarshal(env.Data, &deps))
	assert.Equal(t, []string{"dublin-core-basic"}, deps.Dependents)
}

func TestCatalogEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	scheme := registry.EncodingScheme{
		ID:     "colors",
		Name:   "Colors",
		Type:   registry.SchemeTypeCustom,
		Values: []registry.SchemeValue{{Value: "red"}, {Value: "green"}},
	}
	w, _ := do(t, router, http.MethodPost, "/api/v1/encoding-schemes", scheme)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, router, http.MethodGet, "/api/v1/encoding-schemes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schemes []registry.EncodingSchemeSummary
	require.NoError(t, json.Unmarshal(env.Data, &schemes))
	assert.Len(t, schemes, 5)

	w, _ = do(t, router, http.MethodGet, "/api/v1/encoding-schemes/colors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, router, http.MethodDelete, "/api/v1/encoding-schemes/colors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, router, http.MethodGet, "/api/v1/encoding-schemes/colors", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	vocab := registry.ControlledVocabulary{
		ID:    "priority",
		Name:  "Priority",
		Terms: []registry.Term{{ID: "high", Label: "High"}, {ID: "low", Label: "Low"}},
	}
	w, _ = do(t, router, http.MethodPost, "/api/v1/vocabularies", vocab)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, env = do(t, router, http.MethodGet, "/api/v1/vocabularies/priority", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got registry.ControlledVocabulary
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got.Terms, 2)

	w, env = do(t, router, http.MethodGet, "/api/v1/vocabularies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vocabs []registry.ControlledVocabularySummary
	require.NoError(t, json.Unmarshal(env.Data, &vocabs))
	assert.Len(t, vocabs, 3)

	w, _ = do(t, router, http.MethodGet, "/api/v1/vocabularies/bad%20id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/schemas/dublin-core-basic/records/validate",
		map[string]interface{}{"identifier": "DOC-1", "language": "xx"})
	require.Equal(t, http.StatusOK, w.Code)
	var res registry.ValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	w, env = do(t, router, http.MethodPost, "/api/v1/schemas/dublin-core-basic/records/defaults",
		map[string]interface{}{"identifier": "DOC-1"})
	require.Equal(t, http.StatusOK, w.Code)
	var filled map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &filled))
	assert.Equal(t, "en", filled["language"])

	w, _ = do(t, router, http.MethodPost, "/api/v1/schemas/missing/records/validate", map[string]interface{}{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectionEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/render?format=XML", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rendering projection.Rendering
	require.NoError(t, json.Unmarshal(env.Data, &rendering))
	assert.Equal(t, projection.FormatXML, rendering.Format)
	assert.Contains(t, rendering.Body, `id="dublin-core-basic"`)

	w, _ = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/render?format=rdf&raw=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/turtle", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "mr:MetadataSchema")

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/render?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported format: pdf", env.Error)

	w, _ = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/render", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/docs?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "## Elements")

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/code?language=TypeScript", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var code handlers.CodeResponse
	require.NoError(t, json.Unmarshal(env.Data, &code))
	assert.Equal(t, "typescript", code.Target)
	assert.Contains(t, code.Code, "export interface")

	w, _ = do(t, router, http.MethodGet, "/api/v1/schemas/missing-id/code?language=TypeScript", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic/validation-code?framework=zod", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &code))
	assert.Contains(t, code.Code, "z.object")
}

func TestDesignEndpoint(t *testing.T) {
	router, r := setupRouter(t)
	req := designer.Requirements{
		Domain:                 "Finance",
		BusinessRequirements:   []string{"Track invoice currency"},
		ComplianceRequirements: []string{"Retention for records"},
	}

	w, env := do(t, router, http.MethodPost, "/api/v1/designs", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var draft handlers.DesignResponse
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, designer.SchemaID("Finance", test.FixedTime), draft.Schema.ID)
	assert.Nil(t, draft.Receipt)
	_, ok := r.GetSchema(context.Background(), draft.Schema.ID)
	assert.False(t, ok)

	w, env = do(t, router, http.MethodPost, "/api/v1/designs?register=true", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	require.NotNil(t, draft.Receipt)
	_, ok = r.GetSchema(context.Background(), draft.Schema.ID)
	assert.True(t, ok)
}

func TestRegisteredIDsAreAddressable(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/schemas", test.SampleSchema("dc:core"))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, env.Errors, `schema ID "dc:core" contains invalid character :`)

	scheme := registry.EncodingScheme{ID: "colors/v1", Name: "Colors", Values: []registry.SchemeValue{{Value: "red"}}}
	w, _ = do(t, router, http.MethodPost, "/api/v1/encoding-schemes", scheme)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	vocab := registry.ControlledVocabulary{ID: "prio rity", Name: "Priority", Terms: []registry.Term{{ID: "high", Label: "High"}}}
	w, _ = do(t, router, http.MethodPost, "/api/v1/vocabularies", vocab)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := designer.Requirements{Domain: "R&D Finance"}
	w, env = do(t, router, http.MethodPost, "/api/v1/designs?register=true", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var draft handlers.DesignResponse
	require.NoError(t, json.Unmarshal(env.Data, &draft))
	assert.Equal(t, "r-d-finance-metadata-schema-1709294400000", draft.Schema.ID)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w, _ = do(t, router, method, "/api/v1/schemas/"+draft.Schema.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	r := test.NewRegistry(t)
	collector := metrics.NewCollector()
	m := metrics.NewRegistryMetrics(collector)
	h := handlers.New(r, projection.NewEngine(r), designer.New(), 0)
	router := NewRouter(h, m, func() bool { return true })

	w, _ := do(t, router, http.MethodGet, "/api/v1/schemas/dublin-core-basic", nil)
	require.Equal(t, http.StatusOK, w.Code)

	families, err := collector.GetRegistry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == metrics.MetricAPIRequestsTotal {
			found = true
			for _, metric := range f.GetMetric() {
				for _, l := range metric.GetLabel() {
					if l.GetName() == metrics.LabelEndpoint {
						assert.Equal(t, "GET /api/v1/schemas/{id}", l.GetValue())
					}
				}
			}
		}
	}
	assert.True(t, found)
	assert.Equal(t, 1, testutil.CollectAndCount(collector.GetRegistry(), metrics.MetricAPIRequestsTotal))
}

func TestRecoveryMiddleware(t *testing.T) {
	chain := middleware.Chain(middleware.Recovery(zerolog.Nop()), middleware.RequestID())
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w, env := do(t, handler, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "internal server error", env.Error)
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
}
