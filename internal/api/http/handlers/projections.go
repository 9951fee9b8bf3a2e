package handlers

import (
	"net/http"
	"strconv"

	"github.com/metaschema/registry/internal/api/validation"
	"github.com/metaschema/registry/internal/projection"
)

// CodeResponse carries a generated code skeleton
type CodeResponse struct {
	SchemaID string `json:"schema_id"`
	Target   string `json:"target"`
	Code     string `json:"code"`
}

// RenderSchema handles GET /api/v1/schemas/{id}/render?format=. With
// raw=true the rendering is written as-is with its own content type.
func (h *Handlers) RenderSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	q := r.URL.Query()
	if err := validation.ValidateTarget("format", q.Get("format")); err != nil {
		writeError(w, h.log, err)
		return
	}
	format, err := projection.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	out, err := h.engine.RenderSchema(r.Context(), id, format)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if raw, _ := strconv.ParseBool(q.Get("raw")); raw {
		w.Header().Set("Content-Type", out.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out.Body))
		return
	}
	writeData(w, http.StatusOK, out)
}

// RenderDocumentation handles GET /api/v1/schemas/{id}/docs. With
// format=markdown the page is returned as text/markdown.
func (h *Handlers) RenderDocumentation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	doc, err := h.engine.RenderDocumentation(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeData(w, http.StatusOK, doc)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc.Markdown()))
	default:
		writeError(w, h.log, projection.UnsupportedTargetError{Kind: "documentation format", Target: r.URL.Query().Get("format")})
	}
}

// GenerateImplementation handles GET /api/v1/schemas/{id}/code?language=
func (h *Handlers) GenerateImplementation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	param := r.URL.Query().Get("language")
	if err := validation.ValidateTarget("language", param); err != nil {
		writeError(w, h.log, err)
		return
	}
	language, err := projection.ParseLanguage(param)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	code, err := h.engine.GenerateImplementation(r.Context(), id, language)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, CodeResponse{SchemaID: id, Target: string(language), Code: code})
}

// GenerateValidation handles GET /api/v1/schemas/{id}/validation-code?framework=
func (h *Handlers) GenerateValidation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	param := r.URL.Query().Get("framework")
	if err := validation.ValidateTarget("framework", param); err != nil {
		writeError(w, h.log, err)
		return
	}
	framework, err := projection.ParseFramework(param)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	code, err := h.engine.GenerateValidation(r.Context(), id, framework)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, CodeResponse{SchemaID: id, Target: string(framework), Code: code})
}
