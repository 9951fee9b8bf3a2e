package handlers

import (
	"net/http"

	"github.com/metaschema/registry/internal/registry"
)

// DependentsResponse lists the schemas that reference an ID
type DependentsResponse struct {
	ID         string   `json:"id"`
	Dependents []string `json:"dependents"`
}

// RegisterSchema handles POST /api/v1/schemas
func (h *Handlers) RegisterSchema(w http.ResponseWriter, r *http.Request) {
	var s registry.Schema
	if err := h.decode(w, r, &s); err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.RegisterSchema(r.Context(), &s)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// ListSchemas handles GET /api/v1/schemas
func (h *Handlers) ListSchemas(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.registry.ListSchemas(r.Context()))
}

// ValidateSchema handles POST /api/v1/schemas/validate. The candidate is
// checked against the current catalogs without being stored.
func (h *Handlers) ValidateSchema(w http.ResponseWriter, r *http.Request) {
	var s registry.Schema
	if err := h.decode(w, r, &s); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, h.registry.ValidateSchema(r.Context(), &s))
}

// GetSchema handles GET /api/v1/schemas/{id}
func (h *Handlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	s, ok := h.registry.GetSchema(r.Context(), id)
	if !ok {
		writeError(w, h.log, registry.NotFoundError{Kind: registry.KindSchema, ID: id})
		return
	}
	writeData(w, http.StatusOK, s)
}

// UpdateSchema handles PATCH /api/v1/schemas/{id}
func (h *Handlers) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var update registry.SchemaUpdate
	if err := h.decode(w, r, &update); err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.UpdateSchema(r.Context(), id, update)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// DeleteSchema handles DELETE /api/v1/schemas/{id}
func (h *Handlers) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.DeleteSchema(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// Dependents handles GET /api/v1/schemas/{id}/dependents
func (h *Handlers) Dependents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, DependentsResponse{ID: id, Dependents: h.registry.Dependents(r.Context(), id)})
}

// ValidateRecord handles POST /api/v1/schemas/{id}/records/validate
func (h *Handlers) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var record map[string]interface{}
	if err := h.decode(w, r, &record); err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := h.registry.ValidateRecord(r.Context(), id, record)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// ApplyDefaults handles POST /api/v1/schemas/{id}/records/defaults
func (h *Handlers) ApplyDefaults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	var record map[string]interface{}
	if err := h.decode(w, r, &record); err != nil {
		writeError(w, h.log, err)
		return
	}

	filled, err := h.registry.ApplyDefaults(r.Context(), id, record)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, filled)
}
