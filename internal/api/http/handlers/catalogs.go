package handlers

import (
	"net/http"

	"github.com/metaschema/registry/internal/registry"
)

// RegisterEncodingScheme handles POST /api/v1/encoding-schemes
func (h *Handlers) RegisterEncodingScheme(w http.ResponseWriter, r *http.Request) {
	var scheme registry.EncodingScheme
	if err := h.decode(w, r, &scheme); err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.RegisterEncodingScheme(r.Context(), &scheme)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// ListEncodingSchemes handles GET /api/v1/encoding-schemes
func (h *Handlers) ListEncodingSchemes(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.registry.ListEncodingSchemes(r.Context()))
}

// GetEncodingScheme handles GET /api/v1/encoding-schemes/{id}
func (h *Handlers) GetEncodingScheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	scheme, ok := h.registry.GetEncodingScheme(r.Context(), id)
	if !ok {
		writeError(w, h.log, registry.NotFoundError{Kind: registry.KindEncodingScheme, ID: id})
		return
	}
	writeData(w, http.StatusOK, scheme)
}

// DeleteEncodingScheme handles DELETE /api/v1/encoding-schemes/{id}
func (h *Handlers) DeleteEncodingScheme(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.DeleteEncodingScheme(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// RegisterVocabulary handles POST /api/v1/vocabularies
func (h *Handlers) RegisterVocabulary(w http.ResponseWriter, r *http.Request) {
	var vocab registry.ControlledVocabulary
	if err := h.decode(w, r, &vocab); err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.RegisterControlledVocabulary(r.Context(), &vocab)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// ListVocabularies handles GET /api/v1/vocabularies
func (h *Handlers) ListVocabularies(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.registry.ListControlledVocabularies(r.Context()))
}

// GetVocabulary handles GET /api/v1/vocabularies/{id}
func (h *Handlers) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	vocab, ok := h.registry.GetControlledVocabulary(r.Context(), id)
	if !ok {
		writeError(w, h.log, registry.NotFoundError{Kind: registry.KindVocabulary, ID: id})
		return
	}
	writeData(w, http.StatusOK, vocab)
}

// DeleteVocabulary handles DELETE /api/v1/vocabularies/{id}
func (h *Handlers) DeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	receipt, err := h.registry.DeleteControlledVocabulary(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}
