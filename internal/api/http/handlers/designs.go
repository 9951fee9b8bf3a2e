package handlers

import (
	"net/http"
	"strconv"

	"github.com/metaschema/registry/internal/designer"
	"github.com/metaschema/registry/internal/registry"
)

// DesignResponse carries a drafted schema and, when it was registered,
// the registration receipt
type DesignResponse struct {
	Schema  *registry.Schema  `json:"schema"`
	Receipt *registry.Receipt `json:"receipt,omitempty"`
}

// DesignSchema handles POST /api/v1/designs. With register=true the draft
// is registered as well.
func (h *Handlers) DesignSchema(w http.ResponseWriter, r *http.Request) {
	var req designer.Requirements
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	s := h.designer.DesignSchema(r.Context(), req)

	if register, _ := strconv.ParseBool(r.URL.Query().Get("register")); !register {
		writeData(w, http.StatusOK, DesignResponse{Schema: s})
		return
	}

	receipt, err := h.registry.RegisterSchema(r.Context(), s)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	stored, _ := h.registry.GetSchema(r.Context(), s.ID)
	writeData(w, http.StatusCreated, DesignResponse{Schema: stored, Receipt: receipt})
}
