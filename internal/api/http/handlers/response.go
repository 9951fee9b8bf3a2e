package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/metaschema/registry/internal/api/validation"
	"github.com/metaschema/registry/internal/projection"
	"github.com/metaschema/registry/internal/registry"
	"github.com/rs/zerolog"
)

// Response is the envelope of every API response
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Dependents []string    `json:"dependents,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Failed to encode response, but the status code is already written
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// writeError maps domain errors onto HTTP statuses
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		invalid     registry.ValidationError
		duplicate   registry.DuplicateIDError
		notFound    registry.NotFoundError
		dependency  registry.DependencyError
		unsupported projection.UnsupportedTargetError
		badRequest  validation.ValidationError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, Response{Error: err.Error(), Errors: invalid.Errors})
	case errors.As(err, &duplicate):
		writeJSON(w, http.StatusConflict, Response{Error: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, Response{Error: err.Error()})
	case errors.As(err, &dependency):
		writeJSON(w, http.StatusConflict, Response{Error: err.Error(), Dependents: dependency.Dependents})
	case errors.As(err, &unsupported), errors.As(err, &badRequest):
		writeJSON(w, http.StatusBadRequest, Response{Error: err.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, Response{Error: "request body too large"})
	default:
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, Response{Error: "internal server error"})
	}
}

// decode reads a JSON body into v, rejecting unknown fields
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return validation.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

// pathID returns the validated {id} path value
func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if err := validation.ValidateID("id", id); err != nil {
		return "", err
	}
	return id, nil
}
