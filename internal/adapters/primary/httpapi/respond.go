package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jupiterclapton/skylark/internal/core/domain"
)

// Enveloppe de réponse, alignée sur ce que le front attend :
// un couple success/error + éventuellement des raisons champ par champ.
type envelope struct {
	Success bool              `json:"success"`
	Error   bool              `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    any               `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, nil)
}

// respondError traduit la taxonomie du domaine en statuts HTTP.
// Tout le reste est un 500 opaque : on logge le détail, on ne le renvoie pas.
func respondError(w http.ResponseWriter, err error) {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		writeFailure(w, http.StatusUnprocessableEntity, fields)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeFailure(w, http.StatusUnauthorized, nil)
	case errors.Is(err, domain.ErrActorNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrEdgeNotFound):
		writeFailure(w, http.StatusNotFound, nil)
	case errors.Is(err, domain.ErrSelfFollow),
		errors.Is(err, domain.ErrInvalidReference):
		writeFailure(w, http.StatusBadRequest, nil)
	default:
		slog.Error("Request failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, nil)
	}
}

func writeFailure(w http.ResponseWriter, status int, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: true, Fields: fields})
}
