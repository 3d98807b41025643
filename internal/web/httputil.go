package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/library"
	"github.com/pchoi/fitswap/internal/swap"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps pipeline errors to HTTP statuses: caller mistakes
// (bad input, unreadable assets) are 400, everything downstream is 500 with
// the underlying detail preserved for diagnostics.
func respondDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, swap.ErrInvalidRequest), errors.Is(err, imaging.ErrAssetUnavailable):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, library.ErrNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg(message)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   message,
			"details": err.Error(),
		})
	}
}
