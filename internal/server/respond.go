// Package server wires the REST surface: JSON encoding, error-to-status
// mapping and the route table. All business rules live below it.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minhngo/storefront/internal/auth"
	"github.com/minhngo/storefront/internal/cart"
	"github.com/minhngo/storefront/internal/catalog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is an upstream failure and comes back as 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMissingSessionID),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrNotAuthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrBrandNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
