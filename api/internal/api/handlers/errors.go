package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// HandleError maps a core failure onto the HTTP boundary: validation problems
// are the caller's (400), everything else is a failed operation (500).
func HandleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	if kind == domain.KindValidation {
		status = http.StatusBadRequest
	}

	hlog.FromRequest(r).Warn().
		Err(err).
		Str("op", op).
		Str("kind", string(kind)).
		Msg("Cipher operation failed")

	writeError(w, status, domain.Describe(op, err))
}

// NotFound and MethodNotAllowed keep unknown routes on the JSON contract.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
