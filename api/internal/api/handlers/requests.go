package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// json_present rejects an explicit JSON null, which `required` lets through.
	_ = v.RegisterValidation("json_present", func(fl validator.FieldLevel) bool {
		raw, ok := fl.Field().Interface().(json.RawMessage)
		if !ok {
			return false
		}
		trimmed := bytes.TrimSpace(raw)
		return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
	})
	return v
}

// ==============================================================================
// 1. Request Payloads (Input Validation)
// ==============================================================================

type EncryptRequest struct {
	Data json.RawMessage `json:"data" validate:"required,json_present"`
}

type DecryptRequest struct {
	Data string `json:"data" validate:"required"`
	IV   string `json:"iv" validate:"required"`
}

func (r DecryptRequest) Envelope() *domain.Envelope {
	return &domain.Envelope{Data: r.Data, IV: r.IV}
}

// BatchDecryptRequest keeps items raw so one malformed entry fails alone
// instead of rejecting the whole batch.
type BatchDecryptRequest struct {
	Items []json.RawMessage `json:"items" validate:"required"`
}

func (r BatchDecryptRequest) Envelopes() []domain.Envelope {
	envs := make([]domain.Envelope, len(r.Items))
	for i, raw := range r.Items {
		// A non-object item stays zero-valued and is reported as missing its fields.
		_ = json.Unmarshal(raw, &envs[i])
	}
	return envs
}

const (
	msgMissingData     = "Missing required field: data"
	msgMissingEnvelope = "Missing required fields: data and iv"
	msgMissingItems    = "Missing required field: items (must be an array)"
	msgInvalidJSON     = "Invalid JSON payload"
	msgBodyTooLarge    = "Request body too large"
)

// decodeJSON reads the body into dst. An empty body leaves dst zero-valued so
// the validator reports the missing fields. It returns false once a response
// has been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, typeErrMsg string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var (
		maxErr  *http.MaxBytesError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	case errors.As(err, &typeErr):
		writeError(w, http.StatusBadRequest, typeErrMsg)
	default:
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
	}
	return false
}
