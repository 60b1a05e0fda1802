package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type CipherHandler struct {
	Crypto domain.CryptoService
	Batch  domain.BatchDecrypter
}

func NewCipherHandler(crypto domain.CryptoService, batch domain.BatchDecrypter) *CipherHandler {
	return &CipherHandler{
		Crypto: crypto,
		Batch:  batch,
	}
}

type encryptResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	IV      string `json:"iv"`
}

type decryptResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type batchResponse struct {
	Success bool `json:"success"`
	*domain.BatchReport
}

// ==============================================================================
// 3. HTTP Methods
// ==============================================================================

// Encrypt handles POST /api/encrypt
func (h *CipherHandler) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if !decodeJSON(w, r, &req, msgMissingData) {
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingData)
		return
	}

	env, err := h.Crypto.Encrypt(r.Context(), req.Data)
	if err != nil {
		HandleError(w, r, "Encryption", err)
		return
	}

	writeJSON(w, http.StatusOK, encryptResponse{Success: true, Data: env.Data, IV: env.IV})
}

// Decrypt handles POST /api/decrypt
func (h *CipherHandler) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if !decodeJSON(w, r, &req, msgMissingEnvelope) {
		return
	}

	// 🛡️ Shape check happens before the cipher is ever touched
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingEnvelope)
		return
	}

	value, err := h.Crypto.Decrypt(r.Context(), req.Envelope())
	if err != nil {
		HandleError(w, r, "Decryption", err)
		return
	}

	writeJSON(w, http.StatusOK, decryptResponse{Success: true, Data: value})
}

// DecryptBatch handles POST /api/decrypt/batch
// Top-level success only means the batch was processed; per-item outcomes
// live in results and the successful count.
func (h *CipherHandler) DecryptBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchDecryptRequest
	if !decodeJSON(w, r, &req, msgMissingItems) {
		return
	}

	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingItems)
		return
	}

	report := h.Batch.DecryptBatch(r.Context(), req.Envelopes())

	hlog.FromRequest(r).Debug().
		Int("total", report.Total).
		Int("successful", report.Successful).
		Msg("Batch decrypt completed")

	writeJSON(w, http.StatusOK, batchResponse{Success: true, BatchReport: report})
}
