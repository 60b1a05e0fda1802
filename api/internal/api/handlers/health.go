package handlers

import (
	"net/http"
	"time"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// timestampLayout is ISO-8601 with millisecond precision, always in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type HealthHandler struct {
	crypto domain.CryptoService
	now    func() time.Time
}

func NewHealthHandler(crypto domain.CryptoService) *HealthHandler {
	return &HealthHandler{crypto: crypto, now: time.Now}
}

type healthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Encryption string `json:"encryption"`
}

// Check handles GET /api/health. It never touches the key or the cipher state.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Timestamp:  h.now().UTC().Format(timestampLayout),
		Encryption: h.crypto.Algorithm(),
	})
}

type indexResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index handles GET / with a short description of the API surface.
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Status:  "active",
		Message: "Decryption API is running",
		Endpoints: map[string]string{
			"health":       "GET /api/health",
			"encrypt":      "POST /api/encrypt",
			"decrypt":      "POST /api/decrypt",
			"decryptBatch": "POST /api/decrypt/batch",
			"websocket":    "GET /api/ws",
		},
	})
}
