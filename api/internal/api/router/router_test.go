package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/handlers"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/services"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/infrastructure/crypto"
)

func newTestRouter(t *testing.T, origins []string) http.Handler {
	t.Helper()

	svc, err := crypto.NewAESCryptoService(crypto.DeriveKey())
	require.NoError(t, err)

	logger := zerolog.Nop()
	return NewRouter(RouterConfig{
		AllowedOrigins: origins,
		MaxBodyBytes:   1024,
		RequestTimeout: 5 * time.Second,
		CipherHandler:  handlers.NewCipherHandler(svc, services.NewBatchService(svc, logger, 4)),
		HealthHandler:  handlers.NewHealthHandler(svc),
		WSHandler:      handlers.NewWebSocketHandler(svc, logger, origins, 1024),
		Logger:         logger,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRouter_EndToEnd(t *testing.T) {
	r := newTestRouter(t, []string{"*"})

	rec, health := do(t, r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AES-256-GCM", health["encryption"])

	rec, enc := do(t, r, http.MethodPost, "/api/encrypt", `{"data":{"a":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := json.Marshal(map[string]any{"data": enc["data"], "iv": enc["iv"]})
	rec, dec := do(t, r, http.MethodPost, "/api/decrypt", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"a": float64(1)}, dec["data"])

	batch := `{"items":[` + string(body) + `,` + string(body) + `]}`
	rec, out := do(t, r, http.MethodPost, "/api/decrypt/batch", batch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), out["successful"])

	rec, index := do(t, r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", index["status"])
}

func TestRouter_JSONErrorContract(t *testing.T) {
	r := newTestRouter(t, []string{"*"})

	rec, out := do(t, r, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, out = do(t, r, http.MethodGet, "/api/encrypt", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, false, out["success"])

	big := `{"data":"` + strings.Repeat("x", 2048) + `"}`
	rec, out = do(t, r, http.MethodPost, "/api/encrypt", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", out["error"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, []string{"https://app.example"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/encrypt", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_WebSocketSession(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, []string{"*"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer ws.Close()

	exchange := func(frame string) map[string]any {
		t.Helper()
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))
		ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err)

		var reply map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(msg), &reply))
		return reply
	}

	enc := exchange(`{"id":1,"op":"encrypt","data":{"msg":"<hi>"}}`)
	require.Equal(t, true, enc["success"])
	assert.Equal(t, float64(1), enc["id"])

	frame, _ := json.Marshal(map[string]any{"id": "two", "op": "decrypt", "data": enc["data"], "iv": enc["iv"]})
	dec := exchange(string(frame))
	require.Equal(t, true, dec["success"])
	assert.Equal(t, "two", dec["id"])
	assert.Equal(t, map[string]any{"msg": "<hi>"}, dec["data"])

	// Bad frames fail alone; the session stays usable.
	bad := exchange(`not json`)
	assert.Equal(t, false, bad["success"])
	assert.Equal(t, "Invalid JSON payload", bad["error"])

	unknown := exchange(`{"id":3,"op":"rotate"}`)
	assert.Equal(t, false, unknown["success"])
	assert.Contains(t, unknown["error"], "Unsupported op")

	missing := exchange(`{"id":4,"op":"decrypt","data":"AAAA"}`)
	assert.Equal(t, false, missing["success"])
	assert.Equal(t, "Missing required fields: data and iv", missing["error"])

	again := exchange(`{"id":5,"op":"encrypt","data":0}`)
	assert.Equal(t, true, again["success"])
}

func TestRouter_WebSocketRejectsForeignOrigin(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, []string{"https://app.example"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
