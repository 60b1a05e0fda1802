// api/internal/api/handlers/websocket.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// ==============================================================================
// 1. WebSocket Configuration & Constants
// ==============================================================================

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type WebSocketHandler struct {
	Crypto    domain.CryptoService
	Logger    zerolog.Logger
	upgrader  websocket.Upgrader
	readLimit int64
}

// NewWebSocketHandler builds the session handler. Origins follow the same list
// as CORS; a "*" entry accepts any origin. readLimit caps a single inbound frame.
func NewWebSocketHandler(crypto domain.CryptoService, logger zerolog.Logger, allowedOrigins []string, readLimit int64) *WebSocketHandler {
	return &WebSocketHandler{
		Crypto: crypto,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		readLimit: readLimit,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send an Origin header.
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// wsFrame is one client request. Data carries any JSON value for encrypt and
// the base64 ciphertext string for decrypt.
type wsFrame struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
	IV   string          `json:"iv"`
}

type wsReply struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	IV      string          `json:"iv,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ==============================================================================
// 3. HTTP Methods (The Upgrader)
// ==============================================================================

// Serve handles GET /api/ws. Each inbound frame gets exactly one reply; a bad
// frame fails on its own and the session stays open.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.Logger.Warn().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	sessionID := uuid.NewString()
	logger := h.Logger.With().Str("session_id", sessionID).Logger()
	logger.Debug().Msg("WebSocket session opened")

	done := make(chan struct{})
	defer func() {
		close(done)
		ws.Close()
		logger.Debug().Msg("WebSocket session closed")
	}()

	ws.SetReadLimit(h.readLimit)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go pingPump(ws, done)

	ctx := r.Context()
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))

		reply := h.handleFrame(ctx, msg)
		if !reply.Success {
			logger.Debug().Str("error", reply.Error).Msg("WebSocket frame rejected")
		}

		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := writeFrame(ws, reply); err != nil {
			logger.Warn().Err(err).Msg("Failed to write WebSocket reply")
			return
		}
	}
}

// ==============================================================================
// 4. Frame Dispatch
// ==============================================================================

func (h *WebSocketHandler) handleFrame(ctx context.Context, msg []byte) wsReply {
	var f wsFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		return wsReply{Error: msgInvalidJSON}
	}

	reply := wsReply{ID: f.ID}
	switch f.Op {
	case "encrypt":
		if err := validate.Struct(EncryptRequest{Data: f.Data}); err != nil {
			reply.Error = msgMissingData
			return reply
		}
		env, err := h.Crypto.Encrypt(ctx, f.Data)
		if err != nil {
			reply.Error = domain.Describe("Encryption", err)
			return reply
		}
		data, _ := json.Marshal(env.Data)
		reply.Success, reply.Data, reply.IV = true, data, env.IV

	case "decrypt":
		var ciphertext string
		if err := json.Unmarshal(f.Data, &ciphertext); err != nil {
			reply.Error = msgMissingEnvelope
			return reply
		}
		req := DecryptRequest{Data: ciphertext, IV: f.IV}
		if err := validate.Struct(req); err != nil {
			reply.Error = msgMissingEnvelope
			return reply
		}
		value, err := h.Crypto.Decrypt(ctx, req.Envelope())
		if err != nil {
			reply.Error = domain.Describe("Decryption", err)
			return reply
		}
		data, err := encodeRaw(value)
		if err != nil {
			reply.Error = domain.Describe("Decryption", fmt.Errorf("%w: %v", domain.ErrSerialization, err))
			return reply
		}
		reply.Success, reply.Data = true, data

	default:
		reply.Error = fmt.Sprintf("Unsupported op %q (expected encrypt or decrypt)", f.Op)
	}
	return reply
}

// ==============================================================================
// 5. The Write Side (Replies + Keep-Alive)
// ==============================================================================

func writeFrame(ws *websocket.Conn, reply wsReply) error {
	w, err := ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reply); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// pingPump keeps idle sessions alive. WriteControl is safe alongside the
// reader goroutine's writes.
func pingPump(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func encodeRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
