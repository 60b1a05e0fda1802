package domain

import "context"

// Envelope is the wire form of one sealed value.
// Data carries base64(ciphertext || tag) and IV carries base64(nonce).
type Envelope struct {
	Data string `json:"data"`
	IV   string `json:"iv"`
}

// CryptoService defines the hardened contract for value encryption.
// It enforces AEAD (Authenticated Encryption with Associated Data).
type CryptoService interface {
	// Encrypt serializes value to JSON and seals it under a fresh nonce.
	Encrypt(ctx context.Context, value any) (*Envelope, error)

	// Decrypt verifies the authentication tag before any plaintext is parsed.
	// Numbers in the returned value are json.Number.
	Decrypt(ctx context.Context, env *Envelope) (any, error)

	// Algorithm reports the AEAD in use, e.g. "AES-256-GCM".
	Algorithm() string
}

// BatchDecrypter fans a list of envelopes out to a CryptoService.
type BatchDecrypter interface {
	DecryptBatch(ctx context.Context, items []Envelope) *BatchReport
}
