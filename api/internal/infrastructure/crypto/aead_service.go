package crypto

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// Algorithm names an AEAD construction. Both supported ones share the envelope
// layout: a 12-byte nonce and a 16-byte trailing tag.
type Algorithm string

const (
	AES256GCM        Algorithm = "AES-256-GCM"
	ChaCha20Poly1305 Algorithm = "CHACHA20-POLY1305"
)

const (
	NonceSize = 12
	TagSize   = 16
)

// ParseAlgorithm accepts the canonical names case-insensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(name))) {
	case "", AES256GCM:
		return AES256GCM, nil
	case ChaCha20Poly1305:
		return ChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("crypto: unsupported algorithm %q", name)
	}
}

type AEADService struct {
	// 🛡️ Pre-calculated once; cipher.AEAD is safe for concurrent use
	aead cipher.AEAD
	algo Algorithm
}

var _ domain.CryptoService = (*AEADService)(nil)

// NewAESCryptoService builds the default AES-256-GCM engine.
func NewAESCryptoService(key Key) (*AEADService, error) {
	return NewAEADService(key, AES256GCM)
}

func NewAEADService(key Key, algo Algorithm) (*AEADService, error) {
	raw := key[:]

	// 🛡️ Privacy Tip: zeroize the local key copy once the cipher owns its schedule
	defer func() {
		for i := range raw {
			raw[i] = 0
		}
	}()

	var (
		aead cipher.AEAD
		err  error
	)
	switch algo {
	case AES256GCM:
		var block cipher.Block
		block, err = aes.NewCipher(raw)
		if err != nil {
			return nil, fmt.Errorf("crypto: block cipher failure: %w", err)
		}
		aead, err = cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("crypto: GCM failure: %w", err)
		}
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(raw)
		if err != nil {
			return nil, fmt.Errorf("crypto: ChaCha20-Poly1305 failure: %w", err)
		}
	default:
		return nil, fmt.Errorf("crypto: unsupported algorithm %q", algo)
	}

	if aead.NonceSize() != NonceSize || aead.Overhead() != TagSize {
		return nil, errors.New("crypto: AEAD does not match the 12-byte nonce / 16-byte tag envelope")
	}

	return &AEADService{aead: aead, algo: algo}, nil
}

func (s *AEADService) Algorithm() string {
	return string(s.algo)
}

func (s *AEADService) Encrypt(ctx context.Context, value any) (*domain.Envelope, error) {
	plaintext, err := marshalValue(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce generation failure: %v", domain.ErrInternal, err)
	}

	// Seal appends the tag, so the output is already ciphertext || tag.
	sealed := s.aead.Seal(nil, nonce, plaintext, nil)

	return &domain.Envelope{
		Data: base64.StdEncoding.EncodeToString(sealed),
		IV:   base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

func (s *AEADService) Decrypt(ctx context.Context, env *domain.Envelope) (any, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: missing envelope", domain.ErrDecoding)
	}

	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data is not valid base64", domain.ErrDecoding)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not valid base64", domain.ErrDecoding)
	}

	if len(nonce) != s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", domain.ErrDecoding, s.aead.NonceSize(), len(nonce))
	}
	if len(sealed) < s.aead.Overhead() {
		return nil, fmt.Errorf("%w: data is shorter than the %d-byte tag", domain.ErrDecoding, s.aead.Overhead())
	}

	// 🛡️ AEAD Verification: Open checks the trailing tag before releasing a single byte
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrAuthentication
	}

	value, err := unmarshalValue(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	return value, nil
}

// marshalValue matches JSON.stringify output: compact, no HTML escaping.
func marshalValue(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func unmarshalValue(plaintext []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return value, nil
}
