package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync"
)

// KeySize is the AES-256 / ChaCha20 key length in bytes.
const KeySize = 32

// Key is the shared symmetric key. It is an array, so copies never alias.
type Key [KeySize]byte

// keySegments are concatenated in order to form the key material.
var keySegments = []struct {
	value   string
	encoded bool
}{
	{value: "VEVSQQ==", encoded: true},
	{value: "QEJBQVAt", encoded: true},
	{value: "hu$BSDMK"},
	{value: "QDU1NQ==", encoded: true},
}

var derivedKey = sync.OnceValue(func() Key {
	var material []byte
	for _, seg := range keySegments {
		if !seg.encoded {
			material = append(material, seg.value...)
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(seg.value)
		if err != nil {
			// Segments are compile-time constants.
			panic("crypto: corrupt key segment: " + err.Error())
		}
		material = append(material, decoded...)
	}
	// Material is used verbatim; no per-byte transform is applied.
	return NewKey(material)
})

// DeriveKey returns the fixed service key. Every call yields the same bytes.
func DeriveKey() Key {
	return derivedKey()
}

// NewKey fits material to KeySize: shorter input is zero-padded at the end,
// longer input is truncated.
func NewKey(material []byte) Key {
	var k Key
	copy(k[:], material)
	return k
}

// Fingerprint is a short SHA-256 digest safe to print in logs and audits.
func (k Key) Fingerprint() string {
	sum := sha256.Sum256(k[:])
	return hex.EncodeToString(sum[:8])
}
