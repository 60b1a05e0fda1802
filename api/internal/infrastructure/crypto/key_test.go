package crypto_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/infrastructure/crypto"
)

// "TERA@BAAP-hu$BSDMK@555" followed by ten zero bytes.
const expectedKeyHex = "5445524140424141502d6875244253444d4b40353535" + "00000000000000000000"

func TestDeriveKey_IsDeterministic(t *testing.T) {
	first := crypto.DeriveKey()
	for i := 0; i < 10; i++ {
		if crypto.DeriveKey() != first {
			t.Fatalf("DeriveKey returned different bytes on call %d", i)
		}
	}

	if got := hex.EncodeToString(first[:]); got != expectedKeyHex {
		t.Fatalf("Derived key mismatch:\n got %s\nwant %s", got, expectedKeyHex)
	}
}

func TestDeriveKey_CopiesDoNotAlias(t *testing.T) {
	k := crypto.DeriveKey()
	k[0] ^= 0xff

	if again := crypto.DeriveKey(); again[0] == k[0] {
		t.Fatal("Mutating a returned key leaked into the shared key")
	}
}

func TestNewKey_PadsAndTruncates(t *testing.T) {
	short := crypto.NewKey([]byte("abc"))
	if !bytes.Equal(short[:3], []byte("abc")) || !bytes.Equal(short[3:], make([]byte, crypto.KeySize-3)) {
		t.Errorf("Short material was not zero-padded: %x", short)
	}

	long := bytes.Repeat([]byte{0x7a}, 40)
	truncated := crypto.NewKey(long)
	if !bytes.Equal(truncated[:], long[:crypto.KeySize]) {
		t.Errorf("Long material was not truncated: %x", truncated)
	}
}

func TestKey_Fingerprint(t *testing.T) {
	k := crypto.DeriveKey()
	if got := k.Fingerprint(); got != "2437eb95783789bf" {
		t.Errorf("Unexpected fingerprint %s", got)
	}
	if crypto.NewKey(nil).Fingerprint() == k.Fingerprint() {
		t.Error("Distinct keys share a fingerprint")
	}
}

func TestNewAEADService_DoesNotMutateCallerKey(t *testing.T) {
	k := crypto.DeriveKey()
	if _, err := crypto.NewAESCryptoService(k); err != nil {
		t.Fatalf("Failed to create crypto service: %v", err)
	}
	if got := hex.EncodeToString(k[:]); got != expectedKeyHex {
		t.Fatalf("Caller key was zeroized: %s", got)
	}
}
