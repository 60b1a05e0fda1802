package services_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/services"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/infrastructure/crypto"
)

func newEngine(t *testing.T) *crypto.AEADService {
	t.Helper()
	engine, err := crypto.NewAESCryptoService(crypto.NewKey([]byte("batch-service-test-key")))
	require.NoError(t, err)
	return engine
}

func sealAll(t *testing.T, engine domain.CryptoService, n int) []domain.Envelope {
	t.Helper()
	items := make([]domain.Envelope, n)
	for i := range items {
		env, err := engine.Encrypt(context.Background(), map[string]int{"n": i})
		require.NoError(t, err)
		items[i] = *env
	}
	return items
}

func corruptTag(t *testing.T, env domain.Envelope) domain.Envelope {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(env.Data)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	env.Data = base64.StdEncoding.EncodeToString(raw)
	return env
}

func TestBatchService_IsolatesFailures(t *testing.T) {
	engine := newEngine(t)
	svc := services.NewBatchService(engine, zerolog.Nop(), 2)

	items := sealAll(t, engine, 5)
	items[2] = corruptTag(t, items[2])

	report := svc.DecryptBatch(context.Background(), items)

	require.Len(t, report.Results, 5)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, report.Successful)

	for i, r := range report.Results {
		assert.Equal(t, i, r.Index, "results must keep input order")
		if i == 2 {
			assert.False(t, r.Success)
			assert.ErrorIs(t, r.Err, domain.ErrAuthentication)
			assert.Equal(t, "Decryption failed: authentication failed", r.Error)
			continue
		}
		require.True(t, r.Success, "item %d", i)
		obj := r.Data.(map[string]any)
		assert.Equal(t, json.Number(string(rune('0'+i))), obj["n"])
	}
}

func TestBatchService_MixedFailureKinds(t *testing.T) {
	engine := newEngine(t)
	svc := services.NewBatchService(engine, zerolog.Nop(), 4)

	good := sealAll(t, engine, 1)[0]
	items := []domain.Envelope{
		good,
		{Data: "", IV: good.IV},
		{Data: "!!not-base64!!", IV: good.IV},
		{Data: good.Data, IV: base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	report := svc.DecryptBatch(context.Background(), items)

	assert.Equal(t, 1, report.Successful)
	assert.True(t, report.Results[0].Success)
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrValidation)
	assert.Contains(t, report.Results[1].Error, "missing required fields")
	assert.ErrorIs(t, report.Results[2].Err, domain.ErrDecoding)
	assert.ErrorIs(t, report.Results[3].Err, domain.ErrDecoding)
}

func TestBatchService_EmptyBatch(t *testing.T) {
	svc := services.NewBatchService(newEngine(t), zerolog.Nop(), 0)

	report := svc.DecryptBatch(context.Background(), []domain.Envelope{})

	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Successful)
	assert.NotNil(t, report.Results)
	assert.Empty(t, report.Results)
}

// ==============================================================================
// Fault injection
// ==============================================================================

type stubCrypto struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	decrypt  func(env *domain.Envelope) (any, error)
}

func (s *stubCrypto) Encrypt(context.Context, any) (*domain.Envelope, error) {
	return nil, errors.New("not implemented")
}

func (s *stubCrypto) Decrypt(_ context.Context, env *domain.Envelope) (any, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	s.mu.Lock()
	if n > s.peak.Load() {
		s.peak.Store(n)
	}
	s.mu.Unlock()

	return s.decrypt(env)
}

func (s *stubCrypto) Algorithm() string { return "STUB" }

func TestBatchService_RecoversPanicsPerItem(t *testing.T) {
	stub := &stubCrypto{decrypt: func(env *domain.Envelope) (any, error) {
		if env.Data == "boom" {
			panic("engine exploded")
		}
		return env.Data, nil
	}}
	svc := services.NewBatchService(stub, zerolog.Nop(), 3)

	items := []domain.Envelope{{Data: "a", IV: "x"}, {Data: "boom", IV: "x"}, {Data: "c", IV: "x"}}
	report := svc.DecryptBatch(context.Background(), items)

	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, "a", report.Results[0].Data)
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrInternal)
	assert.Contains(t, report.Results[1].Error, "engine exploded")
	assert.Equal(t, "c", report.Results[2].Data)
}

func TestBatchService_BoundsConcurrency(t *testing.T) {
	stub := &stubCrypto{decrypt: func(env *domain.Envelope) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return env.Data, nil
	}}
	svc := services.NewBatchService(stub, zerolog.Nop(), 3)

	items := make([]domain.Envelope, 30)
	for i := range items {
		items[i] = domain.Envelope{Data: "d", IV: "i"}
	}

	report := svc.DecryptBatch(context.Background(), items)

	assert.Equal(t, 30, report.Successful)
	assert.LessOrEqual(t, stub.peak.Load(), int32(3))
}

func TestBatchService_CancelledContext(t *testing.T) {
	stub := &stubCrypto{decrypt: func(env *domain.Envelope) (any, error) {
		return env.Data, nil
	}}
	svc := services.NewBatchService(stub, zerolog.Nop(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := svc.DecryptBatch(ctx, []domain.Envelope{{Data: "a", IV: "b"}, {Data: "c", IV: "d"}})

	require.Len(t, report.Results, 2)
	assert.Equal(t, 0, report.Successful)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, domain.ErrInternal)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
