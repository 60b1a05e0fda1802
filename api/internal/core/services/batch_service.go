package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/domain"
)

// DefaultBatchConcurrency bounds in-flight decrypts per batch when unset.
const DefaultBatchConcurrency = 16

// BatchService fans envelopes out to the crypto engine. One item's failure,
// or panic, never aborts or reorders its siblings.
type BatchService struct {
	crypto      domain.CryptoService
	logger      zerolog.Logger
	concurrency int // 🛡️ SLA: Limit concurrent decrypts
}

var _ domain.BatchDecrypter = (*BatchService)(nil)

func NewBatchService(crypto domain.CryptoService, logger zerolog.Logger, concurrency int) *BatchService {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	return &BatchService{
		crypto:      crypto,
		logger:      logger,
		concurrency: concurrency,
	}
}

// DecryptBatch always returns one result per input item, in input order.
func (s *BatchService) DecryptBatch(ctx context.Context, items []domain.Envelope) *domain.BatchReport {
	batchID := uuid.New().String()
	started := time.Now()
	results := make([]domain.BatchItemResult, len(items))

	// 🛡️ Concurrency control via a bounded pool; each worker owns exactly one slot of results
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i := range items {
		g.Go(func() error {
			results[i] = s.decryptItem(ctx, batchID, i, &items[i])
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.BatchReport{
		Results: results,
		Total:   len(items),
	}
	for _, r := range results {
		if r.Success {
			report.Successful++
		}
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Int("total", report.Total).
		Int("successful", report.Successful).
		Dur("elapsed", time.Since(started)).
		Msg("Batch decrypt processed")

	return report
}

func (s *BatchService) decryptItem(ctx context.Context, batchID string, index int, env *domain.Envelope) (res domain.BatchItemResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("batch_id", batchID).
				Int("index", index).
				Interface("panic", r).
				Msg("Recovered panic in batch item")
			res = failed(index, fmt.Errorf("%w: %v", domain.ErrInternal, r))
		}
	}()

	// Items queued behind a cancelled request are not started.
	if err := ctx.Err(); err != nil {
		return failed(index, fmt.Errorf("%w: %w", domain.ErrInternal, err))
	}

	if env.Data == "" || env.IV == "" {
		return failed(index, fmt.Errorf("%w: missing required fields: data and iv", domain.ErrValidation))
	}

	value, err := s.crypto.Decrypt(ctx, env)
	if err != nil {
		s.logger.Debug().
			Str("batch_id", batchID).
			Int("index", index).
			Str("kind", string(domain.KindOf(err))).
			Msg("Batch item rejected")
		return failed(index, err)
	}

	return domain.BatchItemResult{Index: index, Success: true, Data: value}
}

func failed(index int, err error) domain.BatchItemResult {
	return domain.BatchItemResult{
		Index: index,
		Error: domain.Describe("Decryption", err),
		Err:   err,
	}
}
