package question

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/examforge/examsim/internal/exam"
)

// PoolCache defines cache behavior (implemented by the Redis-backed Cache).
type PoolCache interface {
	Get(ctx context.Context) ([]exam.Question, error)
	Set(ctx context.Context, pool []exam.Question) error
}

// bankRepository is the bank access the service needs.
type bankRepository interface {
	FetchPool(ctx context.Context) ([]exam.Question, error)
}

// Service serves the candidate question pool, cache first then Postgres.
// The engine treats the returned slice as read-only input.
type Service struct {
	repo   bankRepository
	cache  PoolCache
	logger zerolog.Logger
}

var _ exam.PoolProvider = (*Service)(nil)

func NewService(repo bankRepository, cache PoolCache, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger.With().Str("component", "question_bank").Logger(),
	}
}

// Pool returns every bank question. Cache misses fall through to Postgres;
// cache write failures are logged and ignored since the bank is the source
// of truth.
func (s *Service) Pool(ctx context.Context) ([]exam.Question, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && len(cached) > 0 {
			return cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("pool cache read failed")
		}
	}

	pool, err := s.repo.FetchPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch question pool: %w", err)
	}
	if len(pool) == 0 {
		s.logger.Warn().Msg("question bank is empty")
	}

	if s.cache != nil && len(pool) > 0 {
		if err := s.cache.Set(ctx, pool); err != nil {
			s.logger.Warn().Err(err).Msg("pool cache write failed")
		}
	}
	return pool, nil
}
