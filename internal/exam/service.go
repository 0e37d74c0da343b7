package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// PoolProvider supplies the candidate question pool (implemented by the
// question bank service).
type PoolProvider interface {
	Pool(ctx context.Context) ([]Question, error)
}

// sessionStore is the persistence surface the simulator needs (implemented
// by the Redis-backed SessionStore; tests use an in-memory stub).
type sessionStore interface {
	Lock(ctx context.Context, examID string) (func() error, error)
	Put(ctx context.Context, session *Session) error
	Get(ctx context.Context, examID string) (*Session, error)
}

// Features toggles the exam environment behaviors. Both default to on.
type Features struct {
	RandomizeQuestions bool
	RandomizeOptions   bool
}

// DefaultFeatures returns production defaults.
func DefaultFeatures() Features {
	return Features{
		RandomizeQuestions: true,
		RandomizeOptions:   true,
	}
}

// ServiceOptions configures the simulator. Rand and Now exist so tests can
// pin randomness and the clock.
type ServiceOptions struct {
	Rand     *rand.Rand
	Now      func() time.Time
	Features *Features
}

// Service drives the whole simulation flow: config lookup, selection, option
// randomization, session lifecycle and scoring. All mutating calls on one
// exam are serialized through the store lock; the engine types themselves
// stay free of locking and I/O.
type Service struct {
	registry *Registry
	pool     PoolProvider
	store    sessionStore
	selector *Selector
	rng      *rand.Rand
	features Features
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates the exam simulator.
func NewService(registry *Registry, pool PoolProvider, store sessionStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	features := DefaultFeatures()
	if opts.Features != nil {
		features = *opts.Features
	}

	return &Service{
		registry: registry,
		pool:     pool,
		store:    store,
		selector: NewSelector(rng, logger),
		rng:      rng,
		features: features,
		now:      now,
		logger:   logger.With().Str("component", "exam_service").Logger(),
	}
}

// Registry exposes the configured exam variants (read-only).
func (s *Service) Registry() *Registry {
	return s.registry
}

// Start builds and persists a new session for the named exam type.
func (s *Service) Start(ctx context.Context, examType string) (*Session, error) {
	cfg, err := s.registry.Get(examType)
	if err != nil {
		return nil, err
	}

	pool, err := s.pool.Pool(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	questions := s.selector.Select(pool, cfg)
	if s.features.RandomizeQuestions {
		s.selector.Shuffle(questions)
	}
	if s.features.RandomizeOptions {
		for i, q := range questions {
			randomized, err := RandomizeOptions(q, s.rng)
			if err != nil {
				return nil, fmt.Errorf("randomize options: %w", err)
			}
			questions[i] = randomized
		}
	}

	session := NewSession(cfg, questions, SessionOptions{Now: s.now, Rand: s.rng})
	if err := s.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info().
		Str("exam_id", session.ExamID).
		Str("exam_type", examType).
		Int("questions", len(questions)).
		Msg("exam session started")
	return session, nil
}

// Submit records an answer for the session's current question and advances
// it, returning progress or the final scored result on the last question.
func (s *Service) Submit(ctx context.Context, examID string, index int, answer string, timeSpentSeconds float64) (SubmitOutcome, error) {
	var outcome SubmitOutcome
	err := s.withSession(ctx, examID, func(session *Session) error {
		var err error
		outcome, err = session.SubmitAnswer(index, answer, timeSpentSeconds)
		return err
	})
	if err != nil {
		return SubmitOutcome{}, err
	}
	if outcome.ExamCompleted {
		s.logger.Info().
			Str("exam_id", examID).
			Float64("score", outcome.Results.Score).
			Bool("passed", outcome.Results.Passed).
			Msg("exam completed")
	}
	return outcome, nil
}

// Flag marks a question for review.
func (s *Service) Flag(ctx context.Context, examID string, index int) error {
	return s.withSession(ctx, examID, func(session *Session) error {
		session.Flag(index)
		return nil
	})
}

// Unflag clears a review mark.
func (s *Service) Unflag(ctx context.Context, examID string, index int) error {
	return s.withSession(ctx, examID, func(session *Session) error {
		session.Unflag(index)
		return nil
	})
}

// TimeStatus is the poll response for the exam clock.
type TimeStatus struct {
	RemainingMinutes int    `json:"remaining_minutes"`
	Warning          string `json:"warning,omitempty"`
	WarningMessage   string `json:"warning_message,omitempty"`
	AutoSubmit       bool   `json:"auto_submit"`
}

var warningMessages = map[string]string{
	"10min": "10 minutes remaining",
	"30min": "30 minutes remaining",
	"60min": "1 hour remaining",
}

// Time polls the exam clock: remaining minutes, a newly fired warning if one
// is due, and whether the session should be auto-submitted. Firing a warning
// mutates the session, so the call goes through the store lock.
func (s *Service) Time(ctx context.Context, examID string) (TimeStatus, error) {
	var status TimeStatus
	err := s.withSession(ctx, examID, func(session *Session) error {
		status.RemainingMinutes = session.TimeRemaining()
		status.AutoSubmit = session.AutoSubmitCheck()
		if label, fired := session.TimeWarning(); fired {
			status.Warning = label
			status.WarningMessage = warningMessages[label]
		}
		return nil
	})
	return status, err
}

// CheckTimeout finishes an in-progress session whose time is up and returns
// its result. Returns (nil, nil) when the session still has time left.
func (s *Service) CheckTimeout(ctx context.Context, examID string) (*Result, error) {
	var result *Result
	err := s.withSession(ctx, examID, func(session *Session) error {
		if session.Status != StatusInProgress || !session.AutoSubmitCheck() {
			return nil
		}
		result = session.Finish()
		s.logger.Info().Str("exam_id", examID).Msg("exam auto-submitted on timeout")
		return nil
	})
	return result, err
}

// Summary returns the progress snapshot for a session. Read-only.
func (s *Service) Summary(ctx context.Context, examID string) (Summary, error) {
	session, err := s.store.Get(ctx, examID)
	if err != nil {
		return Summary{}, err
	}
	session.SetClock(s.now)
	return session.Summary(), nil
}

// Results returns the final scored result of a completed session.
func (s *Service) Results(ctx context.Context, examID string) (*Result, error) {
	session, err := s.store.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusCompleted || session.Results == nil {
		return nil, fmt.Errorf("exam %s: %w", examID, ErrExamInProgress)
	}
	return session.Results, nil
}

// withSession runs fn over a locked, loaded session and persists it when fn
// succeeds. Engine errors leave the stored state untouched.
func (s *Service) withSession(ctx context.Context, examID string, fn func(*Session) error) error {
	unlock, err := s.store.Lock(ctx, examID)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("exam_id", examID).Msg("unlock failed")
		}
	}()

	session, err := s.store.Get(ctx, examID)
	if err != nil {
		return err
	}
	session.SetClock(s.now)

	if err := fn(session); err != nil {
		return err
	}
	return s.store.Put(ctx, session)
}
