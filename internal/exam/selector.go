package exam

import (
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"
)

// Selector builds an exam question list from a candidate pool according to a
// config's category and difficulty quotas. Shortfalls are best-effort: every
// deficit is logged and filled from whatever remains, never surfaced as an
// error. Selection is a pure function of (pool, config, rng).
type Selector struct {
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewSelector creates a selector drawing from the given random source. Tests
// pass a seeded rand.Rand for deterministic output.
func NewSelector(rng *rand.Rand, logger zerolog.Logger) *Selector {
	return &Selector{
		rng:    rng,
		logger: logger.With().Str("component", "exam_selector").Logger(),
	}
}

// Select returns up to cfg.TotalQuestions from pool, honoring per-category
// quotas and the difficulty distribution within each category. The result is
// shorter than TotalQuestions only when the whole pool is insufficient;
// callers must check the length.
func (s *Selector) Select(pool []Question, cfg Config) []Question {
	selected := make([]Question, 0, cfg.TotalQuestions)
	selectedIDs := make(map[string]bool)

	for _, quota := range cfg.Categories {
		var candidates []Question
		for _, q := range pool {
			if q.Category == quota.Category {
				candidates = append(candidates, q)
			}
		}

		if len(candidates) < quota.Count {
			s.logger.Warn().
				Str("category", quota.Category).
				Int("needed", quota.Count).
				Int("found", len(candidates)).
				Msg("category pool deficit, taking all candidates")
			selected = appendUnique(selected, selectedIDs, candidates...)
			continue
		}

		picked := s.selectByDifficulty(candidates, quota.Count, cfg.Difficulties, quota.Category)
		selected = appendUnique(selected, selectedIDs, picked...)
	}

	// Global top-up from the rest of the pool when the quotas under-filled.
	if len(selected) < cfg.TotalQuestions {
		var remaining []Question
		for _, q := range pool {
			if !selectedIDs[q.ID] {
				remaining = append(remaining, q)
			}
		}
		need := cfg.TotalQuestions - len(selected)
		if len(remaining) < need {
			s.logger.Warn().
				Int("needed", cfg.TotalQuestions).
				Int("available", len(selected)+len(remaining)).
				Msg("pool globally insufficient, exam will be short")
		}
		extra := s.sample(remaining, need)
		selected = appendUnique(selected, selectedIDs, extra...)
	}

	if len(selected) > cfg.TotalQuestions {
		selected = selected[:cfg.TotalQuestions]
	}
	return selected
}

// Shuffle randomizes question order in place.
func (s *Selector) Shuffle(questions []Question) {
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

// selectByDifficulty stratifies one category's candidates by difficulty and
// samples round(count*ratio) from each bucket, topping up from leftover
// candidates when buckets run dry.
func (s *Selector) selectByDifficulty(candidates []Question, count int, ratios []DifficultyRatio, category string) []Question {
	buckets := make(map[string][]Question)
	for _, q := range candidates {
		buckets[q.Difficulty] = append(buckets[q.Difficulty], q)
	}

	picked := make([]Question, 0, count)
	pickedIDs := make(map[string]bool)

	for _, dr := range ratios {
		if len(picked) >= count {
			break
		}
		target := int(math.Round(float64(count) * dr.Ratio))
		if target > count-len(picked) {
			target = count - len(picked)
		}
		bucket := buckets[dr.Difficulty]
		if len(bucket) < target {
			s.logger.Warn().
				Str("category", category).
				Str("difficulty", dr.Difficulty).
				Int("needed", target).
				Int("found", len(bucket)).
				Msg("difficulty bucket deficit")
			target = len(bucket)
		}
		picked = appendUnique(picked, pickedIDs, s.sample(bucket, target)...)
	}

	// Fill the rest of the category quota from any leftover candidates.
	if len(picked) < count {
		var leftover []Question
		for _, q := range candidates {
			if !pickedIDs[q.ID] {
				leftover = append(leftover, q)
			}
		}
		picked = appendUnique(picked, pickedIDs, s.sample(leftover, count-len(picked))...)
	}

	if len(picked) > count {
		picked = picked[:count]
	}
	return picked
}

// sample draws n questions uniformly without replacement; when n exceeds the
// bucket it returns every candidate.
func (s *Selector) sample(qs []Question, n int) []Question {
	if n >= len(qs) {
		return append([]Question(nil), qs...)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Question, 0, n)
	for _, idx := range s.rng.Perm(len(qs))[:n] {
		out = append(out, qs[idx])
	}
	return out
}

func appendUnique(dst []Question, seen map[string]bool, qs ...Question) []Question {
	for _, q := range qs {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		dst = append(dst, q)
	}
	return dst
}
