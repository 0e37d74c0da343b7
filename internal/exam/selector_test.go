package exam

import (
	"fmt"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// buildPool creates perBucket questions for every category/difficulty pair.
func buildPool(categories, difficulties []string, perBucket int) []Question {
	var pool []Question
	n := 0
	for _, cat := range categories {
		for _, diff := range difficulties {
			for i := 0; i < perBucket; i++ {
				n++
				pool = append(pool, Question{
					ID:            fmt.Sprintf("q-%s-%s-%d", cat, diff, i),
					Category:      cat,
					Difficulty:    diff,
					Text:          fmt.Sprintf("question %d", n),
					OptionA:       "a",
					OptionB:       "b",
					OptionC:       "c",
					OptionD:       "d",
					CorrectAnswer: "A",
				})
			}
		}
	}
	return pool
}

var (
	allCategories   = []string{"concrete", "structures", "construction", "maintenance"}
	allDifficulties = []string{DifficultyBasic, DifficultyStandard, DifficultyAdvanced}
)

func TestSelectFullSupplyReturnsExactCount(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(1), zerolog.New(io.Discard))

	pool := buildPool(allCategories, allDifficulties, 30)

	for _, name := range registry.Names() {
		cfg, err := registry.Get(name)
		require.NoError(t, err)

		selected := selector.Select(pool, cfg)
		assert.Len(t, selected, cfg.TotalQuestions, "config %s", name)

		seen := map[string]bool{}
		for _, q := range selected {
			assert.False(t, seen[q.ID], "duplicate id %s in config %s", q.ID, name)
			seen[q.ID] = true
		}
	}
}

func TestSelectHonorsCategoryQuotas(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(2), zerolog.New(io.Discard))

	pool := buildPool(allCategories, allDifficulties, 30)
	cfg, err := registry.Get("quick")
	require.NoError(t, err)

	selected := selector.Select(pool, cfg)

	counts := map[string]int{}
	for _, q := range selected {
		counts[q.Category]++
	}
	for _, quota := range cfg.Categories {
		assert.Equal(t, quota.Count, counts[quota.Category], "category %s", quota.Category)
	}
}

func TestSelectCategoryShortfallTakesAllCandidates(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(3), zerolog.New(io.Discard))

	// Only 2 concrete questions exist but quick wants 6. Other categories are
	// fully stocked, so the total is topped up from them.
	pool := buildPool([]string{"concrete"}, []string{DifficultyBasic}, 2)
	pool = append(pool, buildPool([]string{"structures", "construction", "maintenance"}, allDifficulties, 30)...)

	cfg, err := registry.Get("quick")
	require.NoError(t, err)

	selected := selector.Select(pool, cfg)
	assert.Len(t, selected, cfg.TotalQuestions)

	concrete := 0
	ids := map[string]bool{}
	for _, q := range selected {
		ids[q.ID] = true
		if q.Category == "concrete" {
			concrete++
		}
	}
	assert.Equal(t, 2, concrete, "every available concrete question is used")
	assert.True(t, ids["q-concrete-basic-0"])
	assert.True(t, ids["q-concrete-basic-1"])
	assert.Len(t, ids, cfg.TotalQuestions)
}

func TestSelectGloballyInsufficientPool(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(4), zerolog.New(io.Discard))

	pool := buildPool(allCategories, allDifficulties, 1) // 12 questions total
	cfg, err := registry.Get("quick")                    // wants 20
	require.NoError(t, err)

	selected := selector.Select(pool, cfg)
	assert.Len(t, selected, len(pool), "short exam is permitted, never padded")
}

func TestSelectDifficultyBucketShortfallFillsFromCategory(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(5), zerolog.New(io.Discard))

	// Concrete has zero advanced questions; its quota of 6 must still fill
	// from basic/standard candidates.
	pool := buildPool([]string{"concrete"}, []string{DifficultyBasic, DifficultyStandard}, 10)
	pool = append(pool, buildPool([]string{"structures", "construction", "maintenance"}, allDifficulties, 10)...)

	cfg, err := registry.Get("quick")
	require.NoError(t, err)

	selected := selector.Select(pool, cfg)
	assert.Len(t, selected, cfg.TotalQuestions)

	concrete := 0
	for _, q := range selected {
		if q.Category == "concrete" {
			concrete++
			assert.NotEqual(t, DifficultyAdvanced, q.Difficulty)
		}
	}
	assert.Equal(t, 6, concrete)
}

func TestSelectDeterministicForSeededRand(t *testing.T) {
	registry := NewRegistry()
	pool := buildPool(allCategories, allDifficulties, 20)
	cfg, err := registry.Get("standard")
	require.NoError(t, err)

	first := NewSelector(testRand(42), zerolog.New(io.Discard)).Select(pool, cfg)
	second := NewSelector(testRand(42), zerolog.New(io.Discard)).Select(pool, cfg)
	assert.Equal(t, first, second)
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	registry := NewRegistry()
	selector := NewSelector(testRand(6), zerolog.New(io.Discard))

	pool := buildPool(allCategories, allDifficulties, 5)
	snapshot := append([]Question(nil), pool...)

	cfg, err := registry.Get("quick")
	require.NoError(t, err)
	_ = selector.Select(pool, cfg)

	assert.Equal(t, snapshot, pool)
}
