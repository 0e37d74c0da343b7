package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func letterIndex(letter string) int {
	for i, l := range optionLetters {
		if l == letter {
			return i
		}
	}
	return -1
}

func TestRandomizeOptionsPreservesCorrectness(t *testing.T) {
	q := Question{
		ID:            "q1",
		Text:          "pick the right one",
		OptionA:       "alpha",
		OptionB:       "bravo",
		OptionC:       "charlie",
		OptionD:       "delta",
		CorrectAnswer: "C",
	}

	rng := testRand(7)
	for i := 0; i < 50; i++ {
		out, err := RandomizeOptions(q, rng)
		require.NoError(t, err)

		// Exactly one slot holds the original correct text, and
		// CorrectAnswer names it.
		matches := 0
		for _, opt := range out.Options() {
			if opt == "charlie" {
				matches++
			}
		}
		assert.Equal(t, 1, matches)
		assert.Equal(t, "charlie", out.Options()[letterIndex(out.CorrectAnswer)])

		// The permutation keeps all four options.
		opts := out.Options()
		assert.ElementsMatch(t,
			[]string{"alpha", "bravo", "charlie", "delta"},
			opts[:])
	}
}

func TestRandomizeOptionsDuplicateTexts(t *testing.T) {
	// Two options share the same text; an implementation comparing texts
	// could point CorrectAnswer at the wrong duplicate. The index-based
	// remap keeps the correct slot correct.
	q := Question{
		ID:            "q2",
		OptionA:       "42",
		OptionB:       "42",
		OptionC:       "17",
		OptionD:       "99",
		CorrectAnswer: "B",
	}

	rng := testRand(8)
	for i := 0; i < 50; i++ {
		out, err := RandomizeOptions(q, rng)
		require.NoError(t, err)
		assert.Equal(t, "42", out.Options()[letterIndex(out.CorrectAnswer)])
		opts := out.Options()
		assert.ElementsMatch(t, []string{"42", "42", "17", "99"}, opts[:])
	}
}

func TestRandomizeOptionsInvalidKey(t *testing.T) {
	q := Question{ID: "q3", CorrectAnswer: "E"}

	_, err := RandomizeOptions(q, testRand(9))
	assert.ErrorIs(t, err, ErrInvalidAnswerKey)

	q.CorrectAnswer = ""
	_, err = RandomizeOptions(q, testRand(9))
	assert.ErrorIs(t, err, ErrInvalidAnswerKey)
}

func TestRandomizeOptionsDoesNotMutateInput(t *testing.T) {
	q := Question{
		ID:            "q4",
		OptionA:       "one",
		OptionB:       "two",
		OptionC:       "three",
		OptionD:       "four",
		CorrectAnswer: "A",
	}
	snapshot := q

	_, err := RandomizeOptions(q, testRand(10))
	require.NoError(t, err)
	assert.Equal(t, snapshot, q)
}
