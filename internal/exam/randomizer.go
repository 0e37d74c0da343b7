package exam

import (
	"fmt"
	"math/rand/v2"
)

// RandomizeOptions returns a copy of q with its four options permuted and
// CorrectAnswer pointing at the slot that now holds the originally correct
// option. The remap is tracked by index, not by option text, so questions
// with duplicate option texts stay correct. The input is never mutated.
func RandomizeOptions(q Question, rng *rand.Rand) (Question, error) {
	origIdx := -1
	for i, letter := range optionLetters {
		if q.CorrectAnswer == letter {
			origIdx = i
			break
		}
	}
	if origIdx < 0 {
		return Question{}, fmt.Errorf("question %s: %w (got %q)", q.ID, ErrInvalidAnswerKey, q.CorrectAnswer)
	}

	options := q.Options()
	perm := rng.Perm(4)

	out := q
	shuffled := [4]string{}
	for slot, src := range perm {
		shuffled[slot] = options[src]
		if src == origIdx {
			out.CorrectAnswer = optionLetters[slot]
		}
	}
	out.OptionA = shuffled[0]
	out.OptionB = shuffled[1]
	out.OptionC = shuffled[2]
	out.OptionD = shuffled[3]
	return out, nil
}
