package exam

import (
	"errors"
)

// Typed failures surfaced to callers. Selection shortfalls are deliberately
// not here: they are logged, never fatal.
var (
	// ErrConfigNotFound is returned for an unknown exam type. There is no
	// silent fallback to "standard"; callers must handle it.
	ErrConfigNotFound = errors.New("exam config not found")

	// ErrExamCompleted is returned when a mutating call hits a session that
	// already left in_progress. Session state is unchanged.
	ErrExamCompleted = errors.New("exam already completed")

	// ErrOutOfOrder is returned when the submitted index does not match the
	// session's current question. Submission is strictly positional.
	ErrOutOfOrder = errors.New("answer index out of order")

	// ErrInvalidAnswerKey is returned when a bank record carries a correct
	// answer outside A-D. Randomization refuses to guess rather than emit a
	// session with a wrong key.
	ErrInvalidAnswerKey = errors.New("correct answer must be one of A, B, C, D")

	// ErrExamNotFound is returned by the session store for unknown exam ids.
	ErrExamNotFound = errors.New("exam session not found")

	// ErrExamInProgress is returned when results are requested before the
	// session completed.
	ErrExamInProgress = errors.New("exam still in progress")
)
