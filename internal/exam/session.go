package exam

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const examIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Time warnings are checked in this fixed order. Because the 10-minute
// threshold is tested first, a session whose polls jump straight from above
// 60 to below 10 only ever fires the 10-minute warning; the 30/60 warnings
// are skipped for good. Callers rely on exactly this behavior.
var warningThresholds = []struct {
	Label   string
	Minutes int
}{
	{Label: "10min", Minutes: 10},
	{Label: "30min", Minutes: 30},
	{Label: "60min", Minutes: 60},
}

// SessionOptions injects the session's clock and random source. Zero values
// fall back to time.Now and the shared generator.
type SessionOptions struct {
	Now  func() time.Time
	Rand *rand.Rand
}

// NewSession starts a fresh in_progress session over the given (already
// selected and randomized) question list.
func NewSession(cfg Config, questions []Question, opts SessionOptions) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		ExamID:          newExamID(now(), opts.Rand),
		ExamType:        cfg.Name,
		Config:          cfg,
		Questions:       questions,
		StartTime:       now(),
		CurrentQuestion: 0,
		Answers:         make(map[int]AnswerRecord),
		Flagged:         make(map[int]bool),
		Status:          StatusInProgress,
		now:             now,
	}
}

func newExamID(t time.Time, rng *rand.Rand) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		if rng != nil {
			suffix[i] = examIDCharset[rng.IntN(len(examIDCharset))]
		} else {
			suffix[i] = examIDCharset[rand.IntN(len(examIDCharset))]
		}
	}
	return fmt.Sprintf("EXAM_%s_%s", t.Format("20060102_150405"), suffix)
}

// SubmitOutcome is the result of one answer submission: either progress to
// the next question or, on the last question, the final scored result.
type SubmitOutcome struct {
	ExamCompleted bool      `json:"exam_completed"`
	Progress      *Progress `json:"progress,omitempty"`
	Results       *Result   `json:"results,omitempty"`
}

// SubmitAnswer records the answer for the current question and advances the
// session. Submission is strictly positional: index must equal
// CurrentQuestion or the call fails with ErrOutOfOrder and nothing changes.
// Answer entries are write-once; there is no revision API.
func (s *Session) SubmitAnswer(index int, answer string, timeSpentSeconds float64) (SubmitOutcome, error) {
	if s.Status != StatusInProgress {
		return SubmitOutcome{}, fmt.Errorf("submit answer: %w", ErrExamCompleted)
	}
	if index != s.CurrentQuestion {
		return SubmitOutcome{}, fmt.Errorf("submit answer: %w: got %d, expected %d", ErrOutOfOrder, index, s.CurrentQuestion)
	}

	s.Answers[index] = AnswerRecord{
		Answer:           answer,
		TimeSpentSeconds: timeSpentSeconds,
		Timestamp:        s.clock(),
	}
	s.CurrentQuestion++

	if s.CurrentQuestion >= len(s.Questions) {
		result := s.finish()
		return SubmitOutcome{ExamCompleted: true, Results: result}, nil
	}
	return SubmitOutcome{
		Progress: &Progress{
			NextQuestion:       s.CurrentQuestion,
			RemainingQuestions: len(s.Questions) - s.CurrentQuestion,
		},
	}, nil
}

// Flag marks a question for review. Valid for any index at any time;
// flagging twice is a no-op.
func (s *Session) Flag(index int) {
	s.Flagged[index] = true
}

// Unflag clears a review mark. Idempotent.
func (s *Session) Unflag(index int) {
	delete(s.Flagged, index)
}

// TimeRemaining returns whole minutes left on the clock, floored at zero.
func (s *Session) TimeRemaining() int {
	elapsed := s.clock().Sub(s.StartTime).Minutes()
	remaining := float64(s.Config.TimeLimitMinutes) - elapsed
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// TimeWarning returns the label of the first threshold (checked 10, then 30,
// then 60 minutes) that matches the remaining time and has not fired yet,
// marking it fired. The check stops at the first matching threshold even
// when that one already fired, so a threshold skipped by a time jump stays
// skipped. The second return is false when no warning is due.
func (s *Session) TimeWarning() (string, bool) {
	remaining := s.TimeRemaining()
	for _, th := range warningThresholds {
		if remaining > th.Minutes {
			continue
		}
		if s.warningGiven(th.Label) {
			return "", false
		}
		s.WarningsGiven = append(s.WarningsGiven, th.Label)
		return th.Label, true
	}
	return "", false
}

func (s *Session) warningGiven(label string) bool {
	for _, w := range s.WarningsGiven {
		if w == label {
			return true
		}
	}
	return false
}

// AutoSubmitCheck reports whether the time limit is spent. It is a pure
// query; the caller decides to run the completion path.
func (s *Session) AutoSubmitCheck() bool {
	return s.TimeRemaining() <= 0
}

// Finish completes the session and scores it. Unanswered questions count as
// wrong. Calling Finish on an already completed session returns the stored
// result unchanged; the status transition happens exactly once.
func (s *Session) Finish() *Result {
	if s.Status == StatusCompleted {
		return s.Results
	}
	return s.finish()
}

func (s *Session) finish() *Result {
	s.Status = StatusCompleted
	end := s.clock()
	s.EndTime = &end

	result := scoreSession(s)
	s.Results = &result
	return s.Results
}

// Summary reports progress and time info for an in-flight session.
func (s *Session) Summary() Summary {
	return Summary{
		ExamID:   s.ExamID,
		ExamType: s.ExamType,
		Status:   s.Status,
		Progress: SummaryProgress{
			CurrentQuestion:   s.CurrentQuestion,
			TotalQuestions:    len(s.Questions),
			AnsweredQuestions: len(s.Answers),
			FlaggedQuestions:  len(s.Flagged),
		},
		TimeInfo: SummaryTime{
			RemainingMinutes: s.TimeRemaining(),
			TimeLimitMinutes: s.Config.TimeLimitMinutes,
		},
	}
}

// SetClock restores the injected time source, needed after a session round-
// trips through JSON in the store.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Session) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
