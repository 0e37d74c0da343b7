package exam

import (
	"time"
)

// Difficulty constants for readability.
const (
	DifficultyBasic    = "basic"
	DifficultyStandard = "standard"
	DifficultyAdvanced = "advanced"
)

// Session lifecycle states. Transitions are one-way: in_progress -> completed.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Answer letters. A question always carries exactly four options.
var optionLetters = [4]string{"A", "B", "C", "D"}

// Question is a single multiple-choice item as delivered by the question bank.
// The engine never mutates bank records; randomization works on copies.
type Question struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	Text          string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"` // server-side only, one of A-D
}

// Options returns the four option texts in slot order.
func (q Question) Options() [4]string {
	return [4]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// CategoryQuota is one category's slot count within a config. Quotas are kept
// as an ordered slice so selection (and its logging) walks categories in
// declaration order rather than map order.
type CategoryQuota struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DifficultyRatio is one difficulty's share of a category quota.
type DifficultyRatio struct {
	Difficulty string  `json:"difficulty"`
	Ratio      float64 `json:"ratio"`
}

// Config describes one named mock-exam variant. Configs are immutable after
// construction; the registry hands out copies of the quota slices.
type Config struct {
	Name             string            `json:"name"`
	Title            string            `json:"title"`
	TotalQuestions   int               `json:"total_questions"`
	TimeLimitMinutes int               `json:"time_limit_minutes"`
	PassingScore     float64           `json:"passing_score"` // ratio 0..1
	Categories       []CategoryQuota   `json:"category_distribution"`
	Difficulties     []DifficultyRatio `json:"difficulty_distribution"`
}

// AnswerRecord stores one submitted answer with timing. Entries are written
// once and never revised.
type AnswerRecord struct {
	Answer           string    `json:"answer"`
	TimeSpentSeconds float64   `json:"time_spent"`
	Timestamp        time.Time `json:"timestamp"`
}

// Session is the per-user exam state machine. It is plain data plus an
// injected clock; it is not safe for concurrent mutation and expects the
// caller to serialize access (the Redis store lock does this at the service
// layer).
type Session struct {
	ExamID           string               `json:"exam_id"`
	ExamType         string               `json:"exam_type"`
	Config           Config               `json:"config"`
	Questions        []Question           `json:"questions"`
	StartTime        time.Time            `json:"start_time"`
	EndTime          *time.Time           `json:"end_time,omitempty"`
	CurrentQuestion  int                  `json:"current_question"`
	Answers          map[int]AnswerRecord `json:"answers"`
	Flagged          map[int]bool         `json:"flagged_questions"`
	Status           string               `json:"status"`
	WarningsGiven    []string             `json:"warnings_given"`
	Results          *Result              `json:"results,omitempty"`

	now func() time.Time
}

// Progress is the non-terminal return value of SubmitAnswer.
type Progress struct {
	NextQuestion       int `json:"next_question"`
	RemainingQuestions int `json:"remaining_questions"`
}

// BucketScore tallies correctness within one category or difficulty.
type BucketScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// QuestionResult is the per-question line of a scored exam.
type QuestionResult struct {
	QuestionID       string  `json:"question_id"`
	QuestionNumber   int     `json:"question_number"`
	Category         string  `json:"category"`
	Difficulty       string  `json:"difficulty"`
	UserAnswer       string  `json:"user_answer"`
	CorrectAnswer    string  `json:"correct_answer"`
	IsCorrect        bool    `json:"is_correct"`
	TimeSpentSeconds float64 `json:"time_spent"`
	QuestionText     string  `json:"question_text"`
}

// Result is the immutable scored outcome of a completed session.
type Result struct {
	ExamID             string                 `json:"exam_id"`
	ExamType           string                 `json:"exam_type"`
	Score              float64                `json:"score"`
	Percentage         float64                `json:"percentage"`
	Passed             bool                   `json:"passed"`
	PassingScore       float64                `json:"passing_score"` // percentage
	CorrectAnswers     int                    `json:"correct_answers"`
	IncorrectAnswers   int                    `json:"incorrect_answers"`
	TotalQuestions     int                    `json:"total_questions"`
	CategoryScores     map[string]BucketScore `json:"category_scores"`
	DifficultyScores   map[string]BucketScore `json:"difficulty_scores"`
	TotalTimeMinutes   float64                `json:"total_time_minutes"`
	AvgTimePerQuestion float64                `json:"avg_time_per_question"`
	TimeEfficiency     string                 `json:"time_efficiency"`
	DetailedResults    []QuestionResult       `json:"detailed_results"`
	ExamDate           string                 `json:"exam_date"`
	Recommendations    []string               `json:"recommendations"`
}

// Summary is a progress snapshot for an in-flight session.
type Summary struct {
	ExamID   string          `json:"exam_id"`
	ExamType string          `json:"exam_type"`
	Status   string          `json:"status"`
	Progress SummaryProgress `json:"progress"`
	TimeInfo SummaryTime     `json:"time_info"`
}

type SummaryProgress struct {
	CurrentQuestion   int `json:"current_question"`
	TotalQuestions    int `json:"total_questions"`
	AnsweredQuestions int `json:"answered_questions"`
	FlaggedQuestions  int `json:"flagged_questions"`
}

type SummaryTime struct {
	RemainingMinutes int `json:"remaining_minutes"`
	TimeLimitMinutes int `json:"time_limit_minutes"`
}
