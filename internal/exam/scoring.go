package exam

import (
	"fmt"
	"strings"
)

// Recommendation thresholds. Evaluated in a fixed order so the same inputs
// always yield the same list.
const (
	tierExcellent     = 0.8
	tierPassing       = 0.6
	weakCategoryBar   = 0.6
	weakBasicBar      = 0.5
	weakAdvancedBar   = 0.4
	questionTextLimit = 100
)

// scoreSession produces the deterministic result record for a finished
// session. Unanswered questions score as empty answers, never as errors.
func scoreSession(s *Session) Result {
	total := len(s.Questions)
	correct := 0
	categoryScores := make(map[string]BucketScore)
	difficultyScores := make(map[string]BucketScore)
	detailed := make([]QuestionResult, 0, total)

	// Map iteration order is not stable, so remember first-appearance order
	// for the weak-category message.
	var categoryOrder []string

	for i, q := range s.Questions {
		userAnswer := s.Answers[i].Answer
		isCorrect := userAnswer == q.CorrectAnswer
		if isCorrect {
			correct++
		}

		if _, seen := categoryScores[q.Category]; !seen {
			categoryOrder = append(categoryOrder, q.Category)
		}
		cs := categoryScores[q.Category]
		cs.Total++
		if isCorrect {
			cs.Correct++
		}
		categoryScores[q.Category] = cs

		ds := difficultyScores[q.Difficulty]
		ds.Total++
		if isCorrect {
			ds.Correct++
		}
		difficultyScores[q.Difficulty] = ds

		detailed = append(detailed, QuestionResult{
			QuestionID:       q.ID,
			QuestionNumber:   i + 1,
			Category:         q.Category,
			Difficulty:       q.Difficulty,
			UserAnswer:       userAnswer,
			CorrectAnswer:    q.CorrectAnswer,
			IsCorrect:        isCorrect,
			TimeSpentSeconds: s.Answers[i].TimeSpentSeconds,
			QuestionText:     truncateText(q.Text, questionTextLimit),
		})
	}

	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total)
	}

	totalMinutes := 0.0
	if s.EndTime != nil {
		totalMinutes = s.EndTime.Sub(s.StartTime).Minutes()
	}

	totalAnswerSeconds := 0.0
	for _, a := range s.Answers {
		totalAnswerSeconds += a.TimeSpentSeconds
	}
	avgPerQuestion := 0.0
	if len(s.Answers) > 0 {
		avgPerQuestion = totalAnswerSeconds / float64(len(s.Answers))
	}

	return Result{
		ExamID:             s.ExamID,
		ExamType:           s.ExamType,
		Score:              score,
		Percentage:         score * 100,
		Passed:             score >= s.Config.PassingScore,
		PassingScore:       s.Config.PassingScore * 100,
		CorrectAnswers:     correct,
		IncorrectAnswers:   total - correct,
		TotalQuestions:     total,
		CategoryScores:     categoryScores,
		DifficultyScores:   difficultyScores,
		TotalTimeMinutes:   totalMinutes,
		AvgTimePerQuestion: avgPerQuestion,
		TimeEfficiency:     timeEfficiency(totalMinutes, float64(s.Config.TimeLimitMinutes)),
		DetailedResults:    detailed,
		ExamDate:           s.StartTime.Format("2006-01-02"),
		Recommendations:    recommendations(score, categoryScores, categoryOrder, difficultyScores),
	}
}

// timeEfficiency classifies the used/limit ratio into qualitative bands.
// A non-positive limit yields "unknown" rather than a division crash.
func timeEfficiency(usedMinutes, limitMinutes float64) string {
	if limitMinutes <= 0 {
		return "unknown"
	}
	ratio := usedMinutes / limitMinutes
	switch {
	case ratio < 0.7:
		return "excellent"
	case ratio < 0.9:
		return "good"
	case ratio < 1.0:
		return "adequate"
	default:
		return "overtime"
	}
}

// recommendations builds the rule-based advice list: overall tier first, then
// one line naming every weak category, then basic/advanced difficulty notes.
func recommendations(overall float64, categories map[string]BucketScore, categoryOrder []string, difficulties map[string]BucketScore) []string {
	recs := make([]string, 0, 4)

	switch {
	case overall >= tierExcellent:
		recs = append(recs, "Excellent result! Keep up the steady study pace to push even higher.")
	case overall >= tierPassing:
		recs = append(recs, "You are at passing level. Shore up your weak areas to make the pass certain.")
	default:
		recs = append(recs, "A review of the fundamentals is needed. Focus your study on the core topics.")
	}

	var weak []string
	for _, category := range categoryOrder {
		bs := categories[category]
		if bs.Total > 0 && float64(bs.Correct)/float64(bs.Total) < weakCategoryBar {
			weak = append(weak, category)
		}
	}
	if len(weak) > 0 {
		recs = append(recs, fmt.Sprintf("Weak areas: focus additional study on %s.", strings.Join(weak, ", ")))
	}

	if bs, ok := difficulties[DifficultyBasic]; ok && bs.Total > 0 {
		if float64(bs.Correct)/float64(bs.Total) < weakBasicBar {
			recs = append(recs, "Accuracy on basic questions is low. Prioritize reviewing fundamental knowledge.")
		}
	}
	if bs, ok := difficulties[DifficultyAdvanced]; ok && bs.Total > 0 {
		if float64(bs.Correct)/float64(bs.Total) < weakAdvancedBar {
			recs = append(recs, "Advanced questions need more work. Add applied practice problems to your routine.")
		}
	}

	return recs
}

func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
