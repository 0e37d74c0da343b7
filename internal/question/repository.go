package question

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/examforge/examsim/internal/exam"
)

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads the curated question bank from Postgres.
type Repository struct {
	db rowQuerier
}

func NewRepository(db rowQuerier) *Repository {
	return &Repository{db: db}
}

const poolQuery = `
SELECT qid, category, difficulty, question_text,
       option_a, option_b, option_c, option_d, correct_answer
FROM questions
ORDER BY qid`

// FetchPool retrieves the full bank. Selection quotas are applied in memory,
// so there is no per-category filtering at the SQL layer.
func (r *Repository) FetchPool(ctx context.Context) ([]exam.Question, error) {
	rows, err := r.db.Query(ctx, poolQuery)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var pool []exam.Question
	for rows.Next() {
		var q exam.Question
		if err := rows.Scan(
			&q.ID, &q.Category, &q.Difficulty, &q.Text,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer,
		); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		pool = append(pool, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return pool, nil
}
