package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz/internal/domain"
)

// QuizLoader loads the question bank from the quizzes table, one JSONB row per quiz.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

// LoadQuizzes returns every quiz in position order. Validation is left to bank.New.
func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := l.pool.Query(ctx, `SELECT name, data FROM quizzes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var (
			name string
			raw  []byte
		)
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var questions []domain.Question
		if err := json.Unmarshal(raw, &questions); err != nil {
			return nil, fmt.Errorf("unmarshal quiz %q: %w", name, err)
		}
		quizzes = append(quizzes, domain.Quiz{Name: name, Questions: questions})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	return quizzes, nil
}

// SeedQuizzes replaces the stored bank with quizzes.
func SeedQuizzes(ctx context.Context, pool *pgxpool.Pool, quizzes []domain.Quiz) error {
	return pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quizzes`); err != nil {
			return fmt.Errorf("clear quizzes: %w", err)
		}
		for i, quiz := range quizzes {
			data, err := json.Marshal(quiz.Questions)
			if err != nil {
				return fmt.Errorf("marshal quiz %q: %w", quiz.Name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO quizzes (position, name, data) VALUES ($1, $2, $3::jsonb)`, i, quiz.Name, string(data)); err != nil {
				return fmt.Errorf("insert quiz %q: %w", quiz.Name, err)
			}
		}
		return nil
	})
}
