package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz/internal/domain"
)

// UserRepository keeps users and their results in two tables. Save replaces
// both inside one transaction, so a failed write leaves the old document intact.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Load(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT login, password, birth_date FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users := []domain.User{}
	index := make(map[string]int)
	for rows.Next() {
		u := domain.User{Results: []domain.Result{}}
		if err := rows.Scan(&u.Login, &u.Password, &u.BirthDate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		index[u.Login] = len(users)
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT login, quiz_name, score, taken_at FROM results ORDER BY login, seq`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			login  string
			result domain.Result
		)
		if err := rows.Scan(&login, &result.QuizName, &result.Score, &result.Date); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		i, ok := index[login]
		if !ok {
			return nil, fmt.Errorf("result for unknown login %q", login)
		}
		users[i].Results = append(users[i].Results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, users []domain.User) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM results`); err != nil {
			return fmt.Errorf("clear results: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}

		batch := &pgx.Batch{}
		for i, u := range users {
			batch.Queue(`INSERT INTO users (position, login, password, birth_date) VALUES ($1, $2, $3, $4)`,
				i, u.Login, u.Password, u.BirthDate.UTC())
		}
		for _, u := range users {
			for seq, res := range u.Results {
				batch.Queue(`INSERT INTO results (login, seq, quiz_name, score, taken_at) VALUES ($1, $2, $3, $4, $5)`,
					u.Login, seq, res.QuizName, res.Score, res.Date.UTC().Truncate(time.Microsecond))
			}
		}
		if batch.Len() == 0 {
			return nil
		}
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert users: %w", err)
			}
		}
		return br.Close()
	})
}
