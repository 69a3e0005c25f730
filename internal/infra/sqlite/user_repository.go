package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite
	"trivia-quiz/internal/domain"
)

// UserRepository keeps the user collection in a local SQLite database.
// Timestamps are stored as RFC3339Nano text so nothing is lost on reload.
type UserRepository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*UserRepository, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	r := &UserRepository{db: db}
	if err := r.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return r, nil
}

func (r *UserRepository) Close() error {
	return r.db.Close()
}

func (r *UserRepository) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			position INTEGER NOT NULL,
			login TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			birth_date TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			login TEXT NOT NULL REFERENCES users(login) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			quiz_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			taken_at TEXT NOT NULL,
			PRIMARY KEY (login, seq)
		);`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) Load(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT login, password, birth_date FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users := []domain.User{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			u     = domain.User{Results: []domain.Result{}}
			birth string
		)
		if err := rows.Scan(&u.Login, &u.Password, &birth); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.BirthDate, err = time.Parse(time.RFC3339Nano, birth); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse birth date of %q: %w", u.Login, err)
		}
		index[u.Login] = len(users)
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `SELECT login, quiz_name, score, taken_at FROM results ORDER BY login, seq`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			login, takenAt string
			result         domain.Result
		)
		if err := rows.Scan(&login, &result.QuizName, &result.Score, &takenAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if result.Date, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
			return nil, fmt.Errorf("parse result date: %w", err)
		}
		i, ok := index[login]
		if !ok {
			return nil, fmt.Errorf("result for unknown login %q", login)
		}
		users[i].Results = append(users[i].Results, result)
	}
	return users, rows.Err()
}

func (r *UserRepository) Save(ctx context.Context, users []domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for i, u := range users {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (position, login, password, birth_date) VALUES (?, ?, ?, ?)`,
			i, u.Login, u.Password, u.BirthDate.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert user %q: %w", u.Login, err)
		}
		for seq, res := range u.Results {
			if _, err := tx.ExecContext(ctx, `INSERT INTO results (login, seq, quiz_name, score, taken_at) VALUES (?, ?, ?, ?, ?)`,
				u.Login, seq, res.QuizName, res.Score, res.Date.Format(time.RFC3339Nano)); err != nil {
				return fmt.Errorf("insert result for %q: %w", u.Login, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
