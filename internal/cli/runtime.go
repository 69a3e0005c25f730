package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"trivia-quiz/internal/app"
	"trivia-quiz/internal/bank"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/file"
	pgstore "trivia-quiz/internal/infra/postgres"
	redisstore "trivia-quiz/internal/infra/redis"
	"trivia-quiz/internal/infra/sqlite"
)

// runtime holds the state objects built once at startup and passed to every command.
type runtime struct {
	cfg     config.Config
	bank    *bank.Bank
	users   *app.UserStore
	quizzes *app.QuizService
	board   *app.Leaderboard
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func openRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	var pool *pgxpool.Pool
	if cfg.Store.Backend == "postgres" || cfg.Bank.Source == "postgres" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
	}

	b, err := loadBank(ctx, cfg, pool)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.bank = b

	repo, err := openUserRepository(ctx, cfg, pool, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	users, err := app.OpenUserStore(ctx, repo, app.WithBcryptCost(cfg.Auth.BcryptCost))
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.users = users
	rt.quizzes = app.NewQuizService(b, users)
	rt.board = app.NewLeaderboard(users)
	log.Printf("loaded %d quizzes (%s) and %d users (%s store)", b.Len(), cfg.Bank.Source, users.Len(), cfg.Store.Backend)
	return rt, nil
}

func loadBank(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (*bank.Bank, error) {
	switch cfg.Bank.Source {
	case "file":
		return bank.LoadFile(cfg.Bank.Path)
	case "postgres":
		quizzes, err := pgstore.NewQuizLoader(pool).LoadQuizzes(ctx)
		if err != nil {
			return nil, err
		}
		return bank.New(quizzes)
	default:
		return bank.Default(), nil
	}
}

func openUserRepository(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, rt *runtime) (app.UserRepository, error) {
	switch cfg.Store.Backend {
	case "redis":
		timeout := config.Duration(cfg.Redis.Timeout, 5*time.Second)
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		repo := redisstore.NewUserRepository(client, cfg.Redis.Key)
		if savedAt, err := repo.SavedAt(ctx); err == nil && !savedAt.IsZero() {
			log.Printf("redis users last saved at %s", savedAt.Format(time.RFC3339))
		}
		return repo, nil
	case "postgres":
		return pgstore.NewUserRepository(pool), nil
	case "sqlite":
		repo, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = repo.Close() })
		return repo, nil
	default:
		return file.NewUserRepository(cfg.Store.Path), nil
	}
}
