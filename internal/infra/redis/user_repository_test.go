package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"trivia-quiz/internal/domain"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	repo := NewUserRepository(newClient(mr), "")

	users, err := repo.Load(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty store, got %v (%v)", users, err)
	}

	want := sampleUsers()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists(DefaultKey) || !mr.Exists(DefaultKey+":saved_at") {
		t.Fatalf("expected document and timestamp keys to be set")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Login != "alice" || len(got[0].Results) != 2 {
		t.Fatalf("unexpected users %+v", got)
	}
	for i := range want[0].Results {
		if !got[0].Results[i].Date.Equal(want[0].Results[i].Date) || got[0].Results[i].Score != want[0].Results[i].Score {
			t.Fatalf("result %d differs: %+v vs %+v", i, got[0].Results[i], want[0].Results[i])
		}
	}
}

func TestUserRepositoryOverwritesDocument(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	repo := NewUserRepository(newClient(mr), "custom:users")
	_ = repo.Save(ctx, sampleUsers())
	if err := repo.Save(ctx, []domain.User{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := repo.Load(ctx)
	if len(got) != 0 {
		t.Fatalf("expected document to be replaced, got %d users", len(got))
	}
}

func TestUserRepositorySavedAt(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	repo := NewUserRepository(newClient(mr), "quiz:users")
	at := time.Date(2024, 6, 1, 12, 0, 0, 500, time.UTC)
	repo.clock = func() time.Time { return at }

	savedAt, err := repo.SavedAt(ctx)
	if err != nil || !savedAt.IsZero() {
		t.Fatalf("expected zero time before first save, got %v (%v)", savedAt, err)
	}
	if err := repo.Save(ctx, sampleUsers()); err != nil {
		t.Fatalf("save: %v", err)
	}
	savedAt, err = repo.SavedAt(ctx)
	if err != nil {
		t.Fatalf("saved at: %v", err)
	}
	if !savedAt.Equal(at) {
		t.Fatalf("expected %v, got %v", at, savedAt)
	}
}

func TestUserRepositoryReportsUnavailableServer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	if _, err := NewUserRepository(client, "").Load(context.Background()); err == nil {
		t.Fatalf("expected error from closed server")
	}
}

func sampleUsers() []domain.User {
	base := time.Date(2024, 6, 1, 9, 30, 0, 123456789, time.UTC)
	return []domain.User{{
		Login:     "alice",
		Password:  "$2a$04$hash",
		BirthDate: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Results: []domain.Result{
			{QuizName: "Harry Potter", Score: 3, Date: base},
			{QuizName: domain.MixedQuizName, Score: 1, Date: base.Add(time.Second)},
		},
	}}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
