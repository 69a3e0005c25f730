package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestRegisterRejectsDuplicateLogin(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if _, err := store.Register(ctx, "alice", "pw1", birthDate()); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := store.Register(ctx, "alice", "pw2", birthDate())
	if !errors.Is(err, domain.ErrDuplicateLogin) {
		t.Fatalf("expected duplicate login error, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 user, got %d", store.Len())
	}
	if _, err := store.Authenticate("alice", "pw1"); err != nil {
		t.Fatalf("expected original password to survive: %v", err)
	}
	if _, err := store.Authenticate("alice", "pw2"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected second password to be rejected, got %v", err)
	}
}

func TestLoginsAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if _, err := store.Register(ctx, "alice", "pw", birthDate()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.Register(ctx, "Alice", "pw", birthDate()); err != nil {
		t.Fatalf("expected differently cased login to register: %v", err)
	}
	if _, err := store.Authenticate("ALICE", "pw"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected unknown login to fail, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Register(context.Background(), " ", "", birthDate())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) != 2 {
		t.Fatalf("expected two validation problems, got %v", err)
	}
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	long := strings.Repeat("p", 80)

	_, err := store.Register(ctx, "alice", long, birthDate())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on register, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no user to be stored")
	}

	if _, err := store.Register(ctx, "alice", strings.Repeat("p", 72), birthDate()); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}
	err = store.UpdateSettings(ctx, "alice", app.SettingsUpdate{Password: &long})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error on update, got %v", err)
	}
}

func TestPasswordsAreHashed(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	if _, err := store.Register(ctx, "bob", "secret", birthDate()); err != nil {
		t.Fatalf("register: %v", err)
	}
	stored, _ := repo.Load(ctx)
	if stored[0].Password == "secret" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored[0].Password), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}
}

func TestAuthenticateDoesNotDistinguishFailures(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, _ = store.Register(ctx, "bob", "secret", birthDate())

	_, unknown := store.Authenticate("nobody", "secret")
	_, wrong := store.Authenticate("bob", "nope")
	if unknown != wrong || !errors.Is(unknown, domain.ErrAuthentication) {
		t.Fatalf("expected identical failures, got %v and %v", unknown, wrong)
	}

	user, err := store.Authenticate("bob", "secret")
	if err != nil || user.Login != "bob" {
		t.Fatalf("expected bob, got %+v (%v)", user, err)
	}
}

func TestUpdateSettingsInvalidatesOldPassword(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, _ = store.Register(ctx, "bob", "old", birthDate())

	newPassword := "new"
	newBirth := time.Date(1991, 2, 3, 0, 0, 0, 0, time.UTC)
	if err := store.UpdateSettings(ctx, "bob", app.SettingsUpdate{Password: &newPassword, BirthDate: &newBirth}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.Authenticate("bob", "old"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected old password to fail, got %v", err)
	}
	user, err := store.Authenticate("bob", "new")
	if err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if !user.BirthDate.Equal(newBirth) {
		t.Fatalf("expected birth date %v, got %v", newBirth, user.BirthDate)
	}

	if err := store.UpdateSettings(ctx, "ghost", app.SettingsUpdate{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestFailedSaveKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)
	_, _ = store.Register(ctx, "bob", "pw", birthDate())

	repo.FailSave = errors.New("disk full")
	err := store.AppendResult(ctx, "bob", domain.Result{QuizName: "Harry Potter", Score: 3, Date: birthDate()})
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := store.Register(ctx, "carol", "pw", birthDate()); !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}

	user, _ := store.User("bob")
	if len(user.Results) != 0 || store.Len() != 1 {
		t.Fatalf("failed writes leaked into memory: %+v, %d users", user, store.Len())
	}

	repo.FailSave = nil
	if err := store.AppendResult(ctx, "bob", domain.Result{QuizName: "Harry Potter", Score: 3, Date: birthDate()}); err != nil {
		t.Fatalf("append after recovery: %v", err)
	}
}

func TestEveryMutationWritesThrough(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	_, _ = store.Register(ctx, "bob", "pw", birthDate())
	_ = store.AppendResult(ctx, "bob", domain.Result{QuizName: "Mixed", Score: 1, Date: birthDate()})
	pw := "pw2"
	_ = store.UpdateSettings(ctx, "bob", app.SettingsUpdate{Password: &pw})
	if repo.Saves() != 3 {
		t.Fatalf("expected 3 writes, got %d", repo.Saves())
	}
}

func TestReopenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestStore(t)

	_, _ = store.Register(ctx, "alice", "pw", birthDate())
	_, _ = store.Register(ctx, "bob", "pw", birthDate())
	base := time.Date(2024, 1, 1, 12, 0, 0, 123456789, time.UTC)
	for i := 0; i < 3; i++ {
		r := domain.Result{QuizName: "Harry Potter", Score: i, Date: base.Add(time.Duration(i) * time.Second)}
		if err := store.AppendResult(ctx, "alice", r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	reopened, err := app.OpenUserStore(ctx, repo, app.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	before, after := store.AllUsers(), reopened.AllUsers()
	if len(before) != len(after) {
		t.Fatalf("user count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Login != after[i].Login || before[i].Password != after[i].Password || len(before[i].Results) != len(after[i].Results) {
			t.Fatalf("user %d differs: %+v vs %+v", i, before[i], after[i])
		}
		for j := range before[i].Results {
			if before[i].Results[j] != after[i].Results[j] {
				t.Fatalf("result %d/%d differs", i, j)
			}
		}
	}
}

func TestOpenRejectsDuplicateStoredLogins(t *testing.T) {
	repo := memory.NewUserRepository(domain.User{Login: "x"}, domain.User{Login: "x"})
	_, err := app.OpenUserStore(context.Background(), repo, app.WithBcryptCost(bcrypt.MinCost))
	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func newTestStore(t *testing.T) (*app.UserStore, *memory.UserRepository) {
	t.Helper()
	repo := memory.NewUserRepository()
	store, err := app.OpenUserStore(context.Background(), repo, app.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, repo
}

func birthDate() time.Time {
	return time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
}
