package cli

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"trivia-quiz/internal/app"
	"trivia-quiz/internal/bank"
	"trivia-quiz/internal/infra/memory"
)

func TestShellFullSession(t *testing.T) {
	input := strings.Join([]string{
		"2", "alice", "pw1", "1990-05-17", // register (logs in)
		"1", "2", "1", "x 2", "3", "1", // Lord of the Rings: right, bad token then wrong, right
		"2",             // results
		"3",             // top
		"4", "1", "pw2", // change password
		"5",                 // logout
		"1", "alice", "pw1", // old password rejected
		"1", "alice", "pw2", // new password works
		"5",
		"3",
	}, "\n") + "\n"

	out, users := runShell(t, input)

	for _, want := range []string{
		"Registration successful!",
		"Who forged the One Ring?",
		"Please enter option numbers only.",
		"You scored 2/3 correct answers!",
		"Lord of the Rings - 2 points",
		"1. alice - Lord of the Rings - 2 points",
		"Password changed!",
		"Wrong login or password!",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	user, _ := users.User("alice")
	if len(user.Results) != 1 || user.Results[0].Score != 2 {
		t.Fatalf("unexpected results %+v", user.Results)
	}
}

func TestShellRejectsDuplicateRegistration(t *testing.T) {
	input := "2\nalice\npw1\n1990-05-17\n5\n2\nalice\n3\n"
	out, users := runShell(t, input)
	if !strings.Contains(out, "Login already exists!") {
		t.Fatalf("expected duplicate message\n%s", out)
	}
	if users.Len() != 1 {
		t.Fatalf("expected one user, got %d", users.Len())
	}
}

func TestShellHandlesBadInput(t *testing.T) {
	input := strings.Join([]string{
		"9",                            // invalid top-level option
		"2", "bob", "pw", "17/05/1990", // bad date
		"2", "bob", "pw", "1990-05-17",
		"1", "9", // quiz out of range
		"1", "three", // not a number
		"1", "3", "1", "1", // mixed quiz, two questions
		"5",
	}, "\n") + "\n" // input ends without Exit

	out, users := runShell(t, input)
	for _, want := range []string{
		"Invalid option. Try again.",
		"Invalid date, expected yyyy-mm-dd.",
		"Invalid choice! Pick a quiz between 1 and 3.",
		"Invalid choice!",
		"/2 correct answers!",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	user, _ := users.User("bob")
	if len(user.Results) != 1 || user.Results[0].QuizName != "Mixed" {
		t.Fatalf("expected one mixed result, got %+v", user.Results)
	}
}

func TestShellChangesBirthDate(t *testing.T) {
	input := strings.Join([]string{
		"2", "carol", "pw", "1990-05-17",
		"4", "2", "2001-12-31",
		"5",
		"3",
	}, "\n") + "\n"

	out, users := runShell(t, input)
	for _, want := range []string{
		"Enter new birth date (yyyy-mm-dd): ",
		"Birth date changed!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "%!") {
		t.Fatalf("garbled prompt in output\n%s", out)
	}
	user, _ := users.User("carol")
	if got := user.BirthDate.Format("2006-01-02"); got != "2001-12-31" {
		t.Fatalf("expected new birth date, got %s", got)
	}
}

func TestParseAnswers(t *testing.T) {
	got, err := ParseAnswers("  1 3\t2 ")
	if err != nil || len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 2 {
		t.Fatalf("unexpected %v (%v)", got, err)
	}
	if _, err := ParseAnswers("1 b"); err == nil {
		t.Fatalf("expected error for non-numeric token")
	}
	if got, err := ParseAnswers(""); err != nil || len(got) != 0 {
		t.Fatalf("expected empty answer set, got %v (%v)", got, err)
	}
}

func runShell(t *testing.T, input string) (string, *app.UserStore) {
	t.Helper()
	users, err := app.OpenUserStore(context.Background(), memory.NewUserRepository(), app.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	quizzes := app.NewQuizService(bank.Default(), users, app.WithRand(rand.New(rand.NewSource(3))))
	var out bytes.Buffer
	shell := NewShell(strings.NewReader(input), &out, users, quizzes, app.NewLeaderboard(users), 20)
	if err := shell.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), users
}
