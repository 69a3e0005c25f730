package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

const (
	birthDateLayout = "2006-01-02"
	displayLayout   = "2006-01-02 15:04:05"
)

// Shell is the line-oriented menu around the quiz core.
type Shell struct {
	in      *bufio.Scanner
	out     io.Writer
	users   *app.UserStore
	quizzes *app.QuizService
	board   *app.Leaderboard
	topSize int
}

func NewShell(in io.Reader, out io.Writer, users *app.UserStore, quizzes *app.QuizService, board *app.Leaderboard, topSize int) *Shell {
	return &Shell{
		in:      bufio.NewScanner(in),
		out:     out,
		users:   users,
		quizzes: quizzes,
		board:   board,
		topSize: topSize,
	}
}

// Run drives the top-level menu until Exit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	for {
		choice, err := s.prompt("1. Login\n2. Register\n3. Exit\n")
		if err != nil {
			return s.finish(err)
		}

		var login string
		switch choice {
		case "1":
			login, err = s.login()
		case "2":
			login, err = s.register(ctx)
		case "3":
			s.printf("Goodbye!\n")
			return nil
		default:
			s.printf("Invalid option. Try again.\n")
		}
		if err != nil {
			return s.finish(err)
		}

		if login != "" {
			if err := s.mainMenu(ctx, login); err != nil {
				return s.finish(err)
			}
		}
	}
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		s.printf("Goodbye!\n")
		return nil
	}
	return err
}

func (s *Shell) login() (string, error) {
	login, err := s.prompt("Login: ")
	if err != nil {
		return "", err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return "", err
	}
	user, err := s.users.Authenticate(login, password)
	if err != nil {
		s.printf("Wrong login or password!\n")
		return "", nil
	}
	return user.Login, nil
}

func (s *Shell) register(ctx context.Context) (string, error) {
	login, err := s.prompt("Enter login: ")
	if err != nil {
		return "", err
	}
	if _, exists := s.users.User(login); exists {
		s.printf("Login already exists!\n")
		return "", nil
	}
	password, err := s.prompt("Enter password: ")
	if err != nil {
		return "", err
	}
	birth, ok, err := s.promptDate("Enter birth date (yyyy-mm-dd): ")
	if err != nil || !ok {
		return "", err
	}

	user, err := s.users.Register(ctx, login, password, birth)
	if err != nil {
		s.report(err)
		return "", nil
	}
	s.printf("Registration successful!\n")
	return user.Login, nil
}

func (s *Shell) mainMenu(ctx context.Context, login string) error {
	for {
		choice, err := s.prompt("\nMenu:\n1. Start new quiz\n2. View my results\n3. Top-%d\n4. Settings\n5. Logout\n", s.topSize)
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = s.startQuiz(ctx, login)
		case "2":
			s.showResults(login)
		case "3":
			s.showTop()
		case "4":
			err = s.changeSettings(ctx, login)
		case "5":
			return nil
		default:
			s.printf("Invalid choice!\n")
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) startQuiz(ctx context.Context, login string) error {
	b := s.quizzes.Bank()
	s.printf("\nChoose a quiz:\n")
	for i, quiz := range b.Quizzes() {
		s.printf("%d. %s\n", i+1, quiz.Name)
	}
	s.printf("%d. Random mixed quiz\n", b.Len()+1)

	raw, err := s.prompt("")
	if err != nil {
		return err
	}
	sel, ok := parseSelection(raw, b.Len())
	if !ok {
		s.printf("Invalid choice!\n")
		return nil
	}

	var total int
	answers := app.AnswerFunc(func(ctx context.Context, p app.Prompt) ([]int, error) {
		total = p.Total
		return s.askQuestion(p)
	})
	result, err := s.quizzes.Play(ctx, login, sel, answers)
	if errors.Is(err, io.EOF) {
		return err
	}
	var perr *domain.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		s.report(err)
		return nil
	}
	s.printf("\nYou scored %d/%d correct answers!\n", result.Score, total)
	if perr != nil {
		s.report(perr)
	}
	return nil
}

func (s *Shell) askQuestion(p app.Prompt) ([]int, error) {
	s.printf("\n%s\n", p.Text)
	for i, opt := range p.Options {
		s.printf("%d. %s\n", i+1, opt)
	}
	for {
		line, err := s.prompt("Enter correct answer numbers separated by space:\n")
		if err != nil {
			return nil, err
		}
		answers, err := ParseAnswers(line)
		if err == nil {
			return answers, nil
		}
		s.printf("Please enter option numbers only.\n")
	}
}

func (s *Shell) showResults(login string) {
	user, ok := s.users.User(login)
	if !ok {
		s.report(domain.ErrUserNotFound)
		return
	}
	s.printf("\nYour past results:\n")
	if len(user.Results) == 0 {
		s.printf("No results yet.\n")
	}
	for _, r := range user.Results {
		s.printf("%s - %d points - %s\n", r.QuizName, r.Score, r.Date.Local().Format(displayLayout))
	}
}

func (s *Shell) showTop() {
	s.printf("\nTop-%d players:\n", s.topSize)
	for i, e := range s.board.Top(s.topSize) {
		s.printf("%d. %s - %s - %d points - %s\n", i+1, e.Login, e.QuizName, e.Score, e.Date.Local().Format(displayLayout))
	}
}

func (s *Shell) changeSettings(ctx context.Context, login string) error {
	choice, err := s.prompt("1. Change password\n2. Change birth date\n")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		password, err := s.prompt("Enter new password: ")
		if err != nil {
			return err
		}
		if err := s.users.UpdateSettings(ctx, login, app.SettingsUpdate{Password: &password}); err != nil {
			s.report(err)
			return nil
		}
		s.printf("Password changed!\n")
	case "2":
		birth, ok, err := s.promptDate("Enter new birth date (yyyy-mm-dd): ")
		if err != nil || !ok {
			return err
		}
		if err := s.users.UpdateSettings(ctx, login, app.SettingsUpdate{BirthDate: &birth}); err != nil {
			s.report(err)
			return nil
		}
		s.printf("Birth date changed!\n")
	default:
		s.printf("Invalid choice!\n")
	}
	return nil
}

func (s *Shell) promptDate(label string) (time.Time, bool, error) {
	raw, err := s.prompt("%s", label)
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		s.printf("Invalid date, expected yyyy-mm-dd.\n")
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func (s *Shell) report(err error) {
	var (
		verr *domain.ValidationError
		rerr *domain.InputRangeError
		perr *domain.PersistenceError
	)
	switch {
	case errors.Is(err, domain.ErrDuplicateLogin):
		s.printf("Login already exists!\n")
	case errors.As(err, &verr):
		s.printf("Invalid input: %s\n", strings.Join(verr.Problems, "; "))
	case errors.As(err, &rerr):
		s.printf("Invalid choice! Pick a quiz between 1 and %d.\n", rerr.Max+1)
	case errors.As(err, &perr):
		s.printf("Could not save your data (%v). Please try again.\n", perr.Err)
	default:
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) prompt(format string, args ...any) (string, error) {
	if format != "" {
		s.printf(format, args...)
	}
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// ParseAnswers reads whitespace-separated 1-based option numbers.
func ParseAnswers(line string) ([]int, error) {
	fields := strings.Fields(line)
	answers := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q", f)
		}
		answers = append(answers, n)
	}
	return answers, nil
}

// parseSelection maps 1-based menu input to a selection: 1..n picks a quiz,
// n+1 or "m" picks mixed mode. Other numbers are passed through so the
// service can report the range error.
func parseSelection(raw string, n int) (app.Selection, bool) {
	if strings.EqualFold(raw, "m") || strings.EqualFold(raw, "mixed") {
		return app.MixedQuiz(), true
	}
	choice, err := strconv.Atoi(raw)
	if err != nil {
		return app.Selection{}, false
	}
	if choice == n+1 {
		return app.MixedQuiz(), true
	}
	return app.SingleQuiz(choice - 1), true
}
