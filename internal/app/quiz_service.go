package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz/internal/bank"
	"trivia-quiz/internal/domain"
)

// QuizService runs quiz sessions against a question bank and records the
// results in a UserStore.
type QuizService struct {
	bank  *bank.Bank
	users *UserStore
	now   func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// ServiceOption customises a QuizService.
type ServiceOption func(*QuizService)

// WithRand replaces the random source used for mixed sessions.
func WithRand(rnd *rand.Rand) ServiceOption {
	return func(s *QuizService) { s.rnd = rnd }
}

// WithClock replaces the clock that timestamps results.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(b *bank.Bank, users *UserStore, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		bank:  b,
		users: users,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank exposes the question bank the service draws from.
func (s *QuizService) Bank() *bank.Bank {
	return s.bank
}

// NewSession resolves sel into a question sequence. An out-of-range index
// fails before any session exists.
func (s *QuizService) NewSession(sel Selection) (*QuizSession, error) {
	if sel.mixed {
		return newQuizSession(domain.MixedQuizName, s.drawMixed(), s.now), nil
	}
	quiz, ok := s.bank.Quiz(sel.index)
	if !ok {
		return nil, &domain.InputRangeError{Index: sel.index + 1, Max: s.bank.Len()}
	}
	return newQuizSession(quiz.Name, quiz.Questions, s.now), nil
}

// drawMixed picks one question uniformly from each quiz, re-rolled on every call.
func (s *QuizService) drawMixed() []domain.Question {
	quizzes := s.bank.Quizzes()
	questions := make([]domain.Question, 0, len(quizzes))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, quiz := range quizzes {
		questions = append(questions, quiz.Questions[s.rnd.Intn(len(quiz.Questions))])
	}
	return questions
}

// Play runs one session for login and appends the result to the user's history.
func (s *QuizService) Play(ctx context.Context, login string, sel Selection, answers AnswerSource) (domain.Result, error) {
	if _, ok := s.users.User(login); !ok {
		return domain.Result{}, domain.ErrUserNotFound
	}

	session, err := s.NewSession(sel)
	if err != nil {
		return domain.Result{}, err
	}

	result, err := session.Run(ctx, answers)
	if err != nil {
		return domain.Result{}, err
	}

	if err := s.users.AppendResult(ctx, login, result); err != nil {
		return result, err
	}
	return result, nil
}
