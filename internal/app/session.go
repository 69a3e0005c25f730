package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"trivia-quiz/internal/domain"
)

// Selection picks what a session asks: one quiz by 0-based index, or one
// random question from every quiz.
type Selection struct {
	index int
	mixed bool
}

// SingleQuiz selects the quiz at the 0-based index i.
func SingleQuiz(i int) Selection {
	return Selection{index: i}
}

// MixedQuiz selects one random question per quiz.
func MixedQuiz() Selection {
	return Selection{mixed: true}
}

// IsMixed reports whether s is a mixed selection.
func (s Selection) IsMixed() bool {
	return s.mixed
}

func (s Selection) String() string {
	if s.mixed {
		return "mixed"
	}
	return fmt.Sprintf("quiz #%d", s.index+1)
}

// Prompt is what an AnswerSource is shown for one question. It carries no answers.
type Prompt struct {
	SessionID string
	QuizName  string
	Number    int
	Total     int
	Text      string
	Options   []string
}

// AnswerSource collects the submitted option indices for each prompt.
// Returning an error aborts the session without a result.
type AnswerSource interface {
	Answer(ctx context.Context, prompt Prompt) ([]int, error)
}

// AnswerFunc adapts a function to AnswerSource.
type AnswerFunc func(ctx context.Context, prompt Prompt) ([]int, error)

func (f AnswerFunc) Answer(ctx context.Context, prompt Prompt) ([]int, error) {
	return f(ctx, prompt)
}

// QuizSession is a single-use run over a fixed question sequence.
type QuizSession struct {
	id        string
	quizName  string
	questions []domain.Question
	now       func() time.Time
	done      bool
}

func newQuizSession(quizName string, questions []domain.Question, now func() time.Time) *QuizSession {
	return &QuizSession{
		id:        uuid.NewString(),
		quizName:  quizName,
		questions: questions,
		now:       now,
	}
}

// ID identifies the session in logs and on the wire.
func (s *QuizSession) ID() string {
	return s.id
}

// QuizName is the name recorded on the result.
func (s *QuizSession) QuizName() string {
	return s.quizName
}

// Len is the number of questions the session asks.
func (s *QuizSession) Len() int {
	return len(s.questions)
}

// Run asks every question in order and returns the scored result, timestamped
// at completion.
func (s *QuizSession) Run(ctx context.Context, answers AnswerSource) (domain.Result, error) {
	if s.done {
		return domain.Result{}, domain.ErrSessionUsed
	}
	s.done = true

	score := 0
	for i, q := range s.questions {
		if err := ctx.Err(); err != nil {
			return domain.Result{}, err
		}
		submitted, err := answers.Answer(ctx, Prompt{
			SessionID: s.id,
			QuizName:  s.quizName,
			Number:    i + 1,
			Total:     len(s.questions),
			Text:      q.Text,
			Options:   append([]string(nil), q.Options...),
		})
		if err != nil {
			return domain.Result{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		if Evaluate(q, submitted) {
			score++
		}
	}

	return domain.Result{
		QuizName: s.quizName,
		Score:    score,
		Date:     s.now(),
	}, nil
}
