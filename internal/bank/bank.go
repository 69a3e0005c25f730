package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"trivia-quiz/internal/domain"
)

var validate = validator.New()

// Bank is the immutable catalog of quizzes. Build it with New, Default or LoadFile.
type Bank struct {
	quizzes []domain.Quiz
}

// New validates quizzes and freezes a private copy of them.
func New(quizzes []domain.Quiz) (*Bank, error) {
	if err := Validate(quizzes); err != nil {
		return nil, err
	}
	return &Bank{quizzes: copyQuizzes(quizzes)}, nil
}

// LoadFile reads a bank from a YAML or JSON file.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	var doc struct {
		Quizzes []domain.Quiz `json:"quizzes" yaml:"quizzes"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &domain.ValidationError{Problems: []string{fmt.Sprintf("decode %s: %v", path, err)}}
	}
	return New(doc.Quizzes)
}

// Len returns the number of quizzes.
func (b *Bank) Len() int {
	return len(b.quizzes)
}

// Quiz returns a copy of the quiz at the 0-based index i.
func (b *Bank) Quiz(i int) (domain.Quiz, bool) {
	if i < 0 || i >= len(b.quizzes) {
		return domain.Quiz{}, false
	}
	return copyQuiz(b.quizzes[i]), true
}

// Quizzes returns a copy of every quiz in bank order.
func (b *Bank) Quizzes() []domain.Quiz {
	return copyQuizzes(b.quizzes)
}

// Validate checks the structural rules of a question bank and reports every violation.
func Validate(quizzes []domain.Quiz) error {
	var problems []string
	if len(quizzes) == 0 {
		problems = append(problems, "bank has no quizzes")
	}
	seen := make(map[string]bool, len(quizzes))
	for qi, quiz := range quizzes {
		if err := validate.Struct(quiz); err != nil {
			problems = append(problems, describe(qi, err)...)
		}
		if quiz.Name != "" {
			if seen[quiz.Name] {
				problems = append(problems, fmt.Sprintf("quiz %d: duplicate name %q", qi+1, quiz.Name))
			}
			seen[quiz.Name] = true
		}
		if len(quiz.Questions) == 0 {
			problems = append(problems, fmt.Sprintf("quiz %d: no questions", qi+1))
		}
		for i, q := range quiz.Questions {
			if len(q.CorrectAnswers) == 0 {
				problems = append(problems, fmt.Sprintf("quiz %q question %d: no correct answer", quiz.Name, i+1))
			}
			for _, idx := range q.CorrectAnswers {
				if idx < 1 || idx > len(q.Options) {
					problems = append(problems, fmt.Sprintf("quiz %q question %d: correct answer %d out of range [1, %d]", quiz.Name, i+1, idx, len(q.Options)))
				}
			}
		}
	}
	if len(problems) > 0 {
		return &domain.ValidationError{Problems: problems}
	}
	return nil
}

func describe(quizIndex int, err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{fmt.Sprintf("quiz %d: %v", quizIndex+1, err)}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("quiz %d: %s fails %q", quizIndex+1, fe.Namespace(), fe.Tag()))
	}
	return out
}

func copyQuizzes(in []domain.Quiz) []domain.Quiz {
	out := make([]domain.Quiz, len(in))
	for i := range in {
		out[i] = copyQuiz(in[i])
	}
	return out
}

func copyQuiz(q domain.Quiz) domain.Quiz {
	out := domain.Quiz{Name: q.Name, Questions: make([]domain.Question, len(q.Questions))}
	for i, question := range q.Questions {
		out.Questions[i] = domain.Question{
			Text:           question.Text,
			Options:        append([]string(nil), question.Options...),
			CorrectAnswers: append([]int(nil), question.CorrectAnswers...),
		}
	}
	return out
}
