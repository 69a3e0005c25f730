package domain

import "time"

// MixedQuizName is recorded on results of mixed-mode runs.
const MixedQuizName = "Mixed"

// Question is a multi-select question. CorrectAnswers holds 1-based option indices.
type Question struct {
	Text           string   `json:"text" yaml:"text" validate:"required"`
	Options        []string `json:"options" yaml:"options" validate:"min=2,dive,required"`
	CorrectAnswers []int    `json:"correctAnswers" yaml:"correctAnswers"`
}

// Quiz is a named, ordered collection of questions.
type Quiz struct {
	Name      string     `json:"name" yaml:"name" validate:"required"`
	Questions []Question `json:"questions" yaml:"questions" validate:"dive"`
}

// Result is the outcome of one completed quiz run.
type Result struct {
	QuizName string    `json:"quizName" yaml:"quizName"`
	Score    int       `json:"score" yaml:"score"`
	Date     time.Time `json:"date" yaml:"date"`
}

// User is a registered player. Password holds a bcrypt hash, never the raw secret.
type User struct {
	Login     string    `json:"login" yaml:"login"`
	Password  string    `json:"password" yaml:"password"`
	BirthDate time.Time `json:"birthDate" yaml:"birthDate"`
	Results   []Result  `json:"results" yaml:"results"`
}

// Clone returns a copy that shares no memory with u.
func (u User) Clone() User {
	out := u
	out.Results = append([]Result(nil), u.Results...)
	return out
}

// LeaderboardEntry is one result annotated with the login that owns it.
type LeaderboardEntry struct {
	Login    string    `json:"login"`
	QuizName string    `json:"quizName"`
	Score    int       `json:"score"`
	Date     time.Time `json:"date"`
}
