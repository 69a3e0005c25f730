package app_test

import (
	"testing"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

func TestEvaluateOneRing(t *testing.T) {
	q := domain.Question{
		Text:           "Who forged the One Ring?",
		Options:        []string{"Sauron", "Elrond", "Gandalf", "Saruman"},
		CorrectAnswers: []int{1},
	}
	tests := []struct {
		name      string
		submitted []int
		want      bool
	}{
		{name: "exact", submitted: []int{1}, want: true},
		{name: "superset", submitted: []int{1, 2}, want: false},
		{name: "wrong", submitted: []int{2}, want: false},
		{name: "empty", submitted: nil, want: false},
		{name: "duplicates collapse", submitted: []int{1, 1}, want: true},
		{name: "out of range", submitted: []int{1, 9}, want: false},
		{name: "negative", submitted: []int{-1}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := app.Evaluate(q, tt.submitted); got != tt.want {
				t.Fatalf("Evaluate(%v) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestEvaluateMultiSelectIsExactSetMatch(t *testing.T) {
	q := domain.Question{
		Text:           "Which are primary colours?",
		Options:        []string{"Red", "Green", "Blue", "Purple"},
		CorrectAnswers: []int{1, 3},
	}
	if !app.Evaluate(q, []int{3, 1}) {
		t.Fatalf("expected order to be irrelevant")
	}

	// every proper subset and every superset of {1,3} must fail
	for _, submitted := range [][]int{{1}, {3}, {1, 2, 3}, {1, 3, 4}, {1, 2, 3, 4}, {2, 4}} {
		if app.Evaluate(q, submitted) {
			t.Fatalf("expected %v to be scored incorrect", submitted)
		}
	}
}
