package app

import "trivia-quiz/internal/domain"

// Evaluate reports whether submitted, taken as a set of 1-based option indices,
// is exactly the question's set of correct answers. Duplicates collapse and
// order does not matter. Indices outside the option range never match.
func Evaluate(question domain.Question, submitted []int) bool {
	correct := make(map[int]bool, len(question.CorrectAnswers))
	for _, idx := range question.CorrectAnswers {
		correct[idx] = true
	}

	picked := make(map[int]bool, len(submitted))
	for _, idx := range submitted {
		if idx < 1 || idx > len(question.Options) || !correct[idx] {
			return false
		}
		picked[idx] = true
	}
	return len(picked) == len(correct)
}
