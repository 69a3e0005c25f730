package app

import (
	"sort"

	"trivia-quiz/internal/domain"
)

// Leaderboard ranks every stored result. It keeps no state of its own.
type Leaderboard struct {
	users *UserStore
}

func NewLeaderboard(users *UserStore) *Leaderboard {
	return &Leaderboard{users: users}
}

// Top returns at most n results across all users, highest score first.
// Ties keep encounter order: users in stored order, then each history in order.
func (l *Leaderboard) Top(n int) []domain.LeaderboardEntry {
	if n <= 0 {
		return []domain.LeaderboardEntry{}
	}

	entries := []domain.LeaderboardEntry{}
	for _, user := range l.users.AllUsers() {
		for _, r := range user.Results {
			entries = append(entries, domain.LeaderboardEntry{
				Login:    user.Login,
				QuizName: r.QuizName,
				Score:    r.Score,
				Date:     r.Date,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n:n]
}
