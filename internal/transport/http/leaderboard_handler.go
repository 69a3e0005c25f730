package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// LeaderboardHandler serves GET /leaderboard?limit=N as JSON.
type LeaderboardHandler struct {
	board        *app.Leaderboard
	defaultLimit int
}

func NewLeaderboardHandler(board *app.Leaderboard, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, defaultLimit: defaultLimit}
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(leaderboardResponse{Entries: h.board.Top(limit)})
}
