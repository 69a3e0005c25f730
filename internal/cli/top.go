package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"trivia-quiz/internal/config"
)

// NewTopCmd prints the leaderboard without starting a session.
func NewTopCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the global leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			if limit <= 0 {
				limit = cfg.Leaderboard.Size
			}
			out := cmd.OutOrStdout()
			for i, e := range rt.board.Top(limit) {
				fmt.Fprintf(out, "%2d. %-16s %-20s %3d  %s\n", i+1, e.Login, e.QuizName, e.Score, e.Date.Local().Format(displayLayout))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (defaults to leaderboard.size)")
	return cmd
}
