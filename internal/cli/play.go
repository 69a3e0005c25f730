package cli

import (
	"os"

	"github.com/spf13/cobra"
	"trivia-quiz/internal/config"
)

// NewPlayCmd starts the interactive menu on stdin/stdout.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play quizzes interactively in the terminal",
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

			shell := NewShell(os.Stdin, cmd.OutOrStdout(), rt.users, rt.quizzes, rt.board, cfg.Leaderboard.Size)
			return shell.Run(cmd.Context())
		},
	}
}
