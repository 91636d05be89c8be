// brainforge runs the cognitive-training backend.
//
// Usage:
//
//	brainforge serve                    - Start the HTTP API (default)
//	brainforge migrate                  - Apply database migrations and exit
//	brainforge leaderboard <exercise>   - Print the top players for an exercise
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/brainforge-backend/internal/app"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brainforge",
	Short: "BrainForge cognitive-training backend",
	Long: `BrainForge serves the spot-the-difference puzzle API together with
generic exercise results, progress and leaderboards.

Examples:
  brainforge serve
  brainforge migrate
  brainforge leaderboard spot-difference --limit 5`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(leaderboardCmd)
}

func newLogger() (*logger.Logger, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return log, nil
}
