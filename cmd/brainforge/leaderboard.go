package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/brainforge-backend/internal/app"
	"github.com/yungbote/brainforge-backend/internal/data/repos"
	"github.com/yungbote/brainforge-backend/internal/services"
)

var flagLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <exercise>",
	Short: "Print the top players for an exercise",
	Long: `Print the leaderboard for an exercise straight from the database.

Examples:
  brainforge leaderboard spot-difference
  brainforge leaderboard typing --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to print")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	dbs, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer dbs.Close()

	r := repos.New(dbs.DB(), log)
	board := services.NewLeaderboardService(log, r.Results, r.Progress, r.Users, nil, nil)

	entries, err := board.Top(cmd.Context(), args[0], flagLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No results yet for %q.\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tBEST TIME\tGAMES\tLEVEL")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%d\n", e.Rank, e.DisplayName, e.BestTime, e.TotalGames, e.Level)
	}
	return w.Flush()
}
