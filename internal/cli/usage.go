package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanlens/hanlens/internal/config"
	"github.com/hanlens/hanlens/internal/db"
)

// UsageCmd creates the usage command.
func UsageCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show accumulated token usage and cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open usage database: %w", err)
			}
			defer sqlDB.Close()

			tracker, err := db.NewUsageStore(sqlDB).LoadTracker(context.Background())
			if err != nil {
				return err
			}

			today := tracker.Today()
			fmt.Printf("Today:      %d calls, %d in / %d out tokens, $%.4f\n",
				today.Calls, today.InputTokens, today.OutputTokens, today.Cost)
			fmt.Printf("This week:  $%.4f\n", tracker.ThisWeekTotal())
			fmt.Printf("This month: $%.4f\n", tracker.ThisMonthTotal())
			fmt.Printf("All time:   $%.4f (%d calls)\n", tracker.AllTimeTotal(), len(tracker.Entries()))
			return nil
		},
	}
}
