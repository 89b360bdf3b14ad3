package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gamedealer/gamedealer/internal/config"
)

func dealsCommand() *cobra.Command {
	var notify bool

	dealsCmd := &cobra.Command{
		Use:   "deals",
		Short: "Run a single deal cycle and print the ranked results",
		Long: "Fetches current discount listings, ranks them against the " +
			"curated catalog and community popularity lists, and prints the " +
			"paginated results. Notifications are suppressed unless --notify is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeals(cmd, notify)
		},
	}
	dealsCmd.Flags().BoolVar(&notify, "notify", false, "send the top page to the configured notifier")

	return dealsCmd
}

func runDeals(cmd *cobra.Command, notify bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	comp, err := buildComponents(cfg, !notify)
	if err != nil {
		return err
	}

	result, err := comp.engine.RunDealCycle(cmd.Context())
	if err != nil {
		return fmt.Errorf("running deal cycle: %w", err)
	}

	if jsonOutput() {
		return outputJSON(result)
	}

	fmt.Printf("Cycle %s: fetched %d, skipped %d, ranked %d, dropped %d flips (%s)\n\n",
		result.CycleID,
		result.ListingsFetched,
		result.Skipped,
		result.Ranked,
		result.FlipsDropped,
		result.Duration.Round(time.Millisecond),
	)

	if result.Pages == 0 {
		fmt.Println("No deals to show.")
		return nil
	}

	if err := printPageTable(result.TopPage); err != nil {
		return err
	}
	for i, page := range result.RemainingPages {
		fmt.Printf("\nPage %d:\n", i+2)
		if err := printPageTable(page); err != nil {
			return err
		}
	}
	return nil
}
