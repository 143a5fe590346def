package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
	"mspro-labs/shop-sync/internal/models"
)

var addTimeout time.Duration

var addCmd = &cobra.Command{
	Use:   "add [item]...",
	Short: "Add items and wait for refinement and price search",
	Long: `Adds one or more free-text items to the list, runs them through the
pipeline (refinement, then rate-limited price search) and prints the
updated store ranking.

Examples:
  shop-sync add "avocado" "whole milk"
  shop-sync add bread --timeout 2m`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAdd(args)
	},
}

func init() {
	addCmd.Flags().DurationVar(&addTimeout, "timeout", 5*time.Minute, "How long to wait for the pipeline to finish")
	rootCmd.AddCommand(addCmd)
}

func runAdd(names []string) {
	log := logging.Log

	_, engineCfg, db, err := openStore()
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	eng, aiClient, err := buildEngine(ctx, engineCfg, db)
	if err != nil {
		log.Fatalf("Engine setup failed: %v", err)
	}
	defer aiClient.Close()

	eng.Start()
	defer eng.Close()

	for _, name := range names {
		if _, err := eng.AddItem(name); err != nil {
			log.Warnf("Skipping %q: %v", name, err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, addTimeout)
	defer cancel()
	if err := eng.Settle(waitCtx); err != nil {
		log.Fatalf("Pipeline did not finish: %v", err)
	}

	// Vague items need a human; point at them and move on.
	for _, item := range eng.Items() {
		if item.Status == models.StatusVague {
			fmt.Printf("🤔 %q is ambiguous. Pick one with 'shop-sync choose':\n", item.OriginalName)
			for _, s := range item.VagueSuggestions {
				fmt.Printf("   - %s\n", s)
			}
		}
	}

	printReceipt(eng.Items(), eng.Preferences(), eng.Analysis())
}
