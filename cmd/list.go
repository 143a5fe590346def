package cmd

import (
	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
	"mspro-labs/shop-sync/internal/strategy"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current list and store ranking",
	Long:  `Prints the saved shopping list and the ranked stores from the last price run. Works offline: nothing is re-fetched.`,
	Run: func(cmd *cobra.Command, args []string) {
		runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList() {
	log := logging.Log

	_, _, db, err := openStore()
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer db.Close()

	snap, err := db.Load()
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	printReceipt(snap.Items, snap.Preferences, strategy.Analyze(snap.Items, snap.StoreLocations))
}
