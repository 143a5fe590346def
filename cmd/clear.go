package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the saved list and store cache",
	Run: func(cmd *cobra.Command, args []string) {
		runClear()
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear() {
	log := logging.Log

	_, _, db, err := openStore()
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer db.Close()

	if err := db.Clear(); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	fmt.Println("🗑️ Done. All saved data removed.")
}
