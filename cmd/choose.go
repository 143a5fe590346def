package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
	"mspro-labs/shop-sync/internal/models"
)

var chooseCmd = &cobra.Command{
	Use:   "choose [item] [suggestion]",
	Short: "Resolve an ambiguous item with one of its suggestions",
	Long: `Picks a suggestion for an item that refinement flagged as vague,
then runs the price search for it.

Example:
  shop-sync choose snack "Granola Bar"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runChoose(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(chooseCmd)
}

func runChoose(itemQuery, suggestion string) {
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

	target, ok := findVagueItem(eng.Items(), itemQuery)
	if !ok {
		log.Fatalf("No ambiguous item matches %q", itemQuery)
	}

	if err := eng.SelectVagueSuggestion(target.ID, suggestion); err != nil {
		log.Fatalf("Failed to apply suggestion: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := eng.Settle(waitCtx); err != nil {
		log.Fatalf("Pipeline did not finish: %v", err)
	}

	fmt.Printf("✅ %q resolved as %q\n", target.OriginalName, suggestion)
	printReceipt(eng.Items(), eng.Preferences(), eng.Analysis())
}

// findVagueItem matches by id, id prefix or (case-insensitive) original
// name, vague items only.
func findVagueItem(items []models.ShoppingItem, query string) (models.ShoppingItem, bool) {
	lower := strings.ToLower(query)
	for _, item := range items {
		if item.Status != models.StatusVague {
			continue
		}
		if item.ID == query || strings.HasPrefix(item.ID, query) || strings.ToLower(item.OriginalName) == lower {
			return item, true
		}
	}
	return models.ShoppingItem{}, false
}
