package cmd

import (
	"fmt"

	"mspro-labs/shop-sync/internal/models"
	"mspro-labs/shop-sync/internal/strategy"
)

// printReceipt renders the ledger and the store ranking for the terminal.
func printReceipt(items []models.ShoppingItem, prefs models.UserPreferences, analysis *strategy.Analysis) {
	symbol := models.Symbol(prefs.Currency)

	fmt.Printf("\n🧾 Shopping list (%s)\n", prefs.LocationName)
	fmt.Println("------------------------------------")
	if len(items) == 0 {
		fmt.Println("List is empty.")
		return
	}

	// The selected store defaults to rank #1; its prices feed the ledger.
	var selected *strategy.StoreSummary
	if analysis != nil && len(analysis.Top) > 0 {
		selected = &analysis.Top[0]
	}

	for _, item := range items {
		emoji := item.Emoji
		if emoji == "" {
			emoji = "🛒"
		}
		line := fmt.Sprintf("%s %s", emoji, item.DisplayName())
		switch {
		case item.Status == models.StatusError:
			fmt.Printf("%s — unavailable (%s)\n", line, item.ErrorMessage)
		case item.Status == models.StatusVague:
			fmt.Printf("%s — needs disambiguation\n", line)
		case item.InFlight():
			fmt.Printf("%s — processing\n", line)
		case selected != nil:
			if price, ok := selected.ItemPrices[item.DisplayName()]; ok {
				fmt.Printf("%s — %s%.2f\n", line, symbol, price)
			} else {
				fmt.Printf("%s — not in branch\n", line)
			}
		default:
			fmt.Println(line)
		}
	}

	if analysis == nil {
		fmt.Println("\nNo priced items yet.")
		return
	}

	fmt.Println("\n🏪 Where to shop")
	for i, s := range analysis.Top {
		badges := ""
		if s.Name == analysis.Cheapest {
			badges += " [cheapest]"
		}
		if s.Name == analysis.Closest {
			badges += " [closest]"
		}
		distance := ""
		if s.DistanceKm != nil {
			distance = fmt.Sprintf(", %.1f km", *s.DistanceKm)
		}
		fmt.Printf("#%d %s%s — %s%.2f (%d/%d items%s)\n",
			i+1, s.Name, badges, symbol, s.Total, s.Count, analysis.ReadyItems, distance)
	}
	if selected != nil {
		fmt.Printf("\nEstimated total at %s: %s%.2f\n", selected.Name, symbol, selected.Total)
	}
}
