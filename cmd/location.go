package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
)

var refreshStores bool

var locationCmd = &cobra.Command{
	Use:   "location [place]",
	Short: "Set your base location",
	Long: `Geocodes a free-text place, stores it as your base location and
invalidates cached store distances (they no longer apply).

Examples:
  shop-sync location "Oxford, UK"
  shop-sync location "Brooklyn" --refresh-stores`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLocation(args)
	},
}

func init() {
	locationCmd.Flags().BoolVar(&refreshStores, "refresh-stores", false, "Also refresh nearby store locations after moving")
	rootCmd.AddCommand(locationCmd)
}

func runLocation(args []string) {
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
	defer eng.Close()

	place, err := eng.UpdateLocation(ctx, strings.Join(args, " "))
	if err != nil {
		log.Fatalf("Failed to set location: %v", err)
	}
	fmt.Printf("📍 Location set to %s (%g, %g)\n", place.Name, place.Lat, place.Lng)

	if refreshStores {
		if err := eng.RefreshStoreLocations(ctx); err != nil {
			log.Warnf("Store lookup failed (distances stay empty): %v", err)
			return
		}
		for _, loc := range eng.StoreLocations() {
			fmt.Printf("   %s — %.1f km (%s)\n", loc.StoreName, loc.DistanceKm, loc.Address)
		}
	}
}
