package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shop-sync",
	Short: "AI-assisted shopping list with per-store price intelligence",
	Long: `shop-sync turns free-text shopping list entries into normalized,
emoji-tagged products, looks up estimated per-store prices near your
location, and ranks stores so you know where one trip covers the most
of your list.

Requires GEMINI_API_KEY for the commands that talk to the AI.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

func initLogging() {
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	logging.SetLevel(levelString)
}
