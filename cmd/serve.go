package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mspro-labs/shop-sync/internal/logging"
	"mspro-labs/shop-sync/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shopping-list engine with its JSON API",
	Long:  `Starts the processing pipeline (refinement and rate-limited price search) and exposes the list, preferences and store ranking over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	log := logging.Log

	appCfg, engineCfg, db, err := openStore()
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

	handler := web.NewHandler(eng, log)
	server := &http.Server{
		Addr:         appCfg.ListenAddr,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🛒 shop-sync API listening on %s", appCfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Infof("Received %s, shutting down...", sig)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Graceful shutdown failed: %v", err)
	}
}
