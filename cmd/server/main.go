package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/attendzk/internal/anchor"
	"github.com/yourorg/attendzk/internal/api"
	"github.com/yourorg/attendzk/internal/verify"
	"github.com/yourorg/attendzk/pkg/ledger"
	"github.com/yourorg/attendzk/pkg/zkp"
)

func main() {
	var (
		listen       string
		dataDir      string
		ledgerRPC    string
		artifact     string
		strictVerify bool
		verbose      bool
	)

	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Run the proof verification and anchoring service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			if v := os.Getenv("LEDGER_RPC_URL"); ledgerRPC == "" && v != "" {
				ledgerRPC = v
			}

			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			records, err := verify.OpenRecordStore(filepath.Join(dataDir, "records"), logger)
			if err != nil {
				return err
			}
			defer records.Close()

			// Remote ledger when configured; the embedded badger ledger
			// otherwise. Reads go to the same implementation that writes.
			var hashes ledger.HashLedger
			var closeLedger func()
			if ledgerRPC != "" {
				client, err := ledger.Dial(cmd.Context(), ledgerRPC)
				if err != nil {
					return err
				}
				hashes = client
				closeLedger = client.Close
			} else {
				store, err := ledger.OpenStore(filepath.Join(dataDir, "ledger"), logger)
				if err != nil {
					return err
				}
				hashes = store
				closeLedger = func() { _ = store.Close() }
			}
			defer closeLedger()

			worker := anchor.NewWorker(hashes, records, logger)
			worker.Start()
			defer worker.Close()

			// The engine is only needed when re-verifying server-side.
			var verifier verify.Verifier
			if strictVerify {
				engine, err := zkp.NewEngine(artifact, logger)
				if err != nil {
					return err
				}
				verifier = engine
			}

			svc := verify.NewService(records, worker, verifier,
				verify.Config{StrictVerify: strictVerify}, logger)
			srv := api.NewServer(listen, svc, hashes, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	rootCmd.Flags().StringVar(&listen, "listen", ":8080", "HTTP listen address")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for badger stores")
	rootCmd.Flags().StringVar(&ledgerRPC, "ledger-rpc", "", "Remote hash ledger JSON-RPC URL (embedded ledger if unset)")
	rootCmd.Flags().StringVar(&artifact, "artifact", "balance_threshold.json", "Circuit artifact path (strict verify only)")
	rootCmd.Flags().BoolVar(&strictVerify, "strict-verify", false, "Re-verify proofs cryptographically before acceptance")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Debug logging")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
