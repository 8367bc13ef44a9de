package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/attendzk/pkg/horizon"
	"github.com/yourorg/attendzk/pkg/prover"
	"github.com/yourorg/attendzk/pkg/stroops"
	"github.com/yourorg/attendzk/pkg/zkp"
)

// submission is the JSON body cmd/server's verify endpoint accepts.
type submission struct {
	ProofB64     string        `json:"proofB64"`
	PublicInputs []json.Number `json:"publicInputs"`
	Threshold    uint64        `json:"threshold"`
	VKB64        string        `json:"vk,omitempty"`
	IsValid      bool          `json:"isValid"`
}

func main() {
	var (
		wallet     string
		thresholdS string
		horizonURL string
		artifact   string
		outPath    string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "prover",
		Short: "Generate a balance-threshold proof for an event registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if horizonURL == "" {
				_ = godotenv.Load()
				horizonURL = os.Getenv("HORIZON_URL")
				if horizonURL == "" {
					return fmt.Errorf("--horizon flag or HORIZON_URL env var is required")
				}
			}

			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()

			engine, err := zkp.NewEngine(artifact, logger)
			if err != nil {
				return err
			}
			oracle := horizon.NewClient(horizonURL, logger)

			start := time.Now()
			coord := prover.New(oracle, engine, logger,
				prover.WithProgress(func(s prover.Stage) {
					fmt.Fprintf(os.Stderr, "* %s\n", s)
				}))

			result, err := coord.GenerateProof(cmd.Context(), wallet, thresholdS)
			if err != nil {
				return err
			}

			thresholdStroops, err := stroops.ToStroops(thresholdS)
			if err != nil {
				return err
			}
			out := submission{
				ProofB64:     result.ProofB64,
				PublicInputs: result.PublicInputs,
				Threshold:    thresholdStroops,
				IsValid:      result.IsValid,
			}
			raw, _ := json.MarshalIndent(out, "", "  ")
			if outPath != "" {
				if err := os.WriteFile(outPath, raw, 0o644); err != nil {
					return err
				}
			} else {
				fmt.Println(string(raw))
			}

			fmt.Fprintf(os.Stderr, "proof done in %s\n", time.Since(start))
			return nil
		},
	}

	rootCmd.Flags().StringVar(&wallet, "wallet", "", "Stellar account address (G...)")
	rootCmd.Flags().StringVar(&thresholdS, "threshold", "", "Event threshold in XLM, e.g. 10 or 25.5")
	rootCmd.Flags().StringVar(&horizonURL, "horizon", "", "Horizon base URL")
	rootCmd.Flags().StringVar(&artifact, "artifact", "balance_threshold.json", "Circuit artifact path")
	rootCmd.Flags().StringVar(&outPath, "out", "", "Write the submission JSON here instead of stdout")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Debug logging")
	_ = rootCmd.MarkFlagRequired("wallet")
	_ = rootCmd.MarkFlagRequired("threshold")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
