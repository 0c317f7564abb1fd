package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/growthkit/leadrelay/internal/config"
	"github.com/growthkit/leadrelay/internal/pipeline"
	"github.com/growthkit/leadrelay/pkg/hunter"
	"github.com/growthkit/leadrelay/pkg/phantombuster"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadrelay",
	Short: "LinkedIn lead-generation relay",
	Long:  "Launches a Phantombuster LinkedIn scrape, enriches the results with Hunter email lookups, and returns a CSV.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if missing := cfg.MissingSecrets(); len(missing) > 0 {
			zap.L().Warn("required secrets not set", zap.Strings("missing", missing))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newPipeline builds the pipeline with real API clients from config.
func newPipeline() *pipeline.Pipeline {
	phantom := phantombuster.NewClient(cfg.Phantombuster.Key,
		phantombuster.WithBaseURL(cfg.Phantombuster.BaseURL),
		phantombuster.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Phantombuster.HTTPTimeoutSecs) * time.Second,
		}),
	)
	finder := hunter.NewClient(cfg.Hunter.Key,
		hunter.WithBaseURL(cfg.Hunter.BaseURL),
	)
	return pipeline.New(cfg, phantom, finder)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
