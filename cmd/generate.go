package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/growthkit/leadrelay/internal/pipeline"
)

var (
	generateIndustry string
	generateLocation string
	generateCount    int
	generateOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the lead pipeline once and write the CSV",
	Long:  "Launches the configured agent, waits for completion, enriches the leads, and writes the CSV to stdout or --output.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		csv, err := newPipeline().Run(ctx, pipeline.Request{
			Industry: generateIndustry,
			Location: generateLocation,
			Count:    generateCount,
		})
		if err != nil {
			return eris.Wrap(err, "generate")
		}

		if generateOutput == "" {
			fmt.Println(csv)
			return nil
		}

		if err := os.WriteFile(generateOutput, []byte(csv+"\n"), 0o644); err != nil {
			return eris.Wrap(err, "generate: write output")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", generateOutput)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateIndustry, "industry", "", "industry search term")
	generateCmd.Flags().StringVar(&generateLocation, "location", "", "location search term")
	generateCmd.Flags().IntVar(&generateCount, "count", 0, "number of leads (default from config)")
	generateCmd.Flags().StringVar(&generateOutput, "output", "", "write CSV to file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}
