package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pngopt/pngopt/internal/recompress"
	"github.com/pngopt/pngopt/internal/report"
)

var (
	recompressInput       string
	recompressOutput      string
	recompressFilters     string
	recompressDeflate     string
	recompressNoInterlace bool
)

var recompressCmd = &cobra.Command{
	Use:   "recompress",
	Short: "Re-optimize an existing PNG over the filter x deflate-level axis",
	RunE:  runRecompress,
}

func init() {
	recompressCmd.Flags().StringVar(&recompressInput, "input", "", "path to source PNG (required)")
	recompressCmd.Flags().StringVar(&recompressOutput, "output", "", "path for written PNG (required)")
	recompressCmd.Flags().StringVar(&recompressFilters, "filters", "", "comma-separated subset of filter strategies")
	recompressCmd.Flags().StringVar(&recompressDeflate, "deflate", "", "comma-separated subset of deflate levels")
	recompressCmd.Flags().BoolVar(&recompressNoInterlace, "strip-interlace", false, "force non-interlaced output even if the input was Adam7")
	recompressCmd.MarkFlagRequired("input")
	recompressCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(recompressCmd)
}

func runRecompress(cmd *cobra.Command, args []string) error {
	filters, err := parseFilters(recompressFilters)
	if err != nil {
		return err
	}
	levels, err := parseLevels(recompressDeflate)
	if err != nil {
		return err
	}

	input, err := os.ReadFile(recompressInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	opts := recompress.DefaultOptions()
	if len(filters) > 0 {
		opts.Strategies = filters
	}
	if len(levels) > 0 {
		opts.Levels = levels
	}
	opts.ForceNoInterlace = recompressNoInterlace

	output, warnings, err := recompress.Run(input, opts)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(os.Stderr)
	printer.Verbose = verbose
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "pngopt: warning:", w)
	}

	if err := os.WriteFile(recompressOutput, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
