package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pngopt/pngopt/internal/optsconfig"
	"github.com/pngopt/pngopt/internal/raster"
	"github.com/pngopt/pngopt/internal/report"
	"github.com/pngopt/pngopt/internal/search"
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

var (
	encodeInput         string
	encodeOutput        string
	encodeAutoColorMode bool
	encodeInterlace     bool
	encodePartition     bool
	encodeFilters       string
	encodeDeflate       string
	encodeJobs          int
	encodeTraceFile     string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Recompress a raw bitmap into an optimized PNG",
	RunE:  runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeInput, "input", "", "path to source image (required)")
	encodeCmd.Flags().StringVar(&encodeOutput, "output", "", "path for written PNG (required)")
	encodeCmd.Flags().BoolVar(&encodeAutoColorMode, "auto-color-mode", true, "enable the color-mode ladder")
	encodeCmd.Flags().BoolVar(&encodeInterlace, "interlace", false, "add Adam7 to the interlace axis")
	encodeCmd.Flags().BoolVar(&encodePartition, "partition", true, "allow the PartitionOptimized strategy")
	encodeCmd.Flags().StringVar(&encodeFilters, "filters", "", "comma-separated subset of filter strategies")
	encodeCmd.Flags().StringVar(&encodeDeflate, "deflate", "", "comma-separated subset of deflate levels")
	encodeCmd.Flags().IntVar(&encodeJobs, "jobs", 0, "concurrency cap (0 = logical core count)")
	encodeCmd.Flags().StringVar(&encodeTraceFile, "trace-file", "", "write a zstd-compressed optimization trace to this path")
	encodeCmd.MarkFlagRequired("input")
	encodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	filters, err := parseFilters(encodeFilters)
	if err != nil {
		return err
	}
	levels, err := parseLevels(encodeDeflate)
	if err != nil {
		return err
	}

	opts := optsconfig.Defaults()
	opts.Input = encodeInput
	opts.Output = encodeOutput
	opts.AutoColorMode = encodeAutoColorMode
	opts.Interlace = encodeInterlace
	opts.Partition = encodePartition
	opts.Verbose = verbose
	opts.TraceFile = encodeTraceFile
	opts.Jobs = encodeJobs
	opts.Filters = filters
	opts.DeflateLevels = levels

	in, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	buf, err := raster.DecodeImage(img)
	if err != nil {
		return fmt.Errorf("convert input: %w", err)
	}

	inputStat, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	searchOpts := search.Options{
		AutoColorMode:    opts.AutoColorMode,
		Interlace:        opts.Interlace,
		Strategies:       opts.ResolveFilters(),
		Levels:           opts.ResolveLevels(),
		MaxParallelTasks: opts.Jobs,
	}

	printer := report.NewPrinter(os.Stderr)
	printer.Verbose = opts.Verbose

	stats := buf.Analyze()
	combos := search.Enumerate(stats, searchOpts)
	results := search.EvaluateAll(buf, searchOpts)
	winner, err := search.Reduce(results)
	if err != nil {
		return err
	}

	for i, r := range results {
		if r == nil {
			printer.Candidate(i, report.CandidateRecord{Failed: true})
			continue
		}
		printer.Candidate(i, report.RecordOf(r))
	}
	printer.Summary(report.RecordOf(winner), int(inputStat.Size()))

	if opts.TraceFile != "" {
		trace := report.BuildTrace(combos, results, winner)
		compressed, err := report.EncodeTraceFile(trace)
		if err != nil {
			return fmt.Errorf("encode trace file: %w", err)
		}
		if err := os.WriteFile(opts.TraceFile, compressed, 0o644); err != nil {
			return fmt.Errorf("write trace file: %w", err)
		}
	}

	if err := os.WriteFile(opts.Output, winner.Bytes, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// parseFilters maps a filters=csv flag value onto selector.Strategy
// values via optsconfig's name table, per §6.3.
func parseFilters(csv string) ([]selector.Strategy, error) {
	if csv == "" {
		return nil, nil
	}
	var out []selector.Strategy
	for _, name := range strings.Split(csv, ",") {
		s, ok := optsconfig.StrategyByName(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown filter strategy %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// parseLevels maps a deflate=csv flag value onto zlibcodec.Level values.
func parseLevels(csv string) ([]zlibcodec.Level, error) {
	if csv == "" {
		return nil, nil
	}
	var out []zlibcodec.Level
	for _, name := range strings.Split(csv, ",") {
		l, ok := optsconfig.LevelByName(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown deflate level %q", name)
		}
		out = append(out, l)
	}
	return out, nil
}
