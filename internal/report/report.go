// Package report implements plain fmt.Fprintf-based diagnostics (no
// logging library), plus an OptimizationTrace that records every
// evaluated candidate, not just the winner, and can be persisted as a
// zstd-compressed JSON sidecar via a pooled encoder/decoder pair.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/pngopt/pngopt/internal/candidate"
	"github.com/pngopt/pngopt/internal/ihdr"
)

// CandidateRecord is one candidate's serializable stats, §2 item 16.
type CandidateRecord struct {
	ColorMode         string `json:"color_mode"`
	BitDepth          int    `json:"bit_depth"`
	Interlace         string `json:"interlace"`
	Strategy          string `json:"strategy"`
	Level             string `json:"level"`
	CompressedSize    int    `json:"compressed_size"`
	FilterTransitions int    `json:"filter_transitions"`
	ProcessingTimeNs  int64  `json:"processing_time_ns"`
	Failed            bool   `json:"failed"`
}

// OptimizationTrace is the structured record of one full search run:
// every evaluated candidate (win or lose) plus the index of the winner.
type OptimizationTrace struct {
	Candidates []CandidateRecord `json:"candidates"`
	WinnerIdx  int               `json:"winner_idx"`
}

// BuildTrace assembles an OptimizationTrace from a search run's raw
// per-combo results (nil entries are recorded as failed) and the chosen
// winner.
func BuildTrace(combos []candidate.Combo, results []*candidate.Result, winner *candidate.Result) OptimizationTrace {
	trace := OptimizationTrace{
		Candidates: make([]CandidateRecord, len(results)),
		WinnerIdx:  -1,
	}
	for i, r := range results {
		if r == nil {
			combo := candidate.Combo{}
			if i < len(combos) {
				combo = combos[i]
			}
			trace.Candidates[i] = CandidateRecord{
				ColorMode: combo.ColorMode.String(),
				BitDepth:  combo.BitDepth,
				Failed:    true,
			}
			continue
		}
		trace.Candidates[i] = recordOf(r)
		if winner != nil && r == winner {
			trace.WinnerIdx = i
		}
	}
	return trace
}

// RecordOf converts a candidate.Result into its serializable record, for
// callers (cmd/pngopt) that need a CandidateRecord outside of BuildTrace.
func RecordOf(r *candidate.Result) CandidateRecord {
	return recordOf(r)
}

func recordOf(r *candidate.Result) CandidateRecord {
	interlace := "None"
	if r.Combo.Interlace == ihdr.InterlaceAdam7 {
		interlace = "Adam7"
	}
	return CandidateRecord{
		ColorMode:         r.Combo.ColorMode.String(),
		BitDepth:          r.Combo.BitDepth,
		Interlace:         interlace,
		Strategy:          r.Combo.Strategy.String(),
		Level:             r.Combo.Level.String(),
		CompressedSize:    r.CompressedSize,
		FilterTransitions: r.FilterTransitions,
		ProcessingTimeNs:  r.ProcessingTime.Nanoseconds(),
	}
}

// Printer writes plain, fmt.Fprintf-based diagnostics to an injected
// writer rather than through a logging library.
type Printer struct {
	W       io.Writer
	Verbose bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w}
}

// Candidate writes one per-candidate line when Verbose is set.
func (p *Printer) Candidate(index int, r CandidateRecord) {
	if !p.Verbose {
		return
	}
	if r.Failed {
		fmt.Fprintf(p.W, "candidate %d: %s/%d failed\n", index, r.ColorMode, r.BitDepth)
		return
	}
	fmt.Fprintf(p.W, "candidate %d: %s/%d %s %s %s -> %d bytes (%d transitions)\n",
		index, r.ColorMode, r.BitDepth, r.Interlace, r.Strategy, r.Level, r.CompressedSize, r.FilterTransitions)
}

// Summary writes the final one-line result, always (not gated by Verbose).
func (p *Printer) Summary(winner CandidateRecord, inputSize int) {
	fmt.Fprintf(p.W, "chosen: %s/%d %s %s %s, %d bytes (input was %d bytes)\n",
		winner.ColorMode, winner.BitDepth, winner.Interlace, winner.Strategy, winner.Level,
		winner.CompressedSize, inputSize)
}

// Error writes the §7 one-line fatal diagnostic.
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.W, "pngopt: %v\n", err)
}

var (
	zstdEncPool = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				panic(err)
			}
			return enc
		},
	}
	zstdDecPool = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				panic(err)
			}
			return dec
		},
	}
)

// EncodeTraceFile serializes trace as JSON and zstd-compresses it, for
// the --trace-file sidecar.
func EncodeTraceFile(trace OptimizationTrace) ([]byte, error) {
	payload, err := json.Marshal(trace)
	if err != nil {
		return nil, fmt.Errorf("report: marshal trace: %w", err)
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	if _, err := enc.Write(payload); err != nil {
		return nil, fmt.Errorf("report: compress trace: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("report: compress trace: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeTraceFile reverses EncodeTraceFile.
func DecodeTraceFile(compressed []byte) (OptimizationTrace, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(compressed)); err != nil {
		return OptimizationTrace{}, fmt.Errorf("report: reset trace decoder: %w", err)
	}
	payload, err := io.ReadAll(dec)
	if err != nil {
		return OptimizationTrace{}, fmt.Errorf("report: decompress trace: %w", err)
	}

	var trace OptimizationTrace
	if err := json.Unmarshal(payload, &trace); err != nil {
		return OptimizationTrace{}, fmt.Errorf("report: unmarshal trace: %w", err)
	}
	return trace, nil
}
