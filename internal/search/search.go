// Package search enumerates the combination set, runs every combination
// as an independent candidate under a bounded worker pool, and reduces
// to the smallest result. The concurrency shape is a goroutine-plus-
// WaitGroup pattern gated by a buffered-channel semaphore, since the
// unit of work here is a whole candidate rather than a row band.
package search

import (
	"errors"
	"runtime"
	"sync"

	"github.com/pngopt/pngopt/internal/candidate"
	"github.com/pngopt/pngopt/internal/ihdr"
	"github.com/pngopt/pngopt/internal/raster"
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

// ColorDepth is one (color mode, bit depth) rung of the §4.12 ladder.
type ColorDepth struct {
	ColorMode ihdr.ColorType
	BitDepth  int
}

// Options configures one search run, mirroring §6.3's CLI surface.
type Options struct {
	AutoColorMode    bool
	Interlace        bool
	Strategies       []selector.Strategy
	Levels           []zlibcodec.Level
	MaxPaletteColors int // 0 means the §4.12 default of 256
	MaxParallelTasks int // 0 means the logical core count
}

// DefaultOptions returns §6.3's CLI defaults: auto color mode on,
// interlace off, every strategy and deflate level, core-count workers.
func DefaultOptions() Options {
	return Options{
		AutoColorMode:    true,
		Interlace:        false,
		Strategies:       selector.AllStrategies(),
		Levels:           zlibcodec.AllLevels(),
		MaxPaletteColors: 256,
		MaxParallelTasks: 0,
	}
}

// ErrAllCandidatesFailed is returned when every enumerated combination
// either was infeasible or failed internally, per §7.
var ErrAllCandidatesFailed = errors.New("search: all candidates failed")

// EnumerateColorDepths walks the §4.12 auto-color-mode ladder over the
// buffer's Stats. With AutoColorMode disabled it returns exactly one
// rung, chosen by alpha presence.
func EnumerateColorDepths(stats raster.Stats, opts Options) []ColorDepth {
	maxPalette := opts.MaxPaletteColors
	if maxPalette == 0 {
		maxPalette = 256
	}

	if !opts.AutoColorMode {
		if stats.HasAlpha {
			return []ColorDepth{{ihdr.RGBA, 8}}
		}
		return []ColorDepth{{ihdr.RGB, 8}}
	}

	if stats.IsGrayscale && stats.HasAlpha {
		return []ColorDepth{{ihdr.GrayscaleAlpha, 8}}
	}

	if stats.IsGrayscale {
		out := []ColorDepth{{ihdr.Grayscale, 8}}
		if stats.UniqueColors <= 16 {
			out = append(out, ColorDepth{ihdr.Grayscale, 4})
		}
		if stats.UniqueColors <= 4 {
			out = append(out, ColorDepth{ihdr.Grayscale, 2})
		}
		if stats.UniqueColors <= 2 {
			out = append(out, ColorDepth{ihdr.Grayscale, 1})
		}
		return out
	}

	var out []ColorDepth
	if stats.HasAlpha {
		out = append(out, ColorDepth{ihdr.RGBA, 8})
	} else {
		out = append(out, ColorDepth{ihdr.RGB, 8})
	}
	if stats.UniqueColors <= maxPalette {
		out = append(out, ColorDepth{ihdr.Palette, 8})
		if stats.UniqueColors <= 16 {
			out = append(out, ColorDepth{ihdr.Palette, 4})
		}
		if stats.UniqueColors <= 4 {
			out = append(out, ColorDepth{ihdr.Palette, 2})
		}
		if stats.UniqueColors <= 2 {
			out = append(out, ColorDepth{ihdr.Palette, 1})
		}
	}
	return out
}

// interlaceAxis returns the interlace values the Cartesian product runs
// over: always None, plus Adam7 when opts.Interlace is set.
func interlaceAxis(opts Options) []ihdr.Interlace {
	axis := []ihdr.Interlace{ihdr.InterlaceNone}
	if opts.Interlace {
		axis = append(axis, ihdr.InterlaceAdam7)
	}
	return axis
}

// Enumerate produces the full, infeasibility-filtered combination set in
// deterministic order: color-depth rung, then interlace, then strategy,
// then level. Tie-breaking relies on this nesting order.
func Enumerate(stats raster.Stats, opts Options) []candidate.Combo {
	depths := EnumerateColorDepths(stats, opts)
	interlaces := interlaceAxis(opts)
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = selector.AllStrategies()
	}
	levels := opts.Levels
	if len(levels) == 0 {
		levels = zlibcodec.AllLevels()
	}

	var combos []candidate.Combo
	for _, d := range depths {
		for _, il := range interlaces {
			for _, st := range strategies {
				for _, lv := range levels {
					combo := candidate.Combo{
						ColorMode: d.ColorMode,
						BitDepth:  d.BitDepth,
						Interlace: il,
						Strategy:  st,
						Level:     lv,
					}
					if combo.Validate() != nil {
						continue
					}
					combos = append(combos, combo)
				}
			}
		}
	}
	return combos
}

// usesPalette reports whether any combo in combos targets Palette mode,
// so Run only pays for BuildPalette when the ladder actually needs it.
func usesPalette(combos []candidate.Combo) bool {
	for _, c := range combos {
		if c.ColorMode == ihdr.Palette {
			return true
		}
	}
	return false
}

// EvaluateAll enumerates the combination set for buf and evaluates every
// combination as an independent candidate under a bounded worker pool.
// It returns one slot per enumerated combo, in enumeration order; a
// combo that was infeasible or failed internally leaves its slot nil,
// per §7's CandidateInternalError = "infinite size". Task completion
// order never affects the result slice: each task writes only its own
// pre-assigned index, and the caller only reads after every task has
// returned. Exposed separately from Run so the reporting layer can
// trace every evaluated candidate, not just the winner.
func EvaluateAll(buf *raster.Buffer, opts Options) []*candidate.Result {
	stats := buf.Analyze()
	combos := Enumerate(stats, opts)

	var palette *raster.Palette
	if usesPalette(combos) {
		maxPalette := opts.MaxPaletteColors
		if maxPalette == 0 {
			maxPalette = 256
		}
		palette = raster.BuildPalette(buf, maxPalette)
	}

	workers := opts.MaxParallelTasks
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*candidate.Result, len(combos))
	gate := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, combo := range combos {
		wg.Add(1)
		gate <- struct{}{}
		go func(i int, combo candidate.Combo) {
			defer wg.Done()
			defer func() { <-gate }()
			result, err := candidate.Encode(buf, combo, palette)
			if err != nil {
				return
			}
			results[i] = result
		}(i, combo)
	}
	wg.Wait()
	return results
}

// Reduce picks argmin(compressed_size) from results, first-enumerated
// order breaking ties (§4.12), ignoring nil (failed) slots.
func Reduce(results []*candidate.Result) (*candidate.Result, error) {
	var best *candidate.Result
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || r.CompressedSize < best.CompressedSize {
			best = r
		}
	}
	if best == nil {
		return nil, ErrAllCandidatesFailed
	}
	return best, nil
}

// Run enumerates the combination set for buf, evaluates every
// combination as an independent candidate under a bounded worker pool,
// and returns the smallest result by compressed size, first-enumerated
// order breaking ties (§4.12).
func Run(buf *raster.Buffer, opts Options) (*candidate.Result, error) {
	return Reduce(EvaluateAll(buf, opts))
}
