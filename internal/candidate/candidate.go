// Package candidate implements the CandidateEncoder: given one
// OptimizationCombo and an immutable ImageBuffer, it produces a fully
// framed PNG. This is the per-candidate unit of work the search driver
// dispatches in parallel, each with its own scratch buffers: borrow the
// shared input, own your scratch.
package candidate

import (
	"errors"
	"time"

	"github.com/pngopt/pngopt/internal/adam7"
	"github.com/pngopt/pngopt/internal/byteops"
	"github.com/pngopt/pngopt/internal/filter"
	"github.com/pngopt/pngopt/internal/ihdr"
	"github.com/pngopt/pngopt/internal/pngchunk"
	"github.com/pngopt/pngopt/internal/raster"
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

// Combo is one point in the search space, §3 "OptimizationCombo".
type Combo struct {
	ColorMode ihdr.ColorType
	BitDepth  int
	Interlace ihdr.Interlace
	Strategy  selector.Strategy
	Level     zlibcodec.Level
}

// ErrCombinationInfeasible is returned by Validate (and by Encode, which
// validates first) when a combo is structurally disallowed, per §4.11:
// per-row filter selection is disallowed for sub-byte-depth palette rows.
var ErrCombinationInfeasible = errors.New("candidate: combination infeasible")

// Validate rejects combos §4.11 disallows before any work is done.
func (c Combo) Validate() error {
	if c.ColorMode == ihdr.Palette && c.BitDepth < 8 && c.Strategy != selector.SingleFilterStrategy {
		return ErrCombinationInfeasible
	}
	return nil
}

// Result is one fully-evaluated candidate, §3 "OptimizationResult".
type Result struct {
	Combo             Combo
	Bytes             []byte
	CompressedSize    int
	Filters           []filter.Type
	FilterTransitions int
	ProcessingTime    time.Duration
}

// Encode converts buf to combo's target representation, filters it,
// frames it as a complete PNG, and compresses the IDAT payload.
func Encode(buf *raster.Buffer, combo Combo, palette *raster.Palette) (*Result, error) {
	start := time.Now()

	if err := combo.Validate(); err != nil {
		return nil, err
	}

	rows := buf.Convert(raster.ConvertOptions{
		ColorMode: combo.ColorMode,
		BitDepth:  combo.BitDepth,
		Palette:   palette,
	})

	samplesPerPixel := combo.ColorMode.SamplesPerPixel()
	bpp := byteops.BytesPerPixel(samplesPerPixel, combo.BitDepth)

	var idatRaw []byte
	var filters []filter.Type

	if combo.Interlace == ihdr.InterlaceAdam7 {
		idatRaw, filters = encodeInterlaced(rows, buf.Width, buf.Height, combo, bpp, samplesPerPixel)
	} else {
		filters = selector.Apply(combo.Strategy, rows, bpp, combo.ColorMode, combo.BitDepth)
		idatRaw = encodeStraight(rows, filters, bpp)
	}

	compressed, err := zlibcodec.Deflate(idatRaw, combo.Level)
	if err != nil {
		return nil, err
	}

	stream := buildChunkStream(buf.Width, buf.Height, combo, palette, compressed)
	fileBytes := pngchunk.WriteAll(stream)

	return &Result{
		Combo:             combo,
		Bytes:             fileBytes,
		CompressedSize:    len(fileBytes),
		Filters:           filters,
		FilterTransitions: selector.CountTransitions(filters),
		ProcessingTime:    time.Since(start),
	}, nil
}

func encodeStraight(rows [][]byte, filters []filter.Type, bpp int) []byte {
	var out []byte
	var previous []byte
	for y, row := range rows {
		filtered := make([]byte, len(row))
		filter.Apply(filters[y], filtered, row, previous, bpp)
		out = append(out, byte(filters[y]))
		out = append(out, filtered...)
		previous = row
	}
	return out
}

// encodeInterlaced runs the chosen strategy independently within each
// Adam7 pass (the previous-row chain resets at each pass boundary, per
// §4.13) and concatenates the seven passes' filtered bytes in pass order.
func encodeInterlaced(rows [][]byte, width, height int, combo Combo, bpp, samplesPerPixel int) ([]byte, []filter.Type) {
	var out []byte
	var allFilters []filter.Type
	for _, pass := range adam7.Passes {
		passRows := adam7.GatherPassRows(rows, pass, width, height, combo.BitDepth, samplesPerPixel)
		if passRows == nil {
			continue
		}
		passFilters := selector.Apply(combo.Strategy, passRows, bpp, combo.ColorMode, combo.BitDepth)
		out = adam7.EncodeFilteredPass(out, passRows, passFilters, bpp)
		allFilters = append(allFilters, passFilters...)
	}
	return out, allFilters
}

func buildChunkStream(width, height int, combo Combo, palette *raster.Palette, compressedIDAT []byte) pngchunk.Stream {
	header := ihdr.Data{
		Width:           uint32(width),
		Height:          uint32(height),
		BitDepth:        byte(combo.BitDepth),
		ColorType:       combo.ColorMode,
		InterlaceMethod: combo.Interlace,
	}

	stream := pngchunk.Stream{
		{Type: "IHDR", Data: header.Serialize()},
	}
	if combo.ColorMode == ihdr.Palette {
		stream = append(stream, pngchunk.Chunk{Type: "PLTE", Data: palette.PLTEBytes()})
	}
	stream = append(stream, pngchunk.Chunk{Type: "IDAT", Data: compressedIDAT})
	stream = append(stream, pngchunk.Chunk{Type: "IEND", Data: nil})
	return stream
}
