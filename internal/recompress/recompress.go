// Package recompress implements the RecompressPipeline: given the bytes
// of an existing PNG, it decodes the raster back out, then re-enters the
// search restricted to the filter x deflate-level axis (the image's own
// color mode and bit depth are held fixed; the interlace method is kept
// unless Options.ForceNoInterlace drops Adam7), per §4.14.
package recompress

import (
	"errors"
	"fmt"

	"github.com/pngopt/pngopt/internal/adam7"
	"github.com/pngopt/pngopt/internal/byteops"
	"github.com/pngopt/pngopt/internal/candidate"
	"github.com/pngopt/pngopt/internal/filter"
	"github.com/pngopt/pngopt/internal/ihdr"
	"github.com/pngopt/pngopt/internal/pngchunk"
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

// Options configures one recompression run: the filter strategies and
// deflate levels the restricted search explores, and whether the output
// should be forced non-interlaced (stripping Adam7 during re-encode).
type Options struct {
	Strategies       []selector.Strategy
	Levels           []zlibcodec.Level
	ForceNoInterlace bool
}

// DefaultOptions mirrors §6.3's defaults for the filter x level axis.
func DefaultOptions() Options {
	return Options{
		Strategies: selector.AllStrategies(),
		Levels:     zlibcodec.AllLevels(),
	}
}

// ErrAllCandidatesFailed is returned when every filter x level
// combination failed to encode, per §7.
var ErrAllCandidatesFailed = errors.New("recompress: all candidates failed")

// Run executes §4.14's pipeline over an existing PNG's bytes and returns
// the smallest valid re-encoding plus any tolerated ancillary-CRC
// warnings surfaced while reading the input.
func Run(input []byte, opts Options) ([]byte, []error, error) {
	stream, warnings, err := pngchunk.ReadAll(input)
	if err != nil {
		return nil, nil, fmt.Errorf("recompress: read input: %w", err)
	}

	ihdrChunk, ok := stream.Find("IHDR")
	if !ok {
		return nil, nil, pngchunk.ErrMissingIhdr
	}
	header, err := ihdr.Parse(ihdrChunk.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("recompress: parse IHDR: %w", err)
	}

	compressed := pngchunk.ConcatenatedIDAT(stream)
	rawFiltered, err := zlibcodec.Inflate(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("recompress: inflate IDAT: %w", err)
	}

	samplesPerPixel := header.ColorType.SamplesPerPixel()
	if samplesPerPixel == 0 {
		return nil, nil, fmt.Errorf("recompress: unsupported color type %v", header.ColorType)
	}
	bpp := byteops.BytesPerPixel(samplesPerPixel, int(header.BitDepth))
	finalStride := (int(header.Width)*int(header.BitDepth)*samplesPerPixel + 7) / 8

	rows, err := unfilter(rawFiltered, header, bpp, samplesPerPixel, finalStride)
	if err != nil {
		return nil, nil, fmt.Errorf("recompress: unfilter: %w", err)
	}

	outputHeader := header
	if opts.ForceNoInterlace {
		outputHeader = header.WithoutInterlace()
	}

	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = selector.AllStrategies()
	}
	levels := opts.Levels
	if len(levels) == 0 {
		levels = zlibcodec.AllLevels()
	}

	var best *candidate.Result
	for _, strategy := range strategies {
		for _, level := range levels {
			combo := candidate.Combo{
				ColorMode: outputHeader.ColorType,
				BitDepth:  int(outputHeader.BitDepth),
				Interlace: outputHeader.InterlaceMethod,
				Strategy:  strategy,
				Level:     level,
			}
			result, err := encodeFixedRaster(rows, outputHeader, combo, bpp, samplesPerPixel)
			if err != nil {
				continue
			}
			if best == nil || result.CompressedSize < best.CompressedSize {
				best = result
			}
		}
	}
	if best == nil {
		return nil, warnings, ErrAllCandidatesFailed
	}

	outputStream := rebuildStream(stream, outputHeader, best)
	return pngchunk.WriteAll(outputStream), warnings, nil
}

// unfilter reverses either the straight or Adam7 filter chain over
// rawFiltered, returning one raw scanline per full-image row.
func unfilter(rawFiltered []byte, header ihdr.Data, bpp, samplesPerPixel, finalStride int) ([][]byte, error) {
	if header.InterlaceMethod == ihdr.InterlaceAdam7 {
		return adam7.Deinterlace(rawFiltered, int(header.Width), int(header.Height), int(header.BitDepth), samplesPerPixel, bpp, finalStride)
	}

	height := int(header.Height)
	rows := make([][]byte, height)
	pos := 0
	var previous []byte
	for y := 0; y < height; y++ {
		if pos >= len(rawFiltered) {
			return nil, fmt.Errorf("recompress: premature end of scanline data at row %d", y)
		}
		ft := filter.Type(rawFiltered[pos])
		pos++
		if pos+finalStride > len(rawFiltered) {
			return nil, fmt.Errorf("recompress: premature end of scanline data at row %d", y)
		}
		filtered := rawFiltered[pos : pos+finalStride]
		pos += finalStride

		recon := make([]byte, finalStride)
		filter.Reverse(ft, recon, filtered, previous, bpp)
		rows[y] = recon
		previous = recon
	}
	return rows, nil
}

// encodeFixedRaster re-filters and re-compresses already-decoded rows
// under combo, without going through candidate.Encode's pixel-conversion
// step (the raster is already in the target representation; only the
// filter strategy and deflate level vary in the restricted search).
func encodeFixedRaster(rows [][]byte, header ihdr.Data, combo candidate.Combo, bpp, samplesPerPixel int) (*candidate.Result, error) {
	if err := combo.Validate(); err != nil {
		return nil, err
	}

	var idatRaw []byte
	var filters []filter.Type
	if combo.Interlace == ihdr.InterlaceAdam7 {
		for _, pass := range adam7.Passes {
			passRows := adam7.GatherPassRows(rows, pass, int(header.Width), int(header.Height), combo.BitDepth, samplesPerPixel)
			if passRows == nil {
				continue
			}
			passFilters := selector.Apply(combo.Strategy, passRows, bpp, combo.ColorMode, combo.BitDepth)
			idatRaw = adam7.EncodeFilteredPass(idatRaw, passRows, passFilters, bpp)
			filters = append(filters, passFilters...)
		}
	} else {
		filters = selector.Apply(combo.Strategy, rows, bpp, combo.ColorMode, combo.BitDepth)
		var previous []byte
		for y, row := range rows {
			filtered := make([]byte, len(row))
			filter.Apply(filters[y], filtered, row, previous, bpp)
			idatRaw = append(idatRaw, byte(filters[y]))
			idatRaw = append(idatRaw, filtered...)
			previous = row
		}
	}

	compressed, err := zlibcodec.Deflate(idatRaw, combo.Level)
	if err != nil {
		return nil, err
	}

	stream := pngchunk.Stream{
		{Type: "IHDR", Data: header.Serialize()},
		{Type: "IDAT", Data: compressed},
		{Type: "IEND", Data: nil},
	}
	fileBytes := pngchunk.WriteAll(stream)

	return &candidate.Result{
		Combo:             combo,
		Bytes:             fileBytes,
		CompressedSize:    len(fileBytes),
		Filters:           filters,
		FilterTransitions: selector.CountTransitions(filters),
	}, nil
}

// rebuildStream preserves every non-IHDR/IDAT/IEND chunk from the
// original stream in order, swaps in the (possibly de-interlaced) IHDR,
// replaces all IDAT chunks with the winning candidate's single IDAT, and
// ensures IEND remains last, per §4.14 step 6.
func rebuildStream(original pngchunk.Stream, outputHeader ihdr.Data, best *candidate.Result) pngchunk.Stream {
	bestStream, _, err := pngchunk.ReadAll(best.Bytes)
	if err != nil {
		// best.Bytes was just produced by WriteAll, so a read failure here
		// would mean internal framing is broken, not a recoverable input
		// problem; the nil stream from the failed read is returned as is.
		return bestStream
	}
	newIdat, _ := bestStream.Find("IDAT")

	out := pngchunk.Stream{{Type: "IHDR", Data: outputHeader.Serialize()}}
	for _, c := range original {
		switch c.Type {
		case "IHDR", "IDAT", "IEND":
			continue
		default:
			out = append(out, c)
		}
	}
	out = append(out, newIdat)
	out = append(out, pngchunk.Chunk{Type: "IEND", Data: nil})
	return out
}
