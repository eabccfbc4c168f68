// Package adam7 implements the seven-pass Adam7 interlace geometry: per-pass
// sub-image dimensions, scatter/gather between a pass's compact raster and
// the final image, and the per-pass unfilter chain used by both the
// recompress path (deinterlacing existing files) and the optional
// re-interlace candidate.
package adam7

import (
	"errors"

	"github.com/pngopt/pngopt/internal/filter"
)

// Pass describes one of the seven Adam7 passes' starting offset and stride
// over the final image, per §4.13.
type Pass struct {
	StartRow, StartCol int
	RowInc, ColInc     int
}

// Passes are the seven Adam7 passes in wire order.
var Passes = [7]Pass{
	{0, 0, 8, 8},
	{0, 4, 8, 8},
	{4, 0, 8, 4},
	{0, 2, 4, 4},
	{2, 0, 4, 2},
	{0, 1, 2, 2},
	{1, 0, 2, 1},
}

// ceilDiv computes ceil(a/b) for non-negative a,b>0.
func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Dimensions returns passW, passH for pass p over a width x height image.
func (p Pass) Dimensions(width, height int) (passW, passH int) {
	passW = ceilDiv(width-p.StartCol, p.ColInc)
	passH = ceilDiv(height-p.StartRow, p.RowInc)
	if passW < 0 {
		passW = 0
	}
	if passH < 0 {
		passH = 0
	}
	return
}

// Row returns the final-image row for row py within pass p.
func (p Pass) Row(py int) int { return p.StartRow + py*p.RowInc }

// Col returns the final-image column for column px within pass p.
func (p Pass) Col(px int) int { return p.StartCol + px*p.ColInc }

// stride computes the byte width of a passW-pixel scanline at the given
// bit depth and samples-per-pixel, matching the packed MSB-first layout
// §4.9 describes.
func stride(passW, bitDepth, samplesPerPixel int) int {
	bits := passW * bitDepth * samplesPerPixel
	return (bits + 7) / 8
}

// Deinterlace reconstructs the full-image raw (unfiltered) scanlines from
// the concatenated, still-filtered Adam7 byte stream. scanlines[y] receives
// stride(width) bytes for row y of the final image; passes whose width or
// height is zero contribute nothing and are skipped, leaving those rows
// untouched for images where every pixel is covered by some later pass.
func Deinterlace(data []byte, width, height, bitDepth, samplesPerPixel int, bpp int, finalStride int) (scanlines [][]byte, err error) {
	scanlines = make([][]byte, height)
	for y := range scanlines {
		scanlines[y] = make([]byte, finalStride)
	}

	pos := 0
	for _, pass := range Passes {
		passW, passH := pass.Dimensions(width, height)
		if passW == 0 || passH == 0 {
			continue
		}
		passStride := stride(passW, bitDepth, samplesPerPixel)

		var previous []byte
		for py := 0; py < passH; py++ {
			if pos >= len(data) {
				return nil, errPrematureEof
			}
			ft := filter.Type(data[pos])
			pos++
			if pos+passStride > len(data) {
				return nil, errPrematureEof
			}
			filtered := data[pos : pos+passStride]
			pos += passStride

			recon := make([]byte, passStride)
			filter.Reverse(ft, recon, filtered, previous, bpp)
			previous = recon

			scatterRow(scanlines, recon, pass, py, width, bitDepth, samplesPerPixel)
		}
	}
	return scanlines, nil
}

var errPrematureEof = errors.New("adam7: premature end of data")

// scatterRow writes the packed-pixel bytes of one pass row into their
// positions in the final image's scanlines. For bit depths < 8 this walks
// pixel-by-pixel so sub-byte packing is respected; for depth>=8 it copies
// whole samples at a stride.
func scatterRow(scanlines [][]byte, recon []byte, pass Pass, py int, width, bitDepth, samplesPerPixel int) {
	destY := pass.Row(py)
	if destY >= len(scanlines) {
		return
	}
	dest := scanlines[destY]

	if bitDepth >= 8 {
		bytesPerSample := bitDepth / 8
		sampleSize := bytesPerSample * samplesPerPixel
		px := 0
		for srcOff := 0; srcOff+sampleSize <= len(recon); srcOff += sampleSize {
			destX := pass.Col(px)
			if destX*sampleSize+sampleSize <= len(dest) {
				copy(dest[destX*sampleSize:destX*sampleSize+sampleSize], recon[srcOff:srcOff+sampleSize])
			}
			px++
		}
		return
	}

	// Sub-byte depths (1,2,4): samplesPerPixel is always 1 (grayscale or
	// palette), one pixel packed MSB-first per bitDepth bits.
	px := 0
	for {
		bitOff := px * bitDepth
		if bitOff/8 >= len(recon) {
			break
		}
		v := readPackedSample(recon, px, bitDepth)
		destX := pass.Col(px)
		writePackedSample(dest, destX, bitDepth, v)
		px++
	}
}

func readPackedSample(data []byte, index, bitDepth int) byte {
	bitOff := index * bitDepth
	byteIdx := bitOff / 8
	if byteIdx >= len(data) {
		return 0
	}
	shift := 8 - bitDepth - (bitOff % 8)
	mask := byte((1 << bitDepth) - 1)
	return (data[byteIdx] >> shift) & mask
}

func writePackedSample(data []byte, index, bitDepth int, value byte) {
	bitOff := index * bitDepth
	byteIdx := bitOff / 8
	if byteIdx >= len(data) {
		return
	}
	shift := 8 - bitDepth - (bitOff % 8)
	mask := byte((1 << bitDepth) - 1)
	data[byteIdx] &^= mask << shift
	data[byteIdx] |= (value & mask) << shift
}

// Interlace is the inverse of Deinterlace: given full-image raw scanlines,
// it produces the concatenated, filtered Adam7 byte stream (filter tags
// included), calling chooseFilter to pick the per-row filter for each pass
// independently (the previous-row chain resets at each pass boundary).
func Interlace(scanlines [][]byte, width, height, bitDepth, samplesPerPixel, bpp int, chooseFilter func(pass int, current, previous []byte) filter.Type) []byte {
	var out []byte
	for passIdx, pass := range Passes {
		passW, passH := pass.Dimensions(width, height)
		if passW == 0 || passH == 0 {
			continue
		}
		passStride := stride(passW, bitDepth, samplesPerPixel)

		var previous []byte
		for py := 0; py < passH; py++ {
			current := make([]byte, passStride)
			gatherRow(scanlines, current, pass, py, width, bitDepth, samplesPerPixel)

			ft := chooseFilter(passIdx, current, previous)
			filtered := make([]byte, passStride)
			filter.Apply(ft, filtered, current, previous, bpp)

			out = append(out, byte(ft))
			out = append(out, filtered...)
			previous = current
		}
	}
	return out
}

// GatherPassRows returns the passH raw scanlines for one pass (each
// stride(passW,...) bytes), gathered from the full-image raw scanlines.
// Used by candidate encoding, which needs every row of a pass up front to
// run a whole-pass filter strategy (SingleFilter, PartitionOptimized)
// before filtering and emitting.
func GatherPassRows(scanlines [][]byte, pass Pass, width, height, bitDepth, samplesPerPixel int) [][]byte {
	passW, passH := pass.Dimensions(width, height)
	if passW == 0 || passH == 0 {
		return nil
	}
	passStride := stride(passW, bitDepth, samplesPerPixel)
	rows := make([][]byte, passH)
	for py := 0; py < passH; py++ {
		row := make([]byte, passStride)
		gatherRow(scanlines, row, pass, py, width, bitDepth, samplesPerPixel)
		rows[py] = row
	}
	return rows
}

// EncodeFilteredPass applies the given per-row filters to a pass's raw
// rows (the previous-row chain resetting at py==0, i.e. at the start of
// the pass) and appends filter-tag-prefixed filtered bytes to out.
func EncodeFilteredPass(out []byte, rows [][]byte, filters []filter.Type, bpp int) []byte {
	var previous []byte
	for i, row := range rows {
		filtered := make([]byte, len(row))
		filter.Apply(filters[i], filtered, row, previous, bpp)
		out = append(out, byte(filters[i]))
		out = append(out, filtered...)
		previous = row
	}
	return out
}

func gatherRow(scanlines [][]byte, dest []byte, pass Pass, py int, width, bitDepth, samplesPerPixel int) {
	srcY := pass.Row(py)
	if srcY >= len(scanlines) {
		return
	}
	src := scanlines[srcY]

	if bitDepth >= 8 {
		bytesPerSample := bitDepth / 8
		sampleSize := bytesPerSample * samplesPerPixel
		px := 0
		for destOff := 0; destOff+sampleSize <= len(dest); destOff += sampleSize {
			srcX := pass.Col(px)
			if srcX*sampleSize+sampleSize <= len(src) {
				copy(dest[destOff:destOff+sampleSize], src[srcX*sampleSize:srcX*sampleSize+sampleSize])
			}
			px++
		}
		return
	}

	px := 0
	for {
		bitOff := px * bitDepth
		if bitOff/8 >= len(dest) {
			break
		}
		srcX := pass.Col(px)
		v := readPackedSample(src, srcX, bitDepth)
		writePackedSample(dest, px, bitDepth, v)
		px++
	}
}
