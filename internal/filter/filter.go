// Package filter implements the five PNG scanline filters (None, Sub, Up,
// Average, Paeth), both forward (apply, at encode time) and reverse
// (unfilter, at decode time), plus the cost metric the selector packages
// use to choose between them.
//
// Both the straight-ahead codec path and the Adam7 interlaced path call
// into this package so the filter math never drifts between the two.
package filter

import "github.com/pngopt/pngopt/internal/byteops"

// Type is one of the five PNG per-scanline filter tags.
type Type byte

const (
	None    Type = 0
	Sub     Type = 1
	Up      Type = 2
	Average Type = 3
	Paeth   Type = 4
)

// Count is the number of filter types, useful for sizing per-row cost arrays.
const Count = 5

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Sub:
		return "Sub"
	case Up:
		return "Up"
	case Average:
		return "Average"
	case Paeth:
		return "Paeth"
	default:
		return "Unknown"
	}
}

// Apply filters current against previous (the previous reconstructed
// scanline; pass nil or an all-zero slice of the same length when there is
// none, e.g. the first row of an image or of an Adam7 pass) into dst, which
// must be len(current) bytes. dst may alias current only when filter is
// None.
func Apply(t Type, dst, current, previous []byte, bpp int) {
	n := len(current)
	switch t {
	case None:
		copy(dst, current)
	case Sub:
		for i := 0; i < n; i++ {
			var left byte
			if i >= bpp {
				left = current[i-bpp]
			}
			dst[i] = byteops.Sub8(current[i], left)
		}
	case Up:
		for i := 0; i < n; i++ {
			var up byte
			if previous != nil {
				up = previous[i]
			}
			dst[i] = byteops.Sub8(current[i], up)
		}
	case Average:
		for i := 0; i < n; i++ {
			var left, up byte
			if i >= bpp {
				left = current[i-bpp]
			}
			if previous != nil {
				up = previous[i]
			}
			dst[i] = byteops.Sub8(current[i], byteops.Avg8(left, up))
		}
	case Paeth:
		for i := 0; i < n; i++ {
			var left, up, upLeft byte
			if i >= bpp {
				left = current[i-bpp]
			}
			if previous != nil {
				up = previous[i]
				if i >= bpp {
					upLeft = previous[i-bpp]
				}
			}
			dst[i] = byteops.Sub8(current[i], byteops.Paeth(left, up, upLeft))
		}
	default:
		panic("filter: unknown filter type")
	}
}

// Reverse undoes Apply: given a filtered scanline and the previous
// reconstructed scanline, it writes the reconstructed bytes into dst. dst
// may alias filtered.
func Reverse(t Type, dst, filtered, previous []byte, bpp int) {
	n := len(filtered)
	switch t {
	case None:
		copy(dst, filtered)
	case Sub:
		for i := 0; i < n; i++ {
			var left byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			dst[i] = byteops.Add8(filtered[i], left)
		}
	case Up:
		for i := 0; i < n; i++ {
			var up byte
			if previous != nil {
				up = previous[i]
			}
			dst[i] = byteops.Add8(filtered[i], up)
		}
	case Average:
		for i := 0; i < n; i++ {
			var left, up byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			if previous != nil {
				up = previous[i]
			}
			dst[i] = byteops.Add8(filtered[i], byteops.Avg8(left, up))
		}
	case Paeth:
		for i := 0; i < n; i++ {
			var left, up, upLeft byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			if previous != nil {
				up = previous[i]
				if i >= bpp {
					upLeft = previous[i-bpp]
				}
			}
			dst[i] = byteops.Add8(filtered[i], byteops.Paeth(left, up, upLeft))
		}
	default:
		panic("filter: unknown filter type")
	}
}

// SumAbsDelta computes the selection cost used across the codec: the sum of
// absolute differences between successive bytes of the already-filtered
// signal, S = sum(|F[i+1]-F[i]|) for i in [0, len-2]. This tracks local
// volatility of the filtered signal rather than the classic sum-of-|F[i]|
// heuristic; see the selector package for where this is applied.
func SumAbsDelta(filtered []byte) int {
	sum := 0
	for i := 1; i < len(filtered); i++ {
		d := int(filtered[i]) - int(filtered[i-1])
		sum += byteops.Abs8(d)
	}
	return sum
}

// All enumerates the five filter types in their canonical tag order.
func All() []Type { return []Type{None, Sub, Up, Average, Paeth} }
