package selector

import (
	"math"

	"github.com/pngopt/pngopt/internal/filter"
	"github.com/pngopt/pngopt/internal/ihdr"
)

// PartitioningParams tunes the PartitionOptimizer's hysteresis, per §3's
// defaults.
type PartitioningParams struct {
	MinRowsMinor    int
	MinRowsStrong   int
	MinorThreshold  float64
	StrongThreshold float64
}

// DefaultPartitioningParams returns the hysteresis-walk defaults.
func DefaultPartitioningParams() PartitioningParams {
	return PartitioningParams{
		MinRowsMinor:    5,
		MinRowsStrong:   2,
		MinorThreshold:  1.10,
		StrongThreshold: 1.30,
	}
}

// PartitionOptimized walks rows top-to-bottom maintaining a current filter,
// switching only when sustained improvement over a look-ahead window
// justifies the transition cost, per §4.8.
func PartitionOptimized(rows [][]byte, bpp int, colorMode ihdr.ColorType, bitDepth int, params PartitioningParams) []filter.Type {
	height := len(rows)
	out := make([]filter.Type, height)
	if PolicyForcesNone(colorMode, bitDepth) {
		for i := range out {
			out[i] = filter.None
		}
		return out
	}

	scratch := make([]byte, maxRowLen(rows))
	scores := make([]RowCosts, height)
	for y, row := range rows {
		var previous []byte
		if y > 0 {
			previous = rows[y-1]
		}
		scores[y] = ComputeRowCosts(row, previous, bpp, scratch)
	}

	current := filter.None
	for y := 0; y < height; y++ {
		if y > height-params.MinRowsMinor {
			out[y] = current
			continue
		}

		best := scores[y].Argmin()
		if best == current {
			out[y] = current
			continue
		}

		strongHits, minorHits := 0, 0
		for k := 0; k < params.MinRowsMinor; k++ {
			row := y + k
			if row >= height {
				break
			}
			ratio := costRatio(scores[row][current], scores[row][best])
			if ratio >= params.StrongThreshold {
				strongHits++
			}
			if ratio >= params.MinorThreshold {
				minorHits++
			}
		}

		if strongHits >= params.MinRowsStrong || minorHits >= params.MinRowsMinor {
			current = best
		}
		out[y] = current
	}
	return out
}

// costRatio computes currentCost/bestCost as a float, treating a
// zero-cost best as "infinitely better" unless current is also zero.
func costRatio(current, best int) float64 {
	if best == 0 {
		if current == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return float64(current) / float64(best)
}
