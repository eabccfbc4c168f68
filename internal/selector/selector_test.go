package selector

import (
	"testing"

	"github.com/pngopt/pngopt/internal/filter"
	"github.com/pngopt/pngopt/internal/ihdr"
)

func TestPolicyForcesNonePalette(t *testing.T) {
	if !PolicyForcesNone(ihdr.Palette, 8) {
		t.Error("palette color mode should force None regardless of bit depth")
	}
	if !PolicyForcesNone(ihdr.Grayscale, 4) {
		t.Error("grayscale bit depth < 8 should force None")
	}
	if PolicyForcesNone(ihdr.Grayscale, 8) {
		t.Error("grayscale bit depth 8 should not force None")
	}
	if PolicyForcesNone(ihdr.RGB, 8) {
		t.Error("RGB should never force None")
	}
}

func TestSelectRowForcedNone(t *testing.T) {
	scratch := make([]byte, 4)
	got := SelectRow([]byte{1, 2, 3, 4}, nil, 1, ihdr.Palette, 8, scratch)
	if got != filter.None {
		t.Errorf("SelectRow for palette = %v, want None", got)
	}
}

func TestS4UpFilterSelected(t *testing.T) {
	row0 := []byte{10, 20, 30}
	row1 := []byte{12, 22, 32}
	scratch := make([]byte, 3)
	got := SelectRow(row1, row0, 3, ihdr.RGB, 8, scratch)
	if got != filter.Up {
		t.Errorf("SelectRow(row1,row0) = %v, want Up", got)
	}
}

func TestS3GradientSelectsSub(t *testing.T) {
	row := []byte{0, 0, 0, 64, 64, 64, 128, 128, 128, 192, 192, 192}
	scratch := make([]byte, len(row))
	got := SelectRow(row, nil, 3, ihdr.RGB, 8, scratch)
	if got != filter.Sub {
		t.Errorf("SelectRow(gradient) = %v, want Sub", got)
	}
}

func TestWeightedContinuityBiasesTowardLastUsed(t *testing.T) {
	sel := NewWeightedSelector()
	scratch := make([]byte, 3)
	// First row establishes lastUsed.
	row0 := []byte{10, 20, 30}
	first := sel.SelectRow(row0, nil, 3, ihdr.RGB, 8, scratch)
	if sel.lastUsed != first {
		t.Fatalf("lastUsed = %v, want %v", sel.lastUsed, first)
	}
	// Up costs 19 and None 20 on this row, so the plain selector picks Up;
	// weighting lastUsed (None) by 0.9 gives 18 and keeps None.
	row1 := []byte{0, 10, 20}
	prev := []byte{0, 0, 1}
	if plain := SelectRow(row1, prev, 3, ihdr.RGB, 8, scratch); plain != filter.Up {
		t.Fatalf("unweighted SelectRow = %v, want Up", plain)
	}
	if got := sel.SelectRow(row1, prev, 3, ihdr.RGB, 8, scratch); got != first {
		t.Errorf("weighted SelectRow = %v, want %v (lastUsed)", got, first)
	}
}

func TestSingleFilterPicksMinSum(t *testing.T) {
	rows := [][]byte{
		{10, 20, 30},
		{12, 22, 32},
		{14, 24, 34},
		{16, 26, 36},
	}
	got := SingleFilter(rows, 3, ihdr.RGB, 8)
	for _, f := range got {
		if f != filter.Up {
			t.Errorf("SingleFilter on a constant-delta gradient should pick Up everywhere, got %v", f)
		}
	}
}

func TestPartitionOptimizedTailNoChange(t *testing.T) {
	params := DefaultPartitioningParams()
	rows := make([][]byte, 10)
	for i := range rows {
		rows[i] = []byte{byte(i), byte(i * 2), byte(i * 3)}
	}
	got := PartitionOptimized(rows, 3, ihdr.RGB, 8, params)
	if len(got) != 10 {
		t.Fatalf("got %d filters, want 10", len(got))
	}
	// The tail (last MinRowsMinor rows) must all equal whatever was
	// current entering the tail -- i.e. no new transitions there.
	tailStart := 10 - params.MinRowsMinor
	for i := tailStart + 1; i < 10; i++ {
		if got[i] != got[tailStart] {
			t.Errorf("tail row %d = %v, want %v (no changes allowed near tail)", i, got[i], got[tailStart])
		}
	}
}

func TestPartitionOptimizedForcedNone(t *testing.T) {
	rows := [][]byte{{1}, {2}, {3}}
	got := PartitionOptimized(rows, 1, ihdr.Palette, 8, DefaultPartitioningParams())
	for _, f := range got {
		if f != filter.None {
			t.Errorf("palette rows = %v, want all None", f)
		}
	}
}

func TestCountTransitions(t *testing.T) {
	fs := []filter.Type{filter.None, filter.None, filter.Sub, filter.Sub, filter.Up}
	if got := CountTransitions(fs); got != 2 {
		t.Errorf("CountTransitions = %d, want 2", got)
	}
}
