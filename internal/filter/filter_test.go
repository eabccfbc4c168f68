package filter

import (
	"bytes"
	"testing"
)

func TestRoundtripAllFiltersAllBpp(t *testing.T) {
	current := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	previous := []byte{12, 22, 32, 42, 52, 62, 72, 82}
	for _, bpp := range []int{1, 2, 3, 4} {
		for _, ft := range All() {
			filtered := make([]byte, len(current))
			Apply(ft, filtered, current, previous, bpp)
			recon := make([]byte, len(current))
			Reverse(ft, recon, filtered, previous, bpp)
			if !bytes.Equal(recon, current) {
				t.Errorf("filter %v bpp=%d: roundtrip mismatch: got %v want %v", ft, bpp, recon, current)
			}
		}
	}
}

func TestRoundtripNoPreviousRow(t *testing.T) {
	current := []byte{1, 2, 3, 250, 251, 252}
	for _, bpp := range []int{1, 3} {
		for _, ft := range All() {
			filtered := make([]byte, len(current))
			Apply(ft, filtered, current, nil, bpp)
			recon := make([]byte, len(current))
			Reverse(ft, recon, filtered, nil, bpp)
			if !bytes.Equal(recon, current) {
				t.Errorf("filter %v bpp=%d no-prev: roundtrip mismatch: got %v want %v", ft, bpp, recon, current)
			}
		}
	}
}

func TestSubFilterFirstPixelIsZeroLeft(t *testing.T) {
	current := []byte{100, 200}
	filtered := make([]byte, 2)
	Apply(Sub, filtered, current, nil, 1)
	if filtered[0] != 100 {
		t.Errorf("Sub filter byte 0 = %d, want 100 (100-0)", filtered[0])
	}
}

func TestSumAbsDeltaGradientBeatsNone(t *testing.T) {
	// 4x1 horizontal gradient row from S3: R=[0,64,128,192], RGB8.
	row := []byte{0, 0, 0, 64, 64, 64, 128, 128, 128, 192, 192, 192}
	bpp := 3
	noneFiltered := make([]byte, len(row))
	Apply(None, noneFiltered, row, nil, bpp)
	subFiltered := make([]byte, len(row))
	Apply(Sub, subFiltered, row, nil, bpp)

	subCost := SumAbsDelta(subFiltered)
	noneCost := SumAbsDelta(noneFiltered)
	if subCost >= noneCost {
		t.Errorf("Sub cost %d should be < None cost %d for a linear gradient", subCost, noneCost)
	}
}

func TestUpFilterDependentRows(t *testing.T) {
	// S4: row0=[10,20,30], row1=[12,22,32] RGB8. Up filter on row1 -> [2,2,2].
	row0 := []byte{10, 20, 30}
	row1 := []byte{12, 22, 32}
	up := make([]byte, 3)
	Apply(Up, up, row1, row0, 3)
	want := []byte{2, 2, 2}
	if !bytes.Equal(up, want) {
		t.Errorf("Up(row1, row0) = %v, want %v", up, want)
	}
}
