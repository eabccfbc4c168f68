package candidate

import (
	"bytes"
	"testing"

	"github.com/pngopt/pngopt/internal/ihdr"
	"github.com/pngopt/pngopt/internal/pngchunk"
	"github.com/pngopt/pngopt/internal/raster"
	"github.com/pngopt/pngopt/internal/selector"
	"github.com/pngopt/pngopt/internal/zlibcodec"
)

func solidBGRA(width, height int, blue, green, red, alpha byte) *raster.Buffer {
	stride := width * 4
	pix := make([]byte, stride*height)
	for i := 0; i < width*height; i++ {
		pix[i*4] = blue
		pix[i*4+1] = green
		pix[i*4+2] = red
		pix[i*4+3] = alpha
	}
	return raster.NewFromBGRA(width, height, pix, stride)
}

func gradientBGRA(width, height int) *raster.Buffer {
	stride := width * 4
	pix := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*stride + x*4
			v := byte((x * 255) / (width - 1 + 1))
			pix[off] = v
			pix[off+1] = v
			pix[off+2] = v
			pix[off+3] = 255
		}
	}
	return raster.NewFromBGRA(width, height, pix, stride)
}

func TestEncodeRGBProducesValidPng(t *testing.T) {
	buf := solidBGRA(4, 4, 10, 20, 30, 255)
	combo := Combo{
		ColorMode: ihdr.RGB,
		BitDepth:  8,
		Interlace: ihdr.InterlaceNone,
		Strategy:  selector.ScanlineAdaptiveStrategy,
		Level:     zlibcodec.Default,
	}
	result, err := Encode(buf, combo, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(result.Bytes, pngchunk.Signature[:]) {
		t.Fatal("result bytes do not start with the PNG signature")
	}
	if result.CompressedSize != len(result.Bytes) {
		t.Errorf("CompressedSize = %d, want %d", result.CompressedSize, len(result.Bytes))
	}

	stream, warnings, err := pngchunk.ReadAll(result.Bytes)
	if err != nil {
		t.Fatalf("ReadAll(result): %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	ihdrChunk, ok := stream.Find("IHDR")
	if !ok {
		t.Fatal("missing IHDR")
	}
	header, err := ihdr.Parse(ihdrChunk.Data)
	if err != nil {
		t.Fatalf("ihdr.Parse: %v", err)
	}
	if header.Width != 4 || header.Height != 4 {
		t.Errorf("IHDR dims = %dx%d, want 4x4", header.Width, header.Height)
	}

	raw := pngchunk.ConcatenatedIDAT(stream)
	decompressed, err := zlibcodec.Inflate(raw)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	// 4 rows, each 1 filter byte + 12 sample bytes.
	if len(decompressed) != 4*(1+12) {
		t.Errorf("decompressed IDAT length = %d, want %d", len(decompressed), 4*13)
	}
}

func TestEncodePaletteEmitsPLTE(t *testing.T) {
	buf := solidBGRA(3, 3, 1, 2, 3, 255)
	palette := raster.BuildPalette(buf, 256)
	combo := Combo{
		ColorMode: ihdr.Palette,
		BitDepth:  8,
		Interlace: ihdr.InterlaceNone,
		Strategy:  selector.ScanlineAdaptiveStrategy,
		Level:     zlibcodec.Default,
	}
	result, err := Encode(buf, combo, palette)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	stream, _, err := pngchunk.ReadAll(result.Bytes)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	plte, ok := stream.Find("PLTE")
	if !ok {
		t.Fatal("missing PLTE chunk for palette combo")
	}
	if len(plte.Data) != palette.Len()*3 {
		t.Errorf("PLTE data length = %d, want %d", len(plte.Data), palette.Len()*3)
	}
	for _, f := range result.Filters {
		if f != 0 {
			t.Errorf("palette rows must use filter None, got %v", f)
		}
	}
}

func TestEncodeRejectsInfeasibleCombo(t *testing.T) {
	buf := solidBGRA(2, 2, 0, 0, 0, 255)
	palette := raster.BuildPalette(buf, 16)
	combo := Combo{
		ColorMode: ihdr.Palette,
		BitDepth:  4,
		Interlace: ihdr.InterlaceNone,
		Strategy:  selector.ScanlineAdaptiveStrategy,
		Level:     zlibcodec.Default,
	}
	if _, err := Encode(buf, combo, palette); err != ErrCombinationInfeasible {
		t.Errorf("Encode error = %v, want ErrCombinationInfeasible", err)
	}
}

func TestEncodeAdam7RoundtripsThroughPngchunk(t *testing.T) {
	buf := gradientBGRA(9, 9)
	combo := Combo{
		ColorMode: ihdr.RGB,
		BitDepth:  8,
		Interlace: ihdr.InterlaceAdam7,
		Strategy:  selector.SingleFilterStrategy,
		Level:     zlibcodec.Fast,
	}
	result, err := Encode(buf, combo, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	stream, _, err := pngchunk.ReadAll(result.Bytes)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	ihdrChunk, _ := stream.Find("IHDR")
	header, err := ihdr.Parse(ihdrChunk.Data)
	if err != nil {
		t.Fatalf("ihdr.Parse: %v", err)
	}
	if header.InterlaceMethod != ihdr.InterlaceAdam7 {
		t.Errorf("InterlaceMethod = %v, want InterlaceAdam7", header.InterlaceMethod)
	}
	if len(result.Filters) == 0 {
		t.Error("interlaced encode produced no per-row filters")
	}
}

func TestEncodeLevelAffectsCompressedSize(t *testing.T) {
	buf := gradientBGRA(32, 32)
	fast := Combo{ColorMode: ihdr.RGB, BitDepth: 8, Strategy: selector.ScanlineAdaptiveStrategy, Level: zlibcodec.Fastest}
	ultra := Combo{ColorMode: ihdr.RGB, BitDepth: 8, Strategy: selector.ScanlineAdaptiveStrategy, Level: zlibcodec.Ultra}

	fastResult, err := Encode(buf, fast, nil)
	if err != nil {
		t.Fatalf("Encode(fast): %v", err)
	}
	ultraResult, err := Encode(buf, ultra, nil)
	if err != nil {
		t.Fatalf("Encode(ultra): %v", err)
	}
	if ultraResult.CompressedSize > fastResult.CompressedSize {
		t.Errorf("Ultra (%d bytes) should not be larger than Fastest (%d bytes) on this input",
			ultraResult.CompressedSize, fastResult.CompressedSize)
	}
}
