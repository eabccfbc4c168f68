// Package byteops provides the small unsigned-byte arithmetic helpers the
// PNG filter kernel builds on: wrap-around add/sub, averaging, and the
// Paeth predictor.
package byteops

// Add8 returns a+b modulo 256, the reverse of Sub8.
func Add8(a, b byte) byte {
	return a + b
}

// Sub8 returns a-b modulo 256.
func Sub8(a, b byte) byte {
	return a - b
}

// Avg8 returns floor((x+y)/2) without overflow.
func Avg8(x, y byte) byte {
	return byte((uint16(x) + uint16(y)) >> 1)
}

// Abs8 returns the absolute value of a signed byte difference.
func Abs8(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Paeth implements the PNG Paeth predictor: p = a+b-c, then picks whichever
// of a, b, c is closest to p, with ties broken in favor of a, then b, then c.
func Paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := Abs8(p - int(a))
	pb := Abs8(p - int(b))
	pc := Abs8(p - int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

// BytesPerPixel computes bpp = max(1, ceil(samplesPerPixel*bitDepth/8)),
// the stride PNG filters use to look back at the "previous pixel" byte.
func BytesPerPixel(samplesPerPixel, bitDepth int) int {
	bpp := (samplesPerPixel*bitDepth + 7) / 8
	if bpp < 1 {
		return 1
	}
	return bpp
}
