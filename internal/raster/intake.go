package raster

import (
	"fmt"
	"image"
	"image/draw"

	_ "golang.org/x/image/bmp"
)

// DecodeImage decodes a host bitmap (BMP via golang.org/x/image/bmp, plus
// whatever image.Decode already has registered by the caller) into a
// Buffer. Components are treated as 8-bit sRGB; any embedded color
// profile is ignored. This is intake-only and never runs inside the
// codec core.
func DecodeImage(r image.Image) (*Buffer, error) {
	bounds := r.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("raster: decoded image has zero dimension")
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(nrgba, nrgba.Bounds(), r, bounds.Min, draw.Src)

	stride := width * 4
	pix := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := nrgba.PixOffset(x, y)
			rr, gg, bb, aa := nrgba.Pix[off], nrgba.Pix[off+1], nrgba.Pix[off+2], nrgba.Pix[off+3]
			dstOff := y*stride + x*4
			pix[dstOff] = bb
			pix[dstOff+1] = gg
			pix[dstOff+2] = rr
			pix[dstOff+3] = aa
		}
	}
	return NewFromBGRA(width, height, pix, stride), nil
}
