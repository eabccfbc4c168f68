package raster

// Palette is the PNG PLTE table plus the lookup structures the quantizer
// needs, per §4.10.
type Palette struct {
	// Entries holds up to 256 (R,G,B) triplets in insertion order.
	Entries [][3]byte
	exact   map[uint32]int
}

func colorKey(r, g, b byte) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// BitDepthForColors returns the minimum PNG bit depth that can index n
// palette entries, per §4.10.
func BitDepthForColors(n int) int {
	switch {
	case n <= 2:
		return 1
	case n <= 4:
		return 2
	case n <= 16:
		return 4
	default:
		return 8
	}
}

// BuildPalette walks the raster's pixels in row-major order, collecting up
// to maxColors distinct 24-bit RGB colors in first-seen order (§4.10,
// phase one). Alpha is ignored.
func BuildPalette(b *Buffer, maxColors int) *Palette {
	p := &Palette{exact: make(map[uint32]int)}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			bl, gr, rd, _ := b.at(x, y)
			key := colorKey(rd, gr, bl)
			if _, seen := p.exact[key]; seen {
				continue
			}
			if len(p.Entries) >= maxColors {
				continue
			}
			p.exact[key] = len(p.Entries)
			p.Entries = append(p.Entries, [3]byte{rd, gr, bl})
		}
	}
	return p
}

// IndexFor returns the palette index for (r,g,b): the exact match if the
// color was collected during BuildPalette, otherwise the nearest entry by
// squared Euclidean distance, ties broken by lowest index (§4.10, phase
// two).
func (p *Palette) IndexFor(r, g, b byte) int {
	key := colorKey(r, g, b)
	if idx, ok := p.exact[key]; ok {
		return idx
	}
	best := 0
	bestDist := -1
	for i, e := range p.Entries {
		dr := int(r) - int(e[0])
		dg := int(g) - int(e[1])
		db := int(b) - int(e[2])
		dist := dr*dr + dg*dg + db*db
		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// PLTEBytes serializes the palette as the PLTE chunk payload: a flat
// concatenation of RGB triplets.
func (p *Palette) PLTEBytes() []byte {
	out := make([]byte, 0, len(p.Entries)*3)
	for _, e := range p.Entries {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}

// Len returns the number of distinct colors collected.
func (p *Palette) Len() int { return len(p.Entries) }
