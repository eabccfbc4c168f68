package byteops

import "testing"

func TestPaethBoundary(t *testing.T) {
	cases := []struct {
		a, b, c byte
		want    byte
	}{
		{10, 20, 15, 15}, // p=15, pa=5, pb=5, pc=0 -> c
		{10, 20, 5, 20},  // p=25, pa=15, pb=5, pc=20 -> b
		{10, 5, 0, 10},   // p=15, pa=5, pb=10, pc=15 -> a
	}
	for _, c := range cases {
		got := Paeth(c.a, c.b, c.c)
		if got != c.want {
			t.Errorf("Paeth(%d,%d,%d) = %d, want %d", c.a, c.b, c.c, got, c.want)
		}
	}
}

func TestPaethIsOneOfInputs(t *testing.T) {
	for a := 0; a < 256; a += 37 {
		for b := 0; b < 256; b += 41 {
			for c := 0; c < 256; c += 43 {
				got := Paeth(byte(a), byte(b), byte(c))
				if got != byte(a) && got != byte(b) && got != byte(c) {
					t.Fatalf("Paeth(%d,%d,%d) = %d, not one of inputs", a, b, c, got)
				}
			}
		}
	}
}

func TestAvg8NoOverflow(t *testing.T) {
	if got := Avg8(255, 255); got != 255 {
		t.Errorf("Avg8(255,255) = %d, want 255", got)
	}
	if got := Avg8(0, 1); got != 0 {
		t.Errorf("Avg8(0,1) = %d, want 0", got)
	}
}

func TestSubAddRoundtrip(t *testing.T) {
	for a := 0; a < 256; a += 13 {
		for b := 0; b < 256; b += 17 {
			s := Sub8(byte(a), byte(b))
			if got := Add8(s, byte(b)); got != byte(a) {
				t.Errorf("Add8(Sub8(%d,%d),%d) = %d, want %d", a, b, b, got, a)
			}
		}
	}
}

func TestBytesPerPixel(t *testing.T) {
	cases := []struct {
		samples, depth, want int
	}{
		{1, 1, 1}, {1, 8, 1}, {3, 8, 3}, {4, 8, 4}, {2, 16, 4}, {1, 2, 1},
	}
	for _, c := range cases {
		if got := BytesPerPixel(c.samples, c.depth); got != c.want {
			t.Errorf("BytesPerPixel(%d,%d) = %d, want %d", c.samples, c.depth, got, c.want)
		}
	}
}
