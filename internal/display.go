package internal

// Framebuffer is the 64 px x 32 px monochrome display in row-major order
type Framebuffer [ScreenWidth * ScreenHeight]bool

// At reports whether the pixel at column x, row y is lit.
// Coordinates wrap around the screen edges.
func (fb *Framebuffer) At(x, y int) bool {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight
	return fb[y*ScreenWidth+x]
}

// Lit returns the number of lit pixels
func (fb *Framebuffer) Lit() int {
	n := 0
	for _, px := range fb {
		if px {
			n++
		}
	}
	return n
}

func (fb *Framebuffer) clear() {
	*fb = Framebuffer{}
}

// blit XORs an 8-pixel wide sprite onto the display with its top left corner
// at (x, y), wrapping on both axes. It reports whether any lit pixel was
// turned off.
func (fb *Framebuffer) blit(x, y int, sprite []uint8) bool {
	collision := false
	for row, line := range sprite {
		py := (y + row) % ScreenHeight
		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>bit) == 0 {
				continue
			}
			px := (x + bit) % ScreenWidth
			idx := py*ScreenWidth + px
			if fb[idx] {
				collision = true
			}
			fb[idx] = !fb[idx]
		}
	}
	return collision
}
