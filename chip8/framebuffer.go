package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Framebuffer defines the monochrome display bitmap, row-major.
// All mutation goes through XOR toggling, so drawing the same sprite
// twice at the same location restores the previous contents.
type Framebuffer struct {
	pix [DisplayWidth * DisplayHeight]bool
}

// Clear unlights every pixel.
func (f *Framebuffer) Clear() {
	f.pix = [DisplayWidth * DisplayHeight]bool{}
}

// Lit reports whether the pixel at the given coordinates is lit.
// Coordinates wrap around both axes.
func (f *Framebuffer) Lit(x, y int) bool {
	return f.pix[index(x, y)]
}

// DrawByte XOR-draws the 8 bits of b, most significant bit first, into
// the row at the given coordinates. Both axes wrap around per pixel.
// Returns true if any previously lit pixel was unset.
func (f *Framebuffer) DrawByte(x, y int, b byte) bool {
	var collision bool

	for bit := 0; bit < 8; bit++ {
		if b&(0x80>>bit) == 0 {
			continue
		}

		i := index(x+bit, y)
		if f.pix[i] {
			collision = true
		}
		f.pix[i] = !f.pix[i]
	}

	return collision
}

// index wraps the given coordinates and returns the row-major pixel index.
func index(x, y int) int {
	x &= DisplayWidth - 1
	y &= DisplayHeight - 1
	return y*DisplayWidth + x
}
