package machine

import (
	"strings"
)

// Display is a monochrome pixel grid, true is a lit pixel.
type Display struct {
	width      int
	height     int
	pixels     []bool
	generation uint64
}

func newDisplay(width, height int) *Display {
	return &Display{
		width:  width,
		height: height,
		pixels: make([]bool, width*height),
	}
}

// Width returns the number of pixel columns.
func (d *Display) Width() int {
	return d.width
}

// Height returns the number of pixel rows.
func (d *Display) Height() int {
	return d.height
}

// Pixel returns whether the pixel is lit. Coordinates outside of the display are unlit.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.pixels[y*d.width+x]
}

// Rows returns a copy of the display as rows of pixels.
func (d *Display) Rows() [][]bool {
	rows := make([][]bool, d.height)
	for y := range rows {
		row := make([]bool, d.width)
		copy(row, d.pixels[y*d.width:(y+1)*d.width])
		rows[y] = row
	}
	return rows
}

// Generation returns a counter that changes whenever the display content was
// cleared or drawn to.
func (d *Display) Generation() uint64 {
	return d.generation
}

// Lit returns the number of lit pixels.
func (d *Display) Lit() int {
	var lit int
	for _, pixel := range d.pixels {
		if pixel {
			lit++
		}
	}
	return lit
}

// String renders the display as text, one line per row with a full block for
// every lit pixel.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((d.width*3 + 1) * d.height)

	for y := range d.height {
		for _, pixel := range d.pixels[y*d.width : (y+1)*d.width] {
			if pixel {
				sb.WriteRune('█')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (d *Display) clear() {
	clear(d.pixels)
	d.generation++
}

// drawSprite XORs the sprite rows onto the display with the top left corner at the
// anchor. Every row is 8 pixels wide, most significant bit first. Pixels beyond an
// edge wrap around to the opposite edge. It returns whether a lit pixel was erased.
func (d *Display) drawSprite(anchorX, anchorY int, rows []byte) bool {
	anchorX %= d.width
	anchorY %= d.height

	var collision bool
	for row, bits := range rows {
		y := (anchorY + row) % d.height
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}

			x := (anchorX + col) % d.width
			index := y*d.width + x
			if d.pixels[index] {
				collision = true
			}
			d.pixels[index] = !d.pixels[index]
		}
	}

	d.generation++
	return collision
}
