// Package snapshot writes the content of a display to a file format.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"golang.org/x/image/bmp"
)

// Format is a snapshot output format.
type Format int

// Supported snapshot formats.
const (
	FormatText Format = iota
	FormatBMP
)

// MaxScale limits the pixel scale factor of image snapshots.
const MaxScale = 32

var (
	// ErrUnsupportedFormat is returned for file extensions without a snapshot format.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	// ErrInvalidScale is returned for scale factors outside of 1 to MaxScale.
	ErrInvalidScale = errors.New("invalid snapshot scale")
)

var palette = color.Palette{
	color.Black,
	color.White,
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromFileName returns the snapshot format matching the file extension.
func FormatFromFileName(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt":
		return FormatText, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, ext)
	}
}

// Write writes the display in the given format. The scale multiplies the size
// of every pixel in image formats and is ignored for text.
func Write(w io.Writer, display *machine.Display, format Format, scale int) error {
	switch format {
	case FormatText:
		if _, err := io.WriteString(w, display.String()); err != nil {
			return fmt.Errorf("writing text snapshot: %w", err)
		}
		return nil

	case FormatBMP:
		if scale < 1 || scale > MaxScale {
			return fmt.Errorf("%w: %d", ErrInvalidScale, scale)
		}
		if err := bmp.Encode(w, Image(display, scale)); err != nil {
			return fmt.Errorf("encoding bmp snapshot: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Image renders the display as black and white paletted image with every
// display pixel covering scale x scale image pixels.
func Image(display *machine.Display, scale int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, display.Width()*scale, display.Height()*scale), palette)

	for y := range display.Height() {
		for x := range display.Width() {
			if !display.Pixel(x, y) {
				continue
			}
			for dy := range scale {
				offset := img.PixOffset(x*scale, y*scale+dy)
				for dx := range scale {
					img.Pix[offset+dx] = 1
				}
			}
		}
	}
	return img
}
