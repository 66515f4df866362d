package fileprocessor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/bmp"
)

func testDisplay(t *testing.T) *machine.Display {
	t.Helper()

	m, err := machine.New(log.NewTestLogger(t), config.Default())
	assert.NoError(t, err)
	// draw the font glyph F at the top left corner, V1 stays 0
	assert.NoError(t, m.LoadProgram([]byte{0x60, 0x0F, 0xF0, 0x29, 0xD1, 0x15}))
	for range 3 {
		ok, err := m.Step()
		assert.NoError(t, err)
		assert.True(t, ok)
	}
	return m.Display()
}

func TestWriteSnapshot_Text(t *testing.T) {
	display := testDisplay(t)
	output := filepath.Join(t.TempDir(), "frame.txt")
	opts := options.Program{
		Parameters: options.Parameters{Output: output},
		Display:    options.Display{Scale: 1},
	}

	assert.NoError(t, WriteSnapshot(log.NewTestLogger(t), opts, display))

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, display.String(), string(data))
	assert.True(t, strings.HasPrefix(string(data), "████"))
}

func TestWriteSnapshot_BMP(t *testing.T) {
	display := testDisplay(t)
	output := filepath.Join(t.TempDir(), "frame.bmp")
	opts := options.Program{
		Parameters: options.Parameters{Output: output},
		Display:    options.Display{Scale: 2},
	}

	assert.NoError(t, WriteSnapshot(log.NewTestLogger(t), opts, display))

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	img, err := bmp.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestWriteSnapshot_Errors(t *testing.T) {
	display := testDisplay(t)
	logger := log.NewTestLogger(t)

	opts := options.Program{
		Parameters: options.Parameters{Output: filepath.Join(t.TempDir(), "frame.gif")},
		Display:    options.Display{Scale: 1},
	}
	err := WriteSnapshot(logger, opts, display)
	assert.True(t, errors.Is(err, snapshot.ErrUnsupportedFormat))

	opts.Output = filepath.Join(t.TempDir(), "missing", "frame.txt")
	err = WriteSnapshot(logger, opts, display)
	var ioErr *machine.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, opts.Output, ioErr.Path)

	opts.Output = filepath.Join(t.TempDir(), "frame.bmp")
	opts.Scale = 0
	err = WriteSnapshot(logger, opts, display)
	assert.True(t, errors.Is(err, snapshot.ErrInvalidScale))
}

func TestPrintBanner(t *testing.T) {
	PrintBanner(log.NewTestLogger(t), options.Program{Flags: options.Flags{Quiet: true}}, "1.0.0", "abcdef123", "")
	PrintBanner(log.NewTestLogger(t), options.Program{}, "dev", "", "")
}
