// Package terminal implements an interactive host that reads the keypad from a
// raw mode terminal and draws frames with ANSI escape sequences.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// DefaultHoldDuration is how long a key counts as pressed after the terminal
// reported it. Terminals only send key down events, repeated while a key is held.
const DefaultHoldDuration = 150 * time.Millisecond

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b

	cursorHome   = "\x1b[H"
	clearScreen  = "\x1b[2J"
	hideCursor   = "\x1b[?25l"
	showCursor   = "\x1b[?25h"
	bell         = "\a"
	readBufBytes = 64
)

// ErrNotTerminal is returned when the input is not an interactive terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// keyMap maps the left side of a QWERTY keyboard onto the COSMAC VIP keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyForByte returns the keypad key for a keyboard character. Upper case
// letters map like lower case ones.
func KeyForByte(b byte) (uint8, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	key, ok := keyMap[b]
	return key, ok
}

// Terminal is a host for an interactive terminal session.
type Terminal struct {
	logger *log.Logger
	in     io.Reader
	out    io.Writer
	stop   context.CancelFunc
	hold   time.Duration
	now    func() time.Time

	fd       int
	oldState *term.State

	mu      sync.Mutex
	pressed [machine.KeyCount]time.Time
	readErr error
}

// New returns a terminal host reading keys from in and drawing to out.
// The stop function is called when the user presses ESC or Ctrl+C.
func New(logger *log.Logger, in *os.File, out io.Writer, hold time.Duration, stop context.CancelFunc) *Terminal {
	t := newTerminal(logger, in, out, hold, stop)
	t.fd = int(in.Fd())
	return t
}

func newTerminal(logger *log.Logger, in io.Reader, out io.Writer, hold time.Duration, stop context.CancelFunc) *Terminal {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &Terminal{
		logger: logger,
		in:     in,
		out:    out,
		stop:   stop,
		hold:   hold,
		now:    time.Now,
		fd:     -1,
	}
}

// Start switches the terminal into raw mode and starts reading key presses.
func (t *Terminal) Start() error {
	if t.fd >= 0 {
		if !term.IsTerminal(t.fd) {
			return ErrNotTerminal
		}

		state, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("enabling raw mode: %w", err)
		}
		t.oldState = state
	}

	if _, err := io.WriteString(t.out, hideCursor+clearScreen); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}

	go t.readInput()
	return nil
}

// Close restores the previous terminal state. It does not wait for the key
// reader: a read on a terminal can not be interrupted, so the reader goroutine
// stays blocked until the next input or the end of the process.
func (t *Terminal) Close() error {
	if _, err := io.WriteString(t.out, showCursor+"\r\n"); err != nil {
		t.logger.Debug("Restoring cursor failed", log.Err(err))
	}

	if t.oldState == nil {
		return nil
	}
	if err := term.Restore(t.fd, t.oldState); err != nil {
		return fmt.Errorf("restoring terminal state: %w", err)
	}
	t.oldState = nil
	return nil
}

// Keys returns the keys that were pressed within the hold window.
func (t *Terminal) Keys() [machine.KeyCount]bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	var keys [machine.KeyCount]bool
	for key, pressedAt := range t.pressed {
		keys[key] = !pressedAt.IsZero() && now.Sub(pressedAt) < t.hold
	}
	return keys
}

// Present draws the display at the top left corner of the terminal.
func (t *Terminal) Present(display *machine.Display) error {
	frame := strings.ReplaceAll(display.String(), "\n", "\r\n")

	t.mu.Lock()
	err := t.readErr
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reading keyboard: %w", err)
	}

	if _, err := io.WriteString(t.out, cursorHome+frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Beep rings the terminal bell.
func (t *Terminal) Beep() {
	if _, err := io.WriteString(t.out, bell); err != nil {
		t.logger.Debug("Ringing bell failed", log.Err(err))
	}
}

func (t *Terminal) readInput() {
	buf := make([]byte, readBufBytes)
	for {
		n, err := t.in.Read(buf)
		if n > 0 {
			t.handleInput(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				t.mu.Lock()
				t.readErr = err
				t.mu.Unlock()
			}
			return
		}
	}
}

// handleInput records the key presses of one read. A lone ESC or a Ctrl+C
// requests a stop, longer escape sequences such as cursor keys are ignored.
func (t *Terminal) handleInput(data []byte) {
	if len(data) == 1 && data[0] == keyEscape {
		t.requestStop()
		return
	}
	if len(data) > 0 && data[0] == keyEscape {
		return
	}

	now := t.now()
	for _, b := range data {
		if b == keyCtrlC {
			t.requestStop()
			return
		}

		key, ok := KeyForByte(b)
		if !ok {
			continue
		}

		t.mu.Lock()
		t.pressed[key] = now
		t.mu.Unlock()
	}
}

func (t *Terminal) requestStop() {
	t.logger.Debug("Stop requested from keyboard")
	if t.stop != nil {
		t.stop()
	}
}
