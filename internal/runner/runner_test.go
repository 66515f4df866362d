package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeHost struct {
	keys       [machine.KeyCount]bool
	presented  int
	lastFrame  string
	presentErr error
}

func (h *fakeHost) Keys() [machine.KeyCount]bool {
	return h.keys
}

func (h *fakeHost) Present(display *machine.Display) error {
	if h.presentErr != nil {
		return h.presentErr
	}
	h.presented++
	h.lastFrame = display.String()
	return nil
}

type beepingHost struct {
	fakeHost
	beeps int
}

func (h *beepingHost) Beep() {
	h.beeps++
}

// steppingClock advances by a fixed amount every time it is read.
type steppingClock struct {
	now  time.Time
	tick time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(c.tick)
	return c.now
}

func (c *steppingClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
}

func newMachine(t *testing.T, words ...uint16) *machine.Machine {
	t.Helper()

	cfg := config.Default()
	cfg.InstructionDelay = 0
	clock := &steppingClock{tick: time.Second / time.Duration(cfg.TimerFrequency)}
	m, err := machine.New(log.NewTestLogger(t), cfg, machine.WithClock(clock))
	assert.NoError(t, err)

	data := make([]byte, 0, len(words)*2)
	for _, word := range words {
		data = append(data, byte(word>>8), byte(word))
	}
	assert.NoError(t, m.LoadProgram(data))
	return m
}

func TestRun_Halt(t *testing.T) {
	// zero words are no-ops, the machine runs off the end of memory
	m := newMachine(t, 0x6001)
	host := &fakeHost{}
	r := New(log.NewTestLogger(t), m, host)

	assert.NoError(t, r.Run(context.Background()))
	assert.True(t, r.Halted())
	expected := uint64(config.DefaultMemorySize-config.DefaultProgramStart) / 2
	assert.Equal(t, expected, r.Steps())
	assert.Equal(t, 1, host.presented)
}

func TestRun_MaxSteps(t *testing.T) {
	m := newMachine(t, 0x1200)
	host := &fakeHost{}
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(50))

	assert.NoError(t, r.Run(context.Background()))
	assert.False(t, r.Halted())
	assert.Equal(t, uint64(50), r.Steps())
	assert.Equal(t, uint64(50), m.Steps())
	assert.Equal(t, 1, host.presented)
}

func TestRun_ContextCancelled(t *testing.T) {
	m := newMachine(t, 0x1200)
	host := &fakeHost{}
	r := New(log.NewTestLogger(t), m, host)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(0), r.Steps())
	assert.Equal(t, 1, host.presented)
}

func TestRun_Fault(t *testing.T) {
	m := newMachine(t, 0x6001, 0x00EE)
	host := &fakeHost{}
	r := New(log.NewTestLogger(t), m, host)

	err := r.Run(context.Background())
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
	assert.Equal(t, uint64(1), r.Steps())
	assert.False(t, r.Halted())
	assert.Equal(t, uint16(0x202), m.PC())
}

func TestRun_PresentsChangedFrames(t *testing.T) {
	// draw the 0 glyph, clear the screen, draw it again, then loop
	m := newMachine(t, 0xA050, 0xD005, 0x00E0, 0xD005, 0x1208)
	host := &fakeHost{}
	// every read of the clock passes a full frame interval
	clock := &steppingClock{tick: DefaultFrameInterval}
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(20), WithClock(clock))

	assert.NoError(t, r.Run(context.Background()))
	// three display changes plus the final frame
	assert.Equal(t, 4, host.presented)
	assert.Equal(t, m.Display().String(), host.lastFrame)
	assert.Equal(t, 14, m.Display().Lit())
}

func TestRun_FrameInterval(t *testing.T) {
	m := newMachine(t, 0xA050, 0xD005, 0x00E0, 0xD005, 0x1208)
	host := &fakeHost{}
	// a clock that never advances keeps every later change inside the first frame interval
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(20), WithClock(&steppingClock{}))

	assert.NoError(t, r.Run(context.Background()))
	// the first change and the final frame
	assert.Equal(t, 2, host.presented)
}

func TestRun_CustomFrameInterval(t *testing.T) {
	m := newMachine(t, 0xA050, 0xD005, 0x00E0, 0xD005, 0x1208)
	host := &fakeHost{}
	clock := &steppingClock{tick: time.Millisecond}
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(20), WithClock(clock), WithFrameInterval(time.Millisecond))

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 4, host.presented)
}

func TestRun_PresentError(t *testing.T) {
	m := newMachine(t, 0xA050, 0xD005, 0x1204)
	errPresent := errors.New("terminal gone")
	host := &fakeHost{presentErr: errPresent}
	r := New(log.NewTestLogger(t), m, host, WithClock(&steppingClock{}))

	err := r.Run(context.Background())
	assert.ErrorContains(t, err, "presenting frame")
	assert.True(t, errors.Is(err, errPresent))
	assert.Equal(t, uint64(2), r.Steps())
}

func TestRun_PollsKeys(t *testing.T) {
	// wait for a key into V3, then loop
	m := newMachine(t, 0xF30A, 0x1202)
	host := &fakeHost{}
	host.keys[0x7] = true
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(3))

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint8(0x7), m.V(3))
	assert.True(t, m.Keypad()[0x7])
}

func TestRun_ForwardsBeeps(t *testing.T) {
	// sound timer = 5, then loop
	m := newMachine(t, 0x6005, 0xF018, 0x1204)
	host := &beepingHost{}
	r := New(log.NewTestLogger(t), m, host, WithMaxSteps(10))

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(5), m.Beeps())
	assert.True(t, host.beeps > 0)
	assert.True(t, host.beeps <= 5)
	assert.Equal(t, uint8(0), m.SoundTimer())
}
