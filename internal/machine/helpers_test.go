package machine

import (
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// unpacedConfig returns the default configuration without instruction pacing.
func unpacedConfig() config.Config {
	cfg := config.Default()
	cfg.InstructionDelay = 0
	return cfg
}

// newTestMachine returns an unpaced machine on a fake clock with the opcode
// words loaded as program.
func newTestMachine(t *testing.T, words ...uint16) (*Machine, *fakeClock) {
	t.Helper()
	return newTestMachineWithConfig(t, unpacedConfig(), words...)
}

func newTestMachineWithConfig(t *testing.T, cfg config.Config, words ...uint16) (*Machine, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	m, err := New(log.NewTestLogger(t), cfg, WithClock(clock))
	assert.NoError(t, err)
	assert.NoError(t, m.LoadProgram(program(words...)))
	return m, clock
}

// program encodes opcode words as big-endian program bytes.
func program(words ...uint16) []byte {
	data := make([]byte, 0, len(words)*2)
	for _, word := range words {
		data = append(data, byte(word>>8), byte(word))
	}
	return data
}

// step executes the given number of instructions and expects all of them to succeed.
func step(t *testing.T, m *Machine, count int) {
	t.Helper()
	for range count {
		ok, err := m.Step()
		assert.NoError(t, err)
		assert.True(t, ok)
	}
}
