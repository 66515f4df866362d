package machine

import (
	"time"
)

// maxTimerTicks saturates both 8 bit timers, more ticks after a stall change nothing.
const maxTimerTicks = 255

// Clock is the time source of a machine.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

// SystemClock returns the wall clock that machines use by default.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// updateTimers decrements the delay and sound timers once for every timer period
// that passed since the last tick, independent of the executed instruction count.
func (m *Machine) updateTimers(now time.Time) {
	elapsed := now.Sub(m.lastTimerTick)
	if elapsed < m.timerPeriod {
		return
	}

	ticks := int(elapsed / m.timerPeriod)
	m.lastTimerTick = m.lastTimerTick.Add(time.Duration(ticks) * m.timerPeriod)

	ticks = min(ticks, maxTimerTicks)
	for range ticks {
		m.tickTimers()
	}
}

func (m *Machine) tickTimers() {
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.beeps++
		m.soundTimer--
	}
}

// pace blocks until the configured instruction delay passed since the
// previous instruction.
func (m *Machine) pace() {
	delay := m.cfg.InstructionDelay
	if delay > 0 {
		elapsed := m.clock.Now().Sub(m.lastInstruction)
		if remaining := delay - elapsed; remaining > 0 {
			m.clock.Sleep(remaining)
		}
	}
	m.lastInstruction = m.clock.Now()
}
