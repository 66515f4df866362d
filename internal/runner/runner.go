// Package runner drives a machine from a host loop.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// DefaultFrameInterval limits presenting frames to 60 per second.
const DefaultFrameInterval = time.Second / 60

// Host provides the keypad state and presents the display.
type Host interface {
	// Keys returns the pressed state of all 16 keys.
	Keys() [machine.KeyCount]bool
	// Present shows the display. It is only called when the display changed
	// and once more when the run ends.
	Present(display *machine.Display) error
}

// Beeper is implemented by hosts that signal a running sound timer.
type Beeper interface {
	Beep()
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxSteps stops the run after the given number of executed instructions.
// Zero runs until the machine halts.
func WithMaxSteps(steps uint64) Option {
	return func(r *Runner) {
		r.maxSteps = steps
	}
}

// WithClock sets the time source used to limit the frame rate.
func WithClock(clock machine.Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithFrameInterval sets the minimum time between two presented frames.
func WithFrameInterval(interval time.Duration) Option {
	return func(r *Runner) {
		r.frameInterval = interval
	}
}

// Runner connects a host to a machine in lockstep on a single goroutine.
type Runner struct {
	logger  *log.Logger
	machine *machine.Machine
	host    Host
	clock   machine.Clock

	maxSteps      uint64
	frameInterval time.Duration

	steps          uint64
	halted         bool
	lastGeneration uint64
	lastFrame      time.Time
	framePresented bool
	lastBeeps      uint64
}

// New returns a runner for the machine and host.
func New(logger *log.Logger, m *machine.Machine, host Host, options ...Option) *Runner {
	r := &Runner{
		logger:        logger,
		machine:       m,
		host:          host,
		clock:         machine.SystemClock(),
		frameInterval: DefaultFrameInterval,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Run steps the machine until it halts, faults, the step limit is reached or the
// context is cancelled. The context error is returned unchanged. The final
// display is always presented.
func (r *Runner) Run(ctx context.Context) error {
	r.lastGeneration = r.machine.Display().Generation()
	r.lastBeeps = r.machine.Beeps()

	for r.maxSteps == 0 || r.steps < r.maxSteps {
		if err := ctx.Err(); err != nil {
			return r.finish(err)
		}

		r.machine.SetKeys(r.host.Keys())

		ok, err := r.machine.Step()
		if err != nil {
			r.logger.Debug("Machine fault",
				log.Hex("address", r.machine.PC()),
				log.Int("steps", int(r.steps)))
			return r.finish(err)
		}
		if !ok {
			r.halted = true
			r.logger.Debug("Machine halted",
				log.Hex("address", r.machine.PC()),
				log.Int("steps", int(r.steps)))
			break
		}
		r.steps++

		r.forwardBeeps()
		if err := r.presentFrame(false); err != nil {
			return err
		}
	}

	return r.finish(nil)
}

// Steps returns the number of instructions executed by Run.
func (r *Runner) Steps() uint64 {
	return r.steps
}

// Halted reports whether the run ended because the program counter left memory.
func (r *Runner) Halted() bool {
	return r.halted
}

// finish presents the last frame and returns the error that ended the run.
func (r *Runner) finish(runErr error) error {
	if err := r.presentFrame(true); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func (r *Runner) presentFrame(force bool) error {
	display := r.machine.Display()
	generation := display.Generation()
	if !force && generation == r.lastGeneration {
		return nil
	}

	now := r.clock.Now()
	if !force && r.framePresented && now.Sub(r.lastFrame) < r.frameInterval {
		return nil
	}

	if err := r.host.Present(display); err != nil {
		return fmt.Errorf("presenting frame: %w", err)
	}
	r.lastGeneration = generation
	r.lastFrame = now
	r.framePresented = true
	return nil
}

func (r *Runner) forwardBeeps() {
	beeps := r.machine.Beeps()
	if beeps == r.lastBeeps {
		return
	}
	r.lastBeeps = beeps

	if beeper, ok := r.host.(Beeper); ok {
		beeper.Beep()
	}
}
