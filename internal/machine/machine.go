package machine

import (
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// FlagRegister is the index of VF, the carry, borrow and collision flag.
	FlagRegister = 0xF
	// StackSize is the maximum call depth.
	StackSize = 16
	// KeyCount is the number of keys of the hexadecimal keypad.
	KeyCount = 16
)

// Option configures optional machine collaborators.
type Option func(*Machine)

// WithClock sets the clock used for timers and instruction pacing.
func WithClock(clock Clock) Option {
	return func(m *Machine) {
		m.clock = clock
	}
}

// WithTrace enables debug logging of every executed instruction.
func WithTrace(trace bool) Option {
	return func(m *Machine) {
		m.trace = trace
	}
}

// Machine is the state of a CHIP-8 virtual machine.
// It is not safe for concurrent use, hosts have to access it between steps.
type Machine struct {
	logger *log.Logger
	cfg    config.Config
	clock  Clock
	trace  bool

	memory []byte
	pc     int // may point past the end of a 64 KiB memory, the halt position
	i      uint16
	v      [RegisterCount]uint8
	stack  [StackSize]int
	sp     int

	delayTimer uint8
	soundTimer uint8

	display *Display
	keypad  [KeyCount]bool
	random  uint32

	timerPeriod     time.Duration
	lastTimerTick   time.Time
	lastInstruction time.Time

	fault          error
	steps          uint64
	beeps          uint64
	unknownOpcodes uint64
}

// New returns a machine built from the configuration. The font is copied to its
// memory region, the display is unlit and the program counter points to the
// program start. An invalid configuration returns an error wrapping config.ErrInvalid.
func New(logger *log.Logger, cfg config.Config, options ...Option) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		logger:      logger,
		cfg:         cfg,
		clock:       systemClock{},
		memory:      make([]byte, cfg.MemorySize),
		pc:          cfg.ProgramStart,
		display:     newDisplay(cfg.DisplayWidth, cfg.DisplayHeight),
		random:      cfg.Seed,
		timerPeriod: time.Second / time.Duration(cfg.TimerFrequency),
	}
	for _, option := range options {
		option(m)
	}

	copy(m.memory[cfg.FontStart:], cfg.Font)

	now := m.clock.Now()
	m.lastTimerTick = now
	m.lastInstruction = now
	return m, nil
}

// MustNew is like New but panics if the configuration is invalid.
func MustNew(logger *log.Logger, cfg config.Config, options ...Option) *Machine {
	m, err := New(logger, cfg, options...)
	if err != nil {
		panic(fmt.Sprintf("creating machine: %s", err))
	}
	return m
}

// Step executes a single instruction and updates the timers.
// It returns false once the program counter points outside of memory, and
// false with the fault error after a stack overflow or underflow.
func (m *Machine) Step() (bool, error) {
	if m.fault != nil {
		return false, m.fault
	}

	address := m.pc
	ins, ok := m.fetch()
	if !ok {
		return false, nil
	}

	if m.trace {
		m.logger.Debug("Executing instruction",
			log.Hex("address", address),
			log.Hex("opcode", ins.Word),
			log.String("instruction", opcode.Format(ins.Word)))
	}

	if err := m.execute(ins); err != nil {
		m.pc = address
		m.fault = fmt.Errorf("%w at address 0x%03X", err, address)
		return false, m.fault
	}
	m.steps++

	m.updateTimers(m.clock.Now())
	m.pace()
	return true, nil
}

// Config returns the configuration the machine was built from.
func (m *Machine) Config() config.Config {
	return m.cfg
}

// Display returns the display of the machine. The display is only consistent
// between steps.
func (m *Machine) Display() *Display {
	return m.display
}

// SetKey sets the pressed state of a key 0x0-0xF.
func (m *Machine) SetKey(key uint8, pressed bool) {
	m.keypad[key&0x0F] = pressed
}

// SetKeys replaces the pressed state of all keys.
func (m *Machine) SetKeys(keys [KeyCount]bool) {
	m.keypad = keys
}

// Keypad returns the pressed state of all keys.
func (m *Machine) Keypad() [KeyCount]bool {
	return m.keypad
}

// PC returns the program counter. After running past the end of a 64 KiB
// memory it returns the 16 bit wrapped address while Step keeps reporting the halt.
func (m *Machine) PC() uint16 {
	return uint16(m.pc)
}

// I returns the address register.
func (m *Machine) I() uint16 {
	return m.i
}

// V returns the value of the general purpose register with the given index.
func (m *Machine) V(index int) uint8 {
	return m.v[index&0x0F]
}

// Registers returns a copy of the general purpose registers.
func (m *Machine) Registers() [RegisterCount]uint8 {
	return m.v
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delayTimer
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() uint8 {
	return m.soundTimer
}

// SoundActive returns whether the sound timer is running.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// Beeps returns the number of timer ticks that happened with a running sound timer.
func (m *Machine) Beeps() uint64 {
	return m.beeps
}

// StackDepth returns the number of return addresses on the call stack.
func (m *Machine) StackDepth() int {
	return m.sp
}

// Memory returns a copy of the memory.
func (m *Machine) Memory() []byte {
	memory := make([]byte, len(m.memory))
	copy(memory, m.memory)
	return memory
}

// Steps returns the number of executed instructions.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// UnknownOpcodes returns the number of executed words that did not encode an instruction.
func (m *Machine) UnknownOpcodes() uint64 {
	return m.unknownOpcodes
}

// Fault returns the error that stopped the machine, if any.
func (m *Machine) Fault() error {
	return m.fault
}
