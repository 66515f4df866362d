// Package config contains the machine configuration and application setup helpers.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Default machine parameters.
const (
	DefaultInstructionsPerSecond = 700
	DefaultMemorySize            = 4096
	DefaultProgramStart          = 0x200
	DefaultDisplayWidth          = 64
	DefaultDisplayHeight         = 32
	DefaultFontStart             = 0x50
	DefaultSeed                  = 0x13275389
	DefaultTimerFrequency        = 60

	HighResolutionWidth  = 128
	HighResolutionHeight = 64

	// MaxMemorySize is the largest memory that 16 bit addresses can reach.
	MaxMemorySize = 0x10000
)

// ErrInvalid is wrapped by all configuration validation errors.
var ErrInvalid = errors.New("invalid machine configuration")

// Quirks selects between behaviors that differ among historical CHIP-8 interpreters.
type Quirks struct {
	// IncrementOnStore makes FX55 and FX65 advance I by X+1 after the transfer.
	IncrementOnStore bool
	// ShiftUsesVY makes 8XY6 and 8XYE shift VY into VX instead of shifting VX in place.
	ShiftUsesVY bool
	// JumpWithVX makes BXNN jump to XNN+VX instead of NNN+V0.
	JumpWithVX bool
}

// Config is the immutable set of machine parameters. Copy and modify a preset
// to derive a new configuration.
type Config struct {
	InstructionDelay time.Duration // minimum time between two instructions, 0 disables pacing
	TimerFrequency   int           // delay and sound timer decrements per second

	MemorySize   int
	ProgramStart int

	DisplayWidth  int
	DisplayHeight int

	Font      []byte
	FontStart int

	Quirks Quirks
	Seed   uint32 // initial xorshift state, must not be 0
}

// Default returns the configuration of a standard 64x32 CHIP-8.
func Default() Config {
	font := make([]byte, len(StandardFont))
	copy(font, StandardFont[:])

	return Config{
		InstructionDelay: InstructionDelayForRate(DefaultInstructionsPerSecond),
		TimerFrequency:   DefaultTimerFrequency,
		MemorySize:       DefaultMemorySize,
		ProgramStart:     DefaultProgramStart,
		DisplayWidth:     DefaultDisplayWidth,
		DisplayHeight:    DefaultDisplayHeight,
		Font:             font,
		FontStart:        DefaultFontStart,
		Seed:             DefaultSeed,
	}
}

// HighResolution returns the default configuration with a 128x64 display.
func HighResolution() Config {
	cfg := Default()
	cfg.DisplayWidth = HighResolutionWidth
	cfg.DisplayHeight = HighResolutionHeight
	return cfg
}

// InstructionDelayForRate converts an instruction rate in Hz to the delay between
// two instructions. A rate of 0 or less disables pacing.
func InstructionDelayForRate(hz int) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Second / time.Duration(hz)
}

// FontEnd returns the address after the last font byte.
func (c Config) FontEnd() int {
	return c.FontStart + len(c.Font)
}

// Validate checks that the configuration describes a constructible machine.
func (c Config) Validate() error {
	switch {
	case c.MemorySize < DefaultProgramStart || c.MemorySize > MaxMemorySize:
		return fmt.Errorf("%w: memory size %d outside of range [%d, %d]",
			ErrInvalid, c.MemorySize, DefaultProgramStart, MaxMemorySize)

	case c.ProgramStart < 0 || c.ProgramStart >= c.MemorySize:
		return fmt.Errorf("%w: program start 0x%X outside of memory size 0x%X",
			ErrInvalid, c.ProgramStart, c.MemorySize)

	case len(c.Font) != GlyphCount*GlyphSize:
		return fmt.Errorf("%w: font has %d bytes, expected %d",
			ErrInvalid, len(c.Font), GlyphCount*GlyphSize)

	case c.FontStart < 0 || c.FontEnd() > c.MemorySize:
		return fmt.Errorf("%w: font region 0x%X-0x%X outside of memory size 0x%X",
			ErrInvalid, c.FontStart, c.FontEnd()-1, c.MemorySize)

	case c.FontStart < c.ProgramStart && c.FontEnd() > c.ProgramStart,
		c.FontStart >= c.ProgramStart:
		return fmt.Errorf("%w: font region 0x%X-0x%X overlaps program area starting at 0x%X",
			ErrInvalid, c.FontStart, c.FontEnd()-1, c.ProgramStart)

	case c.DisplayWidth <= 0 || c.DisplayHeight <= 0:
		return fmt.Errorf("%w: display size %dx%d", ErrInvalid, c.DisplayWidth, c.DisplayHeight)

	case c.InstructionDelay < 0:
		return fmt.Errorf("%w: negative instruction delay %s", ErrInvalid, c.InstructionDelay)

	case c.TimerFrequency <= 0:
		return fmt.Errorf("%w: timer frequency %d", ErrInvalid, c.TimerFrequency)

	case c.Seed == 0:
		return fmt.Errorf("%w: random seed must not be 0", ErrInvalid)
	}
	return nil
}
