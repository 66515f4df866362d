// Package options contains the program options.
package options

import (
	"time"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string // ROM file to run
	Output string // snapshot file written after the run, .txt or .bmp
}

// Flags contains behavior options.
type Flags struct {
	Debug    bool
	Headless bool // run without terminal host
	Quiet    bool
	Trace    bool // log every executed instruction
}

// Machine contains options that are mapped onto the machine configuration.
type Machine struct {
	HighResolution        bool
	InstructionsPerSecond int // 0 disables pacing
	Seed                  uint32
	Steps                 uint64 // stop after this many instructions, 0 runs until halt

	IncrementOnStore bool
	JumpWithVX       bool
	ShiftUsesVY      bool
}

// Display contains options for presenting the display.
type Display struct {
	Hold  time.Duration // key hold window of the terminal host
	Scale int           // pixel scale of image snapshots
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Machine
	Display
}
