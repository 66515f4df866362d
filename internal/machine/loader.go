package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// LoadProgram copies the program into memory starting at the configured program start.
// Memory is not modified if the program does not fit.
func (m *Machine) LoadProgram(program []byte) error {
	available := len(m.memory) - m.cfg.ProgramStart
	if len(program) > available {
		return fmt.Errorf("%w: %d bytes, %d bytes available", ErrProgramTooLarge, len(program), available)
	}

	copy(m.memory[m.cfg.ProgramStart:], program)

	m.logger.Debug("Program loaded",
		log.Int("size", len(program)),
		log.Hex("start", m.cfg.ProgramStart))
	return nil
}

// LoadProgramFromReader reads the program from the reader and loads it.
// Read failures are returned as *IOError.
func (m *Machine) LoadProgramFromReader(r io.Reader) error {
	// one byte more than fits is enough to detect oversized programs
	limit := int64(len(m.memory)-m.cfg.ProgramStart) + 1

	program, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return &IOError{Op: "reading program", Err: err}
	}
	return m.LoadProgram(program)
}

// LoadProgramFromPath reads the program file and loads it.
// File system failures are returned as *IOError.
func (m *Machine) LoadProgramFromPath(path string) error {
	program, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "reading program file", Path: path, Err: err}
	}
	if err := m.LoadProgram(program); err != nil {
		return fmt.Errorf("loading '%s': %w", path, err)
	}
	return nil
}
