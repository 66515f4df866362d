// Package machine implements the CHIP-8 virtual machine.
//
// # Machine Model
//
// A Machine owns all mutable state of the emulated system:
//   - memory of configurable size, the font sprites are copied to the configured
//     font region on construction and programs are loaded at the program start
//   - the program counter and the 16 bit address register I
//   - 16 general purpose 8 bit registers V0-VF, VF doubles as carry, borrow and
//     collision flag and is overwritten by flag producing instructions
//   - a call stack of 16 return addresses
//   - delay and sound timers that decrement at 60 Hz of wall clock time
//   - a monochrome display and a 16 key keypad
//
// # Stepping
//
// A host drives the machine in lockstep: it writes the keypad state, calls Step
// and reads the display between steps. Step executes exactly one instruction,
// updates the timers and paces execution to the configured instruction rate:
//
//	m, err := machine.New(logger, config.Default())
//	if err != nil {
//		return err
//	}
//	if err := m.LoadProgram(program); err != nil {
//		return err
//	}
//	for {
//		m.SetKeys(keys)
//		ok, err := m.Step()
//		if err != nil || !ok {
//			break
//		}
//		render(m.Display())
//	}
//
// Step reports false without an error once the program counter leaves memory.
// Calling a subroutine with a full stack or returning with an empty stack faults
// the machine, the error is returned by every following Step.
//
// # Waiting for Input
//
// FX0A does not block the caller. While no key is pressed the instruction moves
// the program counter back onto itself so that it executes again on the next step.
//
// # Sound
//
// The machine does not produce audio. Every timer tick with a nonzero sound timer
// increments the beep counter returned by Beeps.
package machine
