package machine

import (
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// execute dispatches the decoded instruction to its handler. The program counter
// already points to the following instruction.
func (m *Machine) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Nibbles[0] {
	case 0x0:
		switch ins.Word {
		case 0x0000:
		case 0x00E0:
			m.clearScreen()
		case 0x00EE:
			return m.returnFromSubroutine()
		default:
			m.unknownOpcode(ins)
		}

	case 0x1:
		m.jump(ins.Address)
	case 0x2:
		return m.callSubroutine(ins.Address)
	case 0x3:
		m.skipIf(m.v[x] == ins.Byte)
	case 0x4:
		m.skipIf(m.v[x] != ins.Byte)

	case 0x5:
		if ins.Height != 0x0 {
			m.unknownOpcode(ins)
			return nil
		}
		m.skipIf(m.v[x] == m.v[y])

	case 0x6:
		m.v[x] = ins.Byte
	case 0x7:
		m.v[x] += ins.Byte
	case 0x8:
		m.executeArithmetic(ins)

	case 0x9:
		if ins.Height != 0x0 {
			m.unknownOpcode(ins)
			return nil
		}
		m.skipIf(m.v[x] != m.v[y])

	case 0xA:
		m.i = ins.Address
	case 0xB:
		m.jumpWithOffset(ins)
	case 0xC:
		m.v[x] = m.nextRandom() & ins.Byte
	case 0xD:
		m.drawSprite(x, y, ins.Height)

	case 0xE:
		switch ins.Byte {
		case 0x9E:
			m.skipIf(m.keypad[m.v[x]&0x0F])
		case 0xA1:
			m.skipIf(!m.keypad[m.v[x]&0x0F])
		default:
			m.unknownOpcode(ins)
		}

	case 0xF:
		m.executeMisc(ins)
	}
	return nil
}

// executeArithmetic handles the 8XYN register to register operations.
func (m *Machine) executeArithmetic(ins Instruction) {
	x, y := ins.X, ins.Y

	switch ins.Height {
	case 0x0:
		m.v[x] = m.v[y]
	case 0x1:
		m.v[x] |= m.v[y]
	case 0x2:
		m.v[x] &= m.v[y]
	case 0x3:
		m.v[x] ^= m.v[y]

	case 0x4:
		sum := uint16(m.v[x]) + uint16(m.v[y])
		m.v[x] = uint8(sum)
		m.setFlag(sum > 0xFF)

	case 0x5:
		noBorrow := m.v[x] >= m.v[y]
		m.v[x] -= m.v[y]
		m.setFlag(noBorrow)

	case 0x6:
		m.shiftRight(x, y)

	case 0x7:
		noBorrow := m.v[y] >= m.v[x]
		m.v[x] = m.v[y] - m.v[x]
		m.setFlag(noBorrow)

	case 0xE:
		m.shiftLeft(x, y)

	default:
		m.unknownOpcode(ins)
	}
}

// executeMisc handles the FXKK timer, keypad and memory instructions.
func (m *Machine) executeMisc(ins Instruction) {
	x := ins.X

	switch ins.Byte {
	case 0x07:
		m.v[x] = m.delayTimer
	case 0x0A:
		m.waitForKey(x)
	case 0x15:
		m.delayTimer = m.v[x]
	case 0x18:
		m.soundTimer = m.v[x]
	case 0x1E:
		m.i += uint16(m.v[x])
	case 0x29:
		m.i = uint16(m.cfg.FontStart + int(m.v[x])*config.GlyphSize)
	case 0x33:
		m.storeBCD(x)
	case 0x55:
		m.storeRegisters(x)
	case 0x65:
		m.loadRegisters(x)
	default:
		m.unknownOpcode(ins)
	}
}

// setFlag stores a boolean result in VF. Flags are written after the result so
// that VF holds the flag when it is also the destination register.
func (m *Machine) setFlag(set bool) {
	if set {
		m.v[FlagRegister] = 1
	} else {
		m.v[FlagRegister] = 0
	}
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcode.Size
	}
}

func (m *Machine) clearScreen() {
	m.display.clear()
}

func (m *Machine) returnFromSubroutine() error {
	if m.sp == 0 {
		return ErrStackUnderflow
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

func (m *Machine) jump(address uint16) {
	m.pc = int(address)
}

func (m *Machine) callSubroutine(address uint16) error {
	if m.sp == StackSize {
		return ErrStackOverflow
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = int(address)
	return nil
}

// jumpWithOffset jumps to NNN+V0, or to XNN+VX with the JumpWithVX quirk.
func (m *Machine) jumpWithOffset(ins Instruction) {
	register := uint8(0)
	if m.cfg.Quirks.JumpWithVX {
		register = ins.X
	}
	m.pc = int(ins.Address) + int(m.v[register])
}

func (m *Machine) shiftRight(x, y uint8) {
	if m.cfg.Quirks.ShiftUsesVY {
		m.v[x] = m.v[y]
	}
	lowBit := m.v[x] & 0x01
	m.v[x] >>= 1
	m.v[FlagRegister] = lowBit
}

func (m *Machine) shiftLeft(x, y uint8) {
	if m.cfg.Quirks.ShiftUsesVY {
		m.v[x] = m.v[y]
	}
	highBit := (m.v[x] >> 7) & 0x01
	m.v[x] <<= 1
	m.v[FlagRegister] = highBit
}

// drawSprite draws the sprite of the given height stored at I to the position
// VX, VY and sets VF on collision.
func (m *Machine) drawSprite(x, y, height uint8) {
	rows := make([]byte, height)
	for row := range rows {
		rows[row] = m.memory[m.address(int(m.i)+row)]
	}

	collision := m.display.drawSprite(int(m.v[x]), int(m.v[y]), rows)
	m.setFlag(collision)
}

// waitForKey stores the lowest pressed key in VX. Without a pressed key the
// program counter is moved back so that the instruction repeats on the next step.
func (m *Machine) waitForKey(x uint8) {
	for key, pressed := range m.keypad {
		if pressed {
			m.v[x] = uint8(key)
			return
		}
	}
	m.pc -= opcode.Size
}

// storeBCD stores the hundreds, tens and ones digits of VX at I, I+1 and I+2.
func (m *Machine) storeBCD(x uint8) {
	value := m.v[x]
	m.memory[m.address(int(m.i))] = value / 100
	m.memory[m.address(int(m.i)+1)] = value / 10 % 10
	m.memory[m.address(int(m.i)+2)] = value % 10
}

// storeRegisters stores V0 to VX inclusive starting at I.
func (m *Machine) storeRegisters(x uint8) {
	for register := range int(x) + 1 {
		m.memory[m.address(int(m.i)+register)] = m.v[register]
	}
	if m.cfg.Quirks.IncrementOnStore {
		m.i += uint16(x) + 1
	}
}

// loadRegisters loads V0 to VX inclusive starting at I.
func (m *Machine) loadRegisters(x uint8) {
	for register := range int(x) + 1 {
		m.v[register] = m.memory[m.address(int(m.i)+register)]
	}
	if m.cfg.Quirks.IncrementOnStore {
		m.i += uint16(x) + 1
	}
}

// address maps an address calculated from I into memory.
func (m *Machine) address(address int) int {
	return address % len(m.memory)
}

func (m *Machine) unknownOpcode(ins Instruction) {
	m.unknownOpcodes++
	m.logger.Warn("Unknown opcode",
		log.Hex("address", m.pc-opcode.Size),
		log.Hex("opcode", ins.Word),
		log.String("instruction", opcode.Format(ins.Word)))
}
