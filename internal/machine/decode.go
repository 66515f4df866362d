package machine

import (
	"github.com/retroenv/retrochip8/internal/opcode"
)

// Instruction is a decoded opcode word. All fields are derived from the word
// regardless of which of them the instruction uses.
type Instruction struct {
	Word    uint16
	Nibbles [4]uint8
	Address uint16 // NNN, the lower 12 bits
	Byte    uint8  // KK, the lower 8 bits
	X       uint8  // second nibble, register index
	Y       uint8  // third nibble, register index
	Height  uint8  // fourth nibble, sprite rows
}

// Decode splits the opcode word into its nibbles and derived fields.
func Decode(word uint16) Instruction {
	nibbles := [4]uint8{
		uint8(word >> 12),
		uint8(word>>8) & 0x0F,
		uint8(word>>4) & 0x0F,
		uint8(word) & 0x0F,
	}

	return Instruction{
		Word:    word,
		Nibbles: nibbles,
		Address: uint16(nibbles[1])<<8 | uint16(nibbles[2])<<4 | uint16(nibbles[3]),
		Byte:    nibbles[2]<<4 | nibbles[3],
		X:       nibbles[1],
		Y:       nibbles[2],
		Height:  nibbles[3],
	}
}

// fetch reads the instruction at the program counter and advances the program
// counter past it. It returns false if the instruction is not fully inside memory.
func (m *Machine) fetch() (Instruction, bool) {
	pc := m.pc
	if pc+1 >= len(m.memory) {
		return Instruction{}, false
	}

	word := opcode.Decode(m.memory[pc], m.memory[pc+1])
	m.pc += opcode.Size
	return Decode(word), true
}
