// Package opcode identifies CHIP-8 instruction words and formats them as mnemonics
// for trace and diagnostic logging.
package opcode

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Size is the size of CHIP-8 instructions in bytes.
const Size = 2

// Decode combines the two instruction bytes into a big-endian opcode word.
func Decode(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Lookup returns the instruction definition matching the opcode word.
func Lookup(word uint16) (*chip8.Instruction, bool) {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
			return op.Instruction, true
		}
	}
	return nil, false
}

// Name returns the mnemonic of the opcode word or an empty string if the
// word does not encode a known instruction.
func Name(word uint16) string {
	ins, ok := Lookup(word)
	if !ok {
		return ""
	}
	return ins.Name
}

// Format returns the opcode word as mnemonic with its parameters.
// Words that do not encode a known instruction are returned as data word.
func Format(word uint16) string {
	ins, ok := Lookup(word)
	if !ok {
		return fmt.Sprintf(".word $%04X", word)
	}
	if params := formatParams(ins.Name, word); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

func formatParams(name string, word uint16) string {
	switch name {
	case chip8.ClsName, chip8.RetName:
		return ""
	case chip8.JpName:
		return formatJump(word)
	case chip8.CallName:
		return fmt.Sprintf("$%03X", word&0x0FFF)
	case chip8.SeName, chip8.SneName:
		return formatCompare(word)
	case chip8.LdName:
		return formatLoad(word)
	case chip8.AddName:
		return formatAdd(word)
	case chip8.OrName, chip8.AndName, chip8.XorName, chip8.SubName, chip8.SubnName:
		return fmt.Sprintf("V%X, V%X", registerX(word), registerY(word))
	case chip8.ShrName, chip8.ShlName, chip8.SkpName, chip8.SknpName:
		return fmt.Sprintf("V%X", registerX(word))
	case chip8.RndName:
		return fmt.Sprintf("V%X, $%02X", registerX(word), word&0x00FF)
	case chip8.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", registerX(word), registerY(word), word&0x000F)
	}
	return ""
}

// formatJump formats JP addr and JP V0, addr.
func formatJump(word uint16) string {
	switch word & 0xF000 {
	case 0x1000:
		return fmt.Sprintf("$%03X", word&0x0FFF)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", word&0x0FFF)
	}
	return ""
}

// formatCompare formats SE and SNE against a byte or a register.
func formatCompare(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	}
	return ""
}

// formatLoad formats the LD variants.
func formatLoad(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", word&0x0FFF)
	case 0xF000:
		return formatLoadMisc(word, x)
	}
	return ""
}

func formatLoadMisc(word, x uint16) string {
	switch word & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// formatAdd formats ADD Vx, byte, ADD Vx, Vy and ADD I, Vx.
func formatAdd(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}

func registerX(word uint16) uint16 {
	return (word & 0x0F00) >> 8
}

func registerY(word uint16) uint16 {
	return (word & 0x00F0) >> 4
}
