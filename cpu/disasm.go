package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Instruction is a decoded instruction at an address.
type Instruction struct {
	Ip   uint16
	Code Code
}

// Next returns the address following the instruction.
func (inst Instruction) Next() uint16 {
	return inst.Ip + uint16(inst.Code.Width())
}

// Target returns the address a branch lands on when taken.
func (inst Instruction) Target() uint16 {
	return inst.Next() + uint16(int16(inst.Code.Displacement()))
}

// String returns the instruction in assembler syntax. Branches carry
// their target address as a comment.
func (inst Instruction) String() string {
	if inst.Code.Op.Operand() == OPERAND_LABEL {
		return fmt.Sprintf("%v ; 0x%04x", inst.Code, inst.Target())
	}

	return inst.Code.String()
}

// Disassemble decodes an instruction memory image from address 0.
// A two byte instruction truncated by the end of the image decodes
// with an operand of 0.
func Disassemble(image []uint8) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for ip := 0; ip < len(image) && ip < MEMORY_SIZE; {
			code := DecodeCode(image[ip])
			if code.Width() == 2 && ip+1 < len(image) {
				code.Operand = image[ip+1]
			}
			if !yield(Instruction{Ip: uint16(ip), Code: code}) {
				return
			}
			ip += code.Width()
		}
	}
}

// DisassembleProgram builds a Program listing from an instruction memory
// image, for images that were not assembled from source. The opcodes
// carry no line numbers.
func DisassembleProgram(image []uint8) (prog *Program) {
	prog = &Program{}
	for inst := range Disassemble(image) {
		prog.Opcodes = append(prog.Opcodes, Opcode{
			Ip:    int(inst.Ip),
			Words: strings.Fields(inst.Code.String()),
			Code:  inst.Code,
		})
	}

	return
}
