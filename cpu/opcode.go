package cpu

import (
	"fmt"
)

// CodeOp is the 4-bit operation field of an instruction.
type CodeOp uint8

const (
	OP_NOP  = CodeOp(0x0) // NOP
	OP_COM  = CodeOp(0x1) // COM
	OP_ST   = CodeOp(0x2) // ST
	OP_LD   = CodeOp(0x3) // LD
	OP_NEG  = CodeOp(0x4) // NEG
	OP_INC  = CodeOp(0x5) // INC
	OP_LSR  = CodeOp(0x6) // LSR
	OP_LSL  = CodeOp(0x7) // LSL
	OP_MOV  = CodeOp(0x8) // MOV
	OP_LDI  = CodeOp(0x9) // LDI
	OP_ADD  = CodeOp(0xa) // ADD
	OP_ADC  = CodeOp(0xb) // ADC
	OP_AND  = CodeOp(0xc) // AND
	OP_OR   = CodeOp(0xd) // OR
	OP_BREQ = CodeOp(0xe) // BREQ
	OP_RJMP = CodeOp(0xf) // RJMP
)

//go:generate go tool stringer -linecomment -type=CodeOperand

// CodeOperand is the kind of the second byte of a two byte instruction.
type CodeOperand int

const (
	OPERAND_NONE      = CodeOperand(0) // none
	OPERAND_REGISTER  = CodeOperand(1) // register
	OPERAND_IMMEDIATE = CodeOperand(2) // immediate
	OPERAND_LABEL     = CodeOperand(3) // label
)

// REG_POINTER is the register used as the data memory address by ST and LD.
const REG_POINTER = 14

// Encoding describes how one mnemonic is written and encoded.
type Encoding struct {
	Mnemonic string
	Op       CodeOp
	Dest     bool        // Takes a destination register.
	Operand  CodeOperand // Kind of the second byte, if any.
	Width    int         // Instruction width in bytes.
}

// Encodings is the instruction set, indexed by CodeOp.
var Encodings = [16]Encoding{
	{"NOP", OP_NOP, false, OPERAND_NONE, 1},
	{"COM", OP_COM, true, OPERAND_NONE, 1},
	{"ST", OP_ST, true, OPERAND_NONE, 1},
	{"LD", OP_LD, true, OPERAND_NONE, 1},
	{"NEG", OP_NEG, true, OPERAND_NONE, 1},
	{"INC", OP_INC, true, OPERAND_NONE, 1},
	{"LSR", OP_LSR, true, OPERAND_NONE, 1},
	{"LSL", OP_LSL, true, OPERAND_NONE, 1},
	{"MOV", OP_MOV, true, OPERAND_REGISTER, 2},
	{"LDI", OP_LDI, true, OPERAND_IMMEDIATE, 2},
	{"ADD", OP_ADD, true, OPERAND_REGISTER, 2},
	{"ADC", OP_ADC, true, OPERAND_REGISTER, 2},
	{"AND", OP_AND, true, OPERAND_REGISTER, 2},
	{"OR", OP_OR, true, OPERAND_REGISTER, 2},
	{"BREQ", OP_BREQ, false, OPERAND_LABEL, 2},
	{"RJMP", OP_RJMP, false, OPERAND_LABEL, 2},
}

// mnemonicMap maps mnemonics to their encodings.
var mnemonicMap = func() map[string]*Encoding {
	mnemonics := make(map[string]*Encoding, len(Encodings))
	for n := range Encodings {
		mnemonics[Encodings[n].Mnemonic] = &Encodings[n]
	}
	return mnemonics
}()

// LookupMnemonic finds the encoding of a mnemonic. The match is case sensitive.
func LookupMnemonic(mnemonic string) (enc Encoding, ok bool) {
	ptr, ok := mnemonicMap[mnemonic]
	if ok {
		enc = *ptr
	}
	return
}

// Encoding returns the table entry for the operation.
func (op CodeOp) Encoding() Encoding {
	return Encodings[op&0xf]
}

// String returns the mnemonic.
func (op CodeOp) String() string {
	return op.Encoding().Mnemonic
}

// Width returns the instruction width in bytes.
func (op CodeOp) Width() int {
	return op.Encoding().Width
}

// Operand returns the kind of the second instruction byte.
func (op CodeOp) Operand() CodeOperand {
	return op.Encoding().Operand
}

// HasDest returns true if the instruction is written with a destination register.
func (op CodeOp) HasDest() bool {
	return op.Encoding().Dest
}

// Code is a single encoded instruction.
type Code struct {
	Op      CodeOp
	Dest    uint8 // Destination register, 0..15.
	Operand uint8 // Second byte, for two byte instructions.
}

// MakeCode creates a one byte instruction.
func MakeCode(op CodeOp, dest uint8) Code {
	return Code{Op: op & 0xf, Dest: dest & 0xf}
}

// MakeCodeOperand creates a two byte instruction.
func MakeCodeOperand(op CodeOp, dest uint8, operand uint8) Code {
	return Code{Op: op & 0xf, Dest: dest & 0xf, Operand: operand}
}

// DecodeCode splits the first instruction byte into its operation and
// destination register.
func DecodeCode(word uint8) Code {
	return Code{Op: CodeOp(word >> 4), Dest: word & 0xf}
}

// Word returns the first instruction byte.
func (code Code) Word() uint8 {
	return (uint8(code.Op&0xf) << 4) | (code.Dest & 0xf)
}

// Width returns the encoded width in bytes.
func (code Code) Width() int {
	return code.Op.Width()
}

// Bytes returns the encoded instruction.
func (code Code) Bytes() []uint8 {
	if code.Width() == 1 {
		return []uint8{code.Word()}
	}
	return []uint8{code.Word(), code.Operand}
}

// Displacement returns the operand as a signed branch displacement.
func (code Code) Displacement() int8 {
	return int8(code.Operand)
}

// String returns the assembly language representation of this instruction.
// Branches are written with their numeric displacement.
func (code Code) String() (out string) {
	enc := code.Op.Encoding()

	out = enc.Mnemonic
	if enc.Dest {
		out += fmt.Sprintf(" R%d", code.Dest)
	}

	switch enc.Operand {
	case OPERAND_REGISTER:
		out += fmt.Sprintf(",R%d", code.Operand&0xf)
	case OPERAND_IMMEDIATE:
		out += fmt.Sprintf(",$%d", code.Operand)
	case OPERAND_LABEL:
		out += fmt.Sprintf(" %+d", code.Displacement())
	}

	return
}
