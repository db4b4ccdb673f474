// Package cpu implements the microprocessor and assembler for the
// educational 8-bit computer.
//
// The CPU consists of a 16-bit instruction pointer (IP), sixteen 8-bit
// registers (R0-R15, with R14 addressing data memory), a status register
// holding the Zero and Carry flags, and separate 64KB instruction and data
// memories. It runs a three state fetch-opcode, fetch-operand, execute
// cycle, one transition per Tick.
//
// Instructions are one or two bytes. The high nibble of the first byte is
// the operation, the low nibble the destination register. The width is a
// property of the operation in the Encodings table.
//
// The assembler is a two pass translator from mnemonics to that encoding,
// supporting labels, equates, and compile-time expression evaluation.
package cpu
