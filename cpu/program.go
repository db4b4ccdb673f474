package cpu

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ezrec/cpuedu/internal"
)

// Opcode represents one assembled instruction with its source location.
type Opcode struct {
	LineNo    int      // Source line of the mnemonic.
	Ip        int      // Address of the first instruction byte.
	Words     []string // Source tokens of the instruction.
	Code      Code     // Encoded instruction.
	LinkLabel string   // Branch target, for BREQ and RJMP.
}

// Program is the output of the assembler: a listing that renders to
// an instruction memory image.
type Program struct {
	Opcodes []Opcode
	Labels  []Label
}

// Debug locates the opcode that contains an instruction memory address.
type Debug struct {
	*Opcode
	Index int // Byte offset within the instruction.
}

// Debug finds the opcode covering ip. Debug.Opcode is nil if none does.
func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+op.Code.Width() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Size returns the number of bytes in the image.
func (prog *Program) Size() int {
	if len(prog.Opcodes) == 0 {
		return 0
	}

	last := prog.Opcodes[len(prog.Opcodes)-1]
	return min(last.Ip+last.Code.Width(), MEMORY_SIZE)
}

// Codes iterates over every image byte and its address. Bytes past the
// end of instruction memory are dropped.
func (prog *Program) Codes() iter.Seq2[uint16, uint8] {
	seqs := make([]iter.Seq2[uint16, uint8], 0, len(prog.Opcodes))
	for _, op := range prog.Opcodes {
		bytes := op.Code.Bytes()
		bytes = bytes[:min(len(bytes), MEMORY_SIZE-op.Ip)]
		seqs = append(seqs, internal.Addressed(uint16(op.Ip), bytes))
	}

	return internal.Concat2(seqs...)
}

// Binary returns the instruction memory image.
func (prog *Program) Binary() (bins []uint8) {
	bins = make([]uint8, prog.Size())
	for ip, code := range prog.Codes() {
		bins[ip] = code
	}

	return
}

// Label finds the address of a label.
func (prog *Program) Label(name string) (addr uint16, ok bool) {
	index := slices.IndexFunc(prog.Labels, func(label Label) bool { return label.Name == name })
	if index < 0 {
		return
	}

	return prog.Labels[index].Addr, true
}

// Listing writes a human readable listing of the program.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		for _, label := range prog.Labels {
			if int(label.Addr) == op.Ip {
				_, err = fmt.Fprintf(w, "%v:\n", label.Name)
				if err != nil {
					return
				}
			}
		}

		var hex []string
		for _, b := range op.Code.Bytes() {
			hex = append(hex, fmt.Sprintf("%02X", b))
		}

		_, err = fmt.Fprintf(w, "%04X  %-5s  %4d  %v\n", op.Ip, strings.Join(hex, " "), op.LineNo, strings.Join(op.Words, " "))
		if err != nil {
			return
		}
	}

	return
}
