package io

import (
	"fmt"
	"io"

	"github.com/ezrec/cpuedu/cpu"
)

// Console prints the machine state after every executed instruction.
type Console struct {
	Output io.Writer
	Quiet  bool // If set, only the final state is printed by Flush.

	last  cpu.Snapshot
	count int
}

var _ cpu.Observer = (*Console)(nil)

// Observe prints the executed instruction and the resulting state.
func (con *Console) Observe(snap cpu.Snapshot) {
	con.last = snap
	con.count++

	if con.Quiet {
		return
	}

	con.print(snap)
}

func (con *Console) print(snap cpu.Snapshot) {
	fmt.Fprintf(con.Output, "opcode: %v\n", snap.Code)
	fmt.Fprint(con.Output, snap.String())
}

// Count returns the number of instructions observed.
func (con *Console) Count() int {
	return con.count
}

// Flush prints the last observed state when the console is quiet.
func (con *Console) Flush() {
	if con.Quiet && con.count > 0 {
		con.print(con.last)
	}
}
