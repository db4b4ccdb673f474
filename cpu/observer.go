package cpu

import (
	"fmt"
	"strings"
)

// Snapshot is the machine state after an instruction executed.
type Snapshot struct {
	Code     Code // Instruction just executed.
	Ip       uint16
	Zero     bool
	Carry    bool
	Register [16]uint8
}

// String formats the snapshot as the IP and status line, followed by the
// register file.
func (snap Snapshot) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "IP: %04x    SREG: Z=%d C=%d\n", snap.Ip, bit(snap.Zero), bit(snap.Carry))
	for n, reg := range snap.Register {
		fmt.Fprintf(&sb, "R%x=%x ", n, reg)
	}
	sb.WriteString("\n-------\n")

	return sb.String()
}

func bit(flag bool) int {
	if flag {
		return 1
	}
	return 0
}

// Observer receives a snapshot after every executed instruction.
type Observer interface {
	Observe(snap Snapshot)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(snap Snapshot)

// Observe calls fn(snap).
func (fn ObserverFunc) Observe(snap Snapshot) {
	fn(snap)
}
