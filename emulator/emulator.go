// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	goio "io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/cpuedu/cpu"
	"github.com/ezrec/cpuedu/internal"
	"github.com/ezrec/cpuedu/io"
)

// QUIT_KEY ends a stepped run when read from the trigger.
const QUIT_KEY = 'q'

var _emulator_defines = map[string]string{
	"PTR":         fmt.Sprintf("R%d", cpu.REG_POINTER),
	"MEMORY_SIZE": fmt.Sprintf("%v", cpu.MEMORY_SIZE),
	"DATA_SIZE":   fmt.Sprintf("%v", 1<<8),
}

// Emulator state. CPU + program listing + step trigger.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Image    []uint8      // Instruction memory image. If nil, the program listing is assembled.

	Trigger *io.Trigger // Paces the run one tick per key. If nil, the run is free.
	Limit   int         // If non-zero, the run ends after this many ticks.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over the equates every program may use.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	registers := make(map[string]string, 16)
	for n := range 16 {
		registers[fmt.Sprintf("REG_%d", n)] = fmt.Sprintf("R%d", n)
	}

	return internal.Concat2(maps.All(_emulator_defines), maps.All(registers))
}

// Reset loads the image into instruction memory, and resets the CPU.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	image := emu.Image
	if image == nil {
		image = emu.Program.Binary()
	}

	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %d bytes, %d labels", len(image), len(emu.Program.Labels))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return int(emu.Cpu.Ip)
}

// LineNo returns the source line of the instruction at the instruction
// pointer, or 0 if it is not part of the program listing.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Ip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick waits for the trigger, then performs a single CPU transition.
// The run is done when the tick limit is reached, the trigger input
// ends, or the quit key is read.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Ip: emu.Cpu.Ip, Err: err}
		}
	}()

	if emu.Limit > 0 && emu.Cpu.Ticks >= emu.Limit {
		done = true
		return
	}

	if emu.Trigger != nil {
		var key byte
		key, err = emu.Trigger.Await()
		if errors.Is(err, goio.EOF) {
			err = nil
			done = true
			return
		}
		if err != nil {
			return
		}
		if key == QUIT_KEY {
			done = true
			return
		}
	}

	emu.Cpu.Tick()

	return
}

// Run ticks until the run is done.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: done after %d ticks", emu.Cpu.Ticks)
	}

	return
}
