package cpu

import (
	"fmt"
	"log"
)

//go:generate go tool stringer -linecomment -type=CpuState

// CpuState is the state of the fetch/decode/execute cycle.
type CpuState int

const (
	STATE_FETCH_OPCODE  = CpuState(0) // fetch-opcode
	STATE_FETCH_OPERAND = CpuState(1) // fetch-operand
	STATE_EXECUTE       = CpuState(2) // execute
)

// Status register flags.
const (
	SREG_C = uint8(1 << 0) // Carry
	SREG_Z = uint8(1 << 1) // Zero
)

// Cpu is the simulation context of the machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State    CpuState  // Next transition of the cycle.
	Ip       uint16    // Current instruction pointer.
	Register [16]uint8 // Register bank. R14 addresses data memory.
	Sreg     uint8     // Status register.
	Code     Code      // Instruction being fetched or executed.

	Program Memory // Instruction memory.
	Data    Memory // Data memory.

	Observer Observer // Receives a snapshot after every execution.

	Ticks int // CPU ticks counter.
}

// NewCpu creates a new CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears the registers, status register and data memory.
// - Zeros the tick counter.
// - Restarts the cycle at address 0.
// Instruction memory is left as loaded.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Data[:])
	cpu.Sreg = 0
	cpu.Ip = 0
	cpu.Code = Code{}
	cpu.State = STATE_FETCH_OPCODE
	cpu.Ticks = 0
}

// Load copies an image into instruction memory and resets the CPU.
func (cpu *Cpu) Load(image []uint8) (err error) {
	err = cpu.Program.Load(image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	cpu.Reset()
	return
}

// Zero returns the Zero flag.
func (cpu *Cpu) Zero() bool {
	return (cpu.Sreg & SREG_Z) != 0
}

// Carry returns the Carry flag.
func (cpu *Cpu) Carry() bool {
	return (cpu.Sreg & SREG_C) != 0
}

func (cpu *Cpu) setFlag(flag uint8, set bool) {
	if set {
		cpu.Sreg |= flag
	} else {
		cpu.Sreg &^= flag
	}
}

// Snapshot returns the observable machine state.
func (cpu *Cpu) Snapshot() Snapshot {
	return Snapshot{
		Code:     cpu.Code,
		Ip:       cpu.Ip,
		Zero:     cpu.Zero(),
		Carry:    cpu.Carry(),
		Register: cpu.Register,
	}
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return fmt.Sprintf("state: %v\n", cpu.State) + cpu.Snapshot().String()
}

// Tick performs a single transition of the fetch/decode/execute cycle.
func (cpu *Cpu) Tick() {
	switch cpu.State {
	case STATE_FETCH_OPCODE:
		cpu.Code = DecodeCode(cpu.Program.Read(cpu.Ip))
		cpu.Ip++
		if cpu.Code.Width() == 2 {
			cpu.State = STATE_FETCH_OPERAND
		} else {
			cpu.State = STATE_EXECUTE
		}
	case STATE_FETCH_OPERAND:
		cpu.Code.Operand = cpu.Program.Read(cpu.Ip)
		cpu.Ip++
		cpu.State = STATE_EXECUTE
	default:
		cpu.Execute(cpu.Code)
		cpu.State = STATE_FETCH_OPCODE
		if cpu.Observer != nil {
			cpu.Observer.Observe(cpu.Snapshot())
		}
	}

	cpu.Ticks++
}

// Step ticks the CPU through one complete instruction.
func (cpu *Cpu) Step() {
	for {
		state := cpu.State
		cpu.Tick()
		if state == STATE_EXECUTE {
			return
		}
	}
}

// Execute performs the effect of a decoded instruction. The instruction
// pointer is expected to already address the following instruction.
func (cpu *Cpu) Execute(code Code) {
	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", cpu.Ip, code)
	}

	rd := &cpu.Register[code.Dest&0xf]
	rr := cpu.Register[code.Operand&0xf]

	switch code.Op & 0xf {
	case OP_NOP:
		// pass
	case OP_COM:
		*rd = ^*rd
		cpu.setFlag(SREG_Z, *rd == 0)
	case OP_ST:
		cpu.Data.Write(uint16(cpu.Register[REG_POINTER]), *rd)
	case OP_LD:
		*rd = cpu.Data.Read(uint16(cpu.Register[REG_POINTER]))
	case OP_NEG:
		*rd = -*rd
		cpu.setFlag(SREG_Z, *rd == 0)
	case OP_INC:
		*rd++
		cpu.setFlag(SREG_Z, *rd == 0)
	case OP_LSR:
		*rd >>= 1
	case OP_LSL:
		*rd <<= 1
	case OP_MOV:
		*rd = rr
	case OP_LDI:
		*rd = code.Operand
	case OP_ADD:
		sum := uint16(*rd) + uint16(rr)
		*rd = uint8(sum & 0xff)
		cpu.setFlag(SREG_Z, (sum&0xff) == 0)
		cpu.setFlag(SREG_C, sum > 0xff)
	case OP_ADC:
		// Carry in is not added.
		*rd += rr
	case OP_AND:
		*rd &= rr
	case OP_OR:
		*rd |= rr
	case OP_BREQ:
		if cpu.Zero() {
			cpu.Ip += uint16(int16(code.Displacement()))
		}
	case OP_RJMP:
		cpu.Ip += uint16(int16(code.Displacement()))
	}
}
