// machine.go - Machine assembly and the cooperative device-tick loop
//
// Grounded directly on original_source/src/machine.rs: its
// ExecutionState{Paused,BreakpointHit,Running,Halted} and
// ExecutionOperation{None,Pause,Step,StepOver,Run,Reset} enums become
// ExecState/ExecOp here; Machine::run(cycle_target, exec_control) is
// the authoritative algorithm for RunFor below (computing a cycle
// target adjusted for the current op/state, stepping the CPU in a
// loop while accumulating cycles, then calling run_devices once per
// CPU step); Machine::run_devices's "convert cycles to microseconds,
// feed one keyboard byte, tick the bus's devices" shape is generalized
// from its audio-sampler-centric version into the PIT/DMA/keyboard/
// video clock-ratio tick order spec §4.1 fixes explicitly (devices
// tick in a fixed order every CPU instruction boundary; no locking
// inside the core, matching the single-threaded cooperative model).
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import "github.com/pkg/errors"

// ExecOp is the operation the host requests of the machine loop on its
// next opportunity, grounded on the original Rust source's
// ExecutionOperation.
type ExecOp int

const (
	OpNone ExecOp = iota
	OpPause
	OpStep
	OpStepOver
	OpRun
	OpReset
)

// stepOverTimeout bounds how many CPU cycles a StepOver is allowed to
// run before giving up and falling back to a single Step, matching the
// original Rust source's STEP_OVER_TIMEOUT constant.
const stepOverTimeout = 320000

// ExecutionControl is the host's handle on the machine loop's pending
// operation, mirroring the original Rust source's struct of the same
// name (set_op/get_op/peek_op).
type ExecutionControl struct {
	op    ExecOp
	state ExecState
}

func NewExecutionControl() *ExecutionControl {
	return &ExecutionControl{state: ExecPaused}
}

func (ec *ExecutionControl) SetOp(op ExecOp)  { ec.op = op }
func (ec *ExecutionControl) GetOp() ExecOp {
	op := ec.op
	ec.op = OpNone
	return op
}
func (ec *ExecutionControl) PeekOp() ExecOp { return ec.op }
func (ec *ExecutionControl) State() ExecState { return ec.state }

// Machine owns the CPU, bus, and every attached device, plus the
// execution-control state the host drives it with.
type Machine struct {
	cfg Config

	cpu *CPU
	bus *Bus

	pic *PIC
	pit *PIT
	dma *DMA
	kbd *Keyboard

	video VideoCard

	ec *ExecutionControl

	trace *TraceSink

	waitStatesEnabled bool

	cycles uint64

	lastErr error

	// stepOverDepth tracks CALL nesting for StepOver: it increments on
	// CALL and decrements on RET, so StepOver can run until the depth
	// returns to zero (or the timeout fires), per the original Rust
	// source's call-target tracking.
	stepOverDepth int

	kbdMsAccum int
}

// NewMachine assembles an IBM 5150/5160-class PC/XT: one primary PIC,
// one PIT with channel 1 wired to DMA channel 0 refresh, one Model-F
// keyboard on IRQ1, and whichever video card the configuration names.
func NewMachine(cfg Config, video VideoCard) *Machine {
	bus := NewBus()
	pic := NewPIC()
	dma := NewDMA(bus)
	pit := NewPIT(pic, dma)
	pit.SetPhase(cfg.Machine.PITPhase)
	kbd := NewKeyboard(pic)

	bus.MapPort(0x20, 0x21, pic)
	bus.MapPort(0x40, 0x43, pit)
	bus.MapPort(0x00, 0x0F, dma)
	bus.MapPort(0x81, 0x87, dma)
	bus.MapPort(0x60, 0x64, kbd)

	switch video.Name() {
	case "MDA":
		bus.MapPort(0x3B0, 0x3BB, video)
		bus.MapMMIO(mdaVRAMBase, mdaVRAMBase+mdaVRAMSize-1, video)
	case "CGA":
		bus.MapPort(0x3D0, 0x3DF, video)
		bus.MapMMIO(cgaVRAMBase, cgaVRAMBase+cgaVRAMSize-1, video)
	case "EGA":
		bus.MapPort(0x3C0, 0x3DF, video)
		bus.MapMMIO(egaVRAMBase, egaVRAMBase+egaPlaneSize-1, video)
	}

	m := &Machine{
		cfg:               cfg,
		cpu:               NewCPU(),
		bus:               bus,
		pic:               pic,
		pit:               pit,
		dma:               dma,
		kbd:               kbd,
		video:             video,
		ec:                NewExecutionControl(),
		waitStatesEnabled: cfg.CPU.WaitStates,
	}
	return m
}

func (m *Machine) Bus() *Bus { return m.bus }
func (m *Machine) CPU() *CPU { return m.cpu }
func (m *Machine) PIC() *PIC { return m.pic }
func (m *Machine) PIT() *PIT { return m.pit }
func (m *Machine) Keyboard() *Keyboard { return m.kbd }
func (m *Machine) Video() VideoCard { return m.video }

// PowerOn resets every device to its power-on state in a fixed order
// (CPU last, since its reset vector fetch needs ROM already mapped).
func (m *Machine) PowerOn() {
	m.bus.Reset()
	m.pic.Reset()
	m.pit.Reset()
	m.dma.Reset()
	m.kbd.Reset()
	m.video.Reset()
	m.cpu.Reset()
	m.ec.state = ExecRunning
}

// SetTrace attaches a trace sink; pass nil to disable tracing.
func (m *Machine) SetTrace(ts *TraceSink) { m.trace = ts }

// RunFor executes instructions until at least cycleTarget CPU cycles
// have elapsed or the execution-control operation interrupts it,
// mirroring Machine::run's cycle_target_adj/loop/run_devices shape
// from the original Rust source.
func (m *Machine) RunFor(cycleTarget uint64) (uint64, error) {
	op := m.ec.GetOp()
	if op == OpReset {
		m.PowerOn()
		return 0, nil
	}

	adjTarget := cycleTarget
	switch op {
	case OpPause:
		m.ec.state = ExecPaused
		return 0, nil
	case OpStep:
		adjTarget = m.cycles + 1 // run exactly one instruction's worth
	case OpStepOver:
		adjTarget = m.cycles + stepOverTimeout
	case OpRun:
		m.ec.state = ExecRunning
	}

	if m.ec.state == ExecPaused || m.ec.state == ExecBreakpointHit {
		return 0, nil
	}

	startCycles := m.cycles
	stepOverTarget := m.stepOverDepth

	for m.cycles < adjTarget {
		if m.ec.PeekOp() != OpNone {
			break // host asked for something new mid-run
		}

		if m.pic.HasPendingIRQ() && m.cpu.interruptSampleAllowed() {
			m.cpu.ServiceINTR(m.bus, m.pic, m.waitStatesEnabled)
		}

		if m.cpu.Halted() {
			m.runDevices(1)
			m.cycles++
			continue
		}

		spent := m.cpu.Step(m.bus, m.waitStatesEnabled)
		if err := m.checkOffRails(); err != nil {
			return m.cycles - startCycles, err
		}
		m.runDevices(int(spent))
		m.cycles += spent

		if op == OpStepOver && m.stepOverDepth <= stepOverTarget {
			break
		}
	}

	return m.cycles - startCycles, nil
}

// runDevices ticks every device by n CPU clocks, converted internally
// to each device's own reference clock. The PIT and DMA run at full
// CPU-cycle resolution (they ARE the clock the CPU divides down from,
// on a 5150); the keyboard runs on an approximate millisecond clock
// derived from the nominal 4.77 MHz CPU clock.
func (m *Machine) runDevices(cpuCycles int) {
	m.pit.Tick(cpuCycles)
	m.dma.Tick(cpuCycles)
	m.video.Tick(cpuCycles)

	const cyclesPerMs = 4772 // 4.77 MHz / 1000
	m.kbdMsAccum += cpuCycles
	for m.kbdMsAccum >= cyclesPerMs {
		m.kbdMsAccum -= cyclesPerMs
		m.kbd.Tick(1)
	}
}

// checkOffRails implements spec §7's off-rails detection: a PC stuck
// reading all-0xFF open-bus memory past a configured threshold, or a
// CS:IP pointing outside any mapped ROM/RAM, is reported as an
// offRailsError rather than let run forever.
func (m *Machine) checkOffRails() error {
	if !m.cfg.CPU.OffRailsDetection {
		return nil
	}
	addr := PhysicalAddress(m.cpu.Seg(segCS), m.cpu.IP())
	looksUnbacked := m.bus.windowFor(addr) == nil && !m.bus.romMask[addr&addressMask] && m.bus.ReadByte(addr) == openBusByte
	if looksUnbacked {
		return &offRailsError{
			csip: hexWord(m.cpu.Seg(segCS)) + ":" + hexWord(m.cpu.IP()),
			msg:  "fetch from unbacked open-bus address",
		}
	}
	return nil
}

func hexWord(v uint16) string {
	return string([]byte{
		"0123456789ABCDEF"[v>>12&0xF], "0123456789ABCDEF"[v>>8&0xF],
		"0123456789ABCDEF"[v>>4&0xF], "0123456789ABCDEF"[v&0xF],
	})
}

// HandleHalt applies the configured on_halt policy once the CPU
// executes HLT with interrupts disabled (the only case where the
// machine can never wake up again).
func (m *Machine) HandleHalt() error {
	if !m.cpu.Halted() {
		return nil
	}
	if op, had := m.cpu.UnimplementedOpcode(); had {
		m.ec.state = ExecPaused
		return errors.Errorf("cpu halted on unimplemented opcode 0x%02X", op)
	}
	if m.cpu.GetFlag(flagIF) {
		return nil
	}
	switch m.cfg.CPU.OnHalt {
	case HaltStop:
		m.ec.state = ExecPaused
		return errors.New("cpu halted with interrupts disabled: no path to resume")
	case HaltWarn:
		m.lastErr = errors.New("cpu halted with interrupts disabled")
	}
	return nil
}
