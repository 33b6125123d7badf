// cpu_interrupt.go - INTA two-pulse protocol, HLT/resume, interrupt sampling
//
// Grounded on the original Rust source's machine.rs run() loop, which
// samples the CPU's pending-interrupt state once per instruction
// boundary (never mid-instruction) and on the 8259A datasheet's INTA
// two-pulse convention: the first INTA pulse freezes the PIC's
// priority resolution, the second fetches the vector byte.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

// interruptSampleAllowed reports whether the CPU may accept an
// external interrupt right now: IF must be set, no segment-override
// or REP prefix can be outstanding (spec §4.6: prefixed instructions
// are atomic with respect to interrupt sampling), and the CPU can't
// already be mid-instruction.
func (c *CPU) interruptSampleAllowed() bool {
	return c.GetFlag(flagIF) && c.segOverride < 0 && c.repPrefix == 0 && !c.trapPending
}

// ServiceINTR runs the INTA two-pulse exchange with pic and dispatches
// through the resulting vector's interrupt table entry. Called once
// per instruction boundary from the machine loop when pic.HasPendingIRQ().
func (c *CPU) ServiceINTR(bus *Bus, pic *PIC, waitStates bool) {
	c.halted = false
	c.hadUnimplementedOp = false
	c.runBusCycle(bus, waitStates) // first INTA pulse
	vector := pic.INTA()
	c.runBusCycle(bus, waitStates) // second INTA pulse, fetches vector
	c.dispatchInterrupt(bus, vector, waitStates)
}

// ServiceSoftware handles INT n (software interrupt), NMI, and the
// three exception vectors (0=divide error, 1=single-step trap,
// 3=breakpoint) reached from cpu_exec.go opcode handlers. Vector 0xFC
// is reserved for the debug-script hook (debugscript.go); when one is
// installed it runs in place of a normal vector-table dispatch, since
// no real 5150 software uses that vector.
func (c *CPU) ServiceSoftware(bus *Bus, vector byte, waitStates bool) {
	if vector == 0xFC && c.debugHook != nil {
		c.debugHook()
		return
	}
	c.dispatchInterrupt(bus, vector, waitStates)
}

// SetDebugHook installs the INT 0xFC callback; pass nil to disable.
func (c *CPU) SetDebugHook(hook func()) { c.debugHook = hook }

// dispatchInterrupt pushes FLAGS/CS/IP, clears IF and TF, and loads
// CS:IP from the interrupt vector table entry at vector*4.
func (c *CPU) dispatchInterrupt(bus *Bus, vector byte, waitStates bool) {
	c.pushWord(bus, c.Flags(), waitStates)
	c.pushWord(bus, c.seg[segCS], waitStates)
	c.pushWord(bus, c.IP(), waitStates)
	c.shadow.push(c.seg[segCS], c.IP())
	c.SetFlag(flagIF, false)
	c.SetFlag(flagTF, false)
	addr := uint32(vector) * 4
	newIP := c.readWord(bus, addr, waitStates)
	newCS := c.readWord(bus, addr+2, waitStates)
	c.seg[segCS] = newCS
	c.flushQueue(newIP)
}

// Halt enters the HLT state. The machine loop keeps ticking devices
// while halted but stops the EU from fetching; ServiceINTR still wakes
// the CPU since INTR is sampled independent of the halted flag.
func (c *CPU) Halt() {
	c.halted = true
	c.state = ExecHalted
}

func (c *CPU) Halted() bool { return c.halted }

// pushWord/popWord implement the stack push/pop convention, grounded
// on the original Rust source's stack.rs (push_u16/pop_u16): SP is
// decremented before the write and incremented after the read, both
// relative to SS, and SP wraps at 16 bits like every other register.
func (c *CPU) pushWord(bus *Bus, v uint16, waitStates bool) {
	c.gpr[regSP] -= 2
	addr := PhysicalAddress(c.seg[segSS], c.gpr[regSP])
	c.writeWord(bus, addr, v, waitStates)
}

func (c *CPU) popWord(bus *Bus, waitStates bool) uint16 {
	addr := PhysicalAddress(c.seg[segSS], c.gpr[regSP])
	v := c.readWord(bus, addr, waitStates)
	c.gpr[regSP] += 2
	return v
}
