// cpu_trace.go - Instruction and cycle trace emission
//
// The CycleSigrok format is grounded on the sigrok project's PulseView
// CSV importer, whose column layout this emits directly so a capture
// can be dropped into PulseView with the import string documented in
// SPEC_FULL.md §4.2: "t,x20,l,l,x2,x3,l,l,l,l,l,l" (one time column,
// one 20-bit address bus, two logic lines for the bus-cycle phase
// nibble, etc). No library in the retrieval pack emits CSV with a
// quoting/escaping concern, so this is written directly against
// io.Writer with the standard library's fmt.Fprintf, matching how the
// teacher's own trace output (trace in debug_monitor.go, read then
// dropped) built lines with fmt rather than encoding/csv.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import (
	"bufio"
	"fmt"
	"io"
)

// TraceSink receives one record per emitted event. The Machine owns
// the sink and flushes it on power-off/reset.
type TraceSink struct {
	mode TraceMode
	w    *bufio.Writer
	n    uint64
}

func NewTraceSink(w io.Writer, mode TraceMode) *TraceSink {
	ts := &TraceSink{mode: mode, w: bufio.NewWriter(w)}
	if mode == TraceCycleCsv || mode == TraceCycleSigrok {
		ts.writeHeader()
	}
	return ts
}

func (ts *TraceSink) writeHeader() {
	switch ts.mode {
	case TraceCycleCsv:
		fmt.Fprintln(ts.w, "cycle,phase,addr,data,ale,rd,wr,iorc,iowc")
	case TraceCycleSigrok:
		fmt.Fprintln(ts.w, "t,addr,data,phase_b0,phase_b1,ale,rd,wr,iorc,iowc,den,hlda")
	}
}

// TraceInstruction emits one line per retired instruction, as decoded
// by DisassembleOne.
func (ts *TraceSink) TraceInstruction(c *CPU, line DisasmLine) {
	if ts.mode != TraceInstruction {
		return
	}
	fmt.Fprintf(ts.w, "%04X:%04X  % -20x  %-28s AX=%04X CX=%04X DX=%04X BX=%04X SP=%04X BP=%04X SI=%04X DI=%04X FL=%04X\n",
		line.CS, line.IP, line.Bytes, line.Text,
		c.AX(), c.CX(), c.DX(), c.BX(), c.SP(), c.BP(), c.SI(), c.DI(), c.Flags())
}

// TraceCycle emits one line per bus clock, used by both the plain-text
// and CSV/sigrok cycle modes.
func (ts *TraceSink) TraceCycle(c *CPU, addr uint32, data byte, ale, rd, wr, iorc, iowc bool) {
	ts.n++
	switch ts.mode {
	case TraceCycleText:
		fmt.Fprintf(ts.w, "%10d %-5s addr=%05X data=%02X ALE=%t RD=%t WR=%t\n",
			ts.n, c.biu.phase, addr, data, ale, rd, wr)
	case TraceCycleCsv:
		fmt.Fprintf(ts.w, "%d,%s,%05X,%02X,%d,%d,%d,%d,%d\n",
			ts.n, c.biu.phase, addr, data, b2i(ale), b2i(rd), b2i(wr), b2i(iorc), b2i(iowc))
	case TraceCycleSigrok:
		p0, p1 := phaseBits(c.biu.phase)
		fmt.Fprintf(ts.w, "%d,%05X,%02X,%d,%d,%d,%d,%d,%d,%d,1,0\n",
			ts.n, addr, data, p0, p1, b2i(ale), b2i(rd), b2i(wr), b2i(iorc), b2i(iowc))
	}
}

func (ts *TraceSink) Flush() error { return ts.w.Flush() }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// phaseBits encodes BusState as a 2-bit logic pair for the sigrok
// export's "x2" column pair.
func phaseBits(s BusState) (int, int) {
	switch s {
	case BusT1:
		return 0, 0
	case BusT2:
		return 1, 0
	case BusT3:
		return 0, 1
	case BusTw:
		return 1, 1
	default:
		return 0, 0
	}
}
