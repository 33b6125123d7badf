package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestTraceInstructionFormat(t *testing.T) {
	var buf bytes.Buffer
	ts := NewTraceSink(&buf, TraceInstruction)
	c := NewCPU()
	line := DisasmLine{CS: 0xF000, IP: 0xFFF0, Bytes: []byte{0x90}, Text: "nop"}
	ts.TraceInstruction(c, line)
	ts.Flush()
	if !strings.Contains(buf.String(), "F000:FFF0") {
		t.Fatalf("trace line missing CS:IP: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "nop") {
		t.Fatalf("trace line missing disassembly text: %q", buf.String())
	}
}

func TestTraceCycleCsvHasHeader(t *testing.T) {
	var buf bytes.Buffer
	NewTraceSink(&buf, TraceCycleCsv)
	if !strings.HasPrefix(buf.String(), "cycle,phase,addr") {
		t.Fatalf("CSV trace missing header: %q", buf.String())
	}
}

func TestTraceSigrokHeaderMatchesImportString(t *testing.T) {
	var buf bytes.Buffer
	ts := NewTraceSink(&buf, TraceCycleSigrok)
	c := NewCPU()
	ts.TraceCycle(c, 0x1234, 0xAB, true, false, false, false, false)
	ts.Flush()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 data line, got %d lines", len(lines))
	}
	// 12 columns: t,addr,data,phase_b0,phase_b1,ale,rd,wr,iorc,iowc,den,hlda
	if got := strings.Count(lines[1], ","); got != 11 {
		t.Fatalf("sigrok data line has %d commas, want 11 (12 columns)", got)
	}
}
