package main

import "testing"

func newTestMachine() *Machine {
	cfg := DefaultConfig()
	cfg.CPU.OffRailsDetection = false
	m := NewMachine(cfg, NewMDA())
	m.PowerOn()
	return m
}

func TestRunForHaltsOnHLTWithInterruptsDisabled(t *testing.T) {
	m := newTestMachine()
	m.CPU().SetSeg(segCS, 0x0000)
	m.CPU().SetFlag(flagIF, false)
	code := []byte{0xFA, 0xF4} // CLI; HLT
	for i, b := range code {
		m.Bus().WriteByte(PhysicalAddress(0x0000, 0x0100+uint16(i)), b)
	}
	m.cpu.flushQueue(0x0100)
	m.ec.SetOp(OpRun)

	if _, err := m.RunFor(1000); err != nil {
		t.Fatalf("RunFor returned an error before halting: %v", err)
	}
	if !m.CPU().Halted() {
		t.Fatal("machine did not halt")
	}
	if err := m.HandleHalt(); err == nil {
		t.Fatal("HandleHalt should report an error for HLT with IF=0 under HaltStop policy")
	}
}

func TestRunForStepExecutesExactlyOneInstruction(t *testing.T) {
	m := newTestMachine()
	m.CPU().SetSeg(segCS, 0x0000)
	code := []byte{0x90, 0x90, 0x90}
	for i, b := range code {
		m.Bus().WriteByte(PhysicalAddress(0x0000, 0x0100+uint16(i)), b)
	}
	m.cpu.flushQueue(0x0100)
	m.ec.SetOp(OpStep)
	before := m.cpu.IP()
	if _, err := m.RunFor(1); err != nil {
		t.Fatal(err)
	}
	after := m.cpu.IP()
	if after == before {
		t.Fatal("Step did not advance the instruction pointer")
	}
}

func TestPendingIRQWakesHaltedCPU(t *testing.T) {
	m := newTestMachine()
	m.CPU().SetSeg(segCS, 0x0000)
	m.CPU().SetFlag(flagIF, true)
	m.Bus().WriteByte(PhysicalAddress(0x0000, 0x0100), 0xF4) // HLT
	// IRQ0 vector table entry: far pointer into our test code.
	m.Bus().WriteWord(0x08*4, 0x0200)
	m.Bus().WriteWord(0x08*4+2, 0x0000)
	m.Bus().WriteByte(PhysicalAddress(0x0000, 0x0200), 0x90) // NOP at the ISR
	m.cpu.flushQueue(0x0100)
	m.ec.SetOp(OpRun)
	m.pic.Out(0, 0x13)
	m.pic.Out(1, 0x08)
	m.pic.Out(1, 0x09)
	m.pic.RaiseIRQ(0)

	if _, err := m.RunFor(200); err != nil {
		t.Fatal(err)
	}
	if m.cpu.Seg(segCS) != 0x0000 || m.cpu.IP() < 0x0200 {
		t.Fatalf("CPU did not service the pending IRQ: CS:IP=%04X:%04X", m.cpu.Seg(segCS), m.cpu.IP())
	}
}
