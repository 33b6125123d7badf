package main

import "testing"

func TestPhysicalAddressWraps(t *testing.T) {
	got := PhysicalAddress(0xFFFF, 0xFFFF)
	want := uint32(0xFFFF<<4+0xFFFF) & addressMask
	if got != want {
		t.Fatalf("PhysicalAddress(0xFFFF,0xFFFF) = %05X, want %05X", got, want)
	}
}

func TestBusReadWriteRoundTrip(t *testing.T) {
	b := NewBus()
	b.WriteByte(0x1234, 0xAB)
	if got := b.ReadByte(0x1234); got != 0xAB {
		t.Fatalf("ReadByte = %02X, want AB", got)
	}
	b.WriteWord(0x2000, 0xBEEF)
	if got := b.ReadWord(0x2000); got != 0xBEEF {
		t.Fatalf("ReadWord = %04X, want BEEF", got)
	}
}

func TestBusUnmappedPortIsOpenBus(t *testing.T) {
	b := NewBus()
	if got := b.In(0x9999); got != openBusByte {
		t.Fatalf("In(unmapped) = %02X, want %02X", got, openBusByte)
	}
}

func TestBusROMWritesDiscarded(t *testing.T) {
	b := NewBus()
	b.MapROM(0xF0000, []byte{0x11, 0x22, 0x33}, "test")
	b.WriteByte(0xF0001, 0x00)
	if got := b.ReadByte(0xF0001); got != 0x22 {
		t.Fatalf("ROM write was not discarded: ReadByte = %02X, want 22", got)
	}
}

func TestBusResetReinstallsROM(t *testing.T) {
	b := NewBus()
	b.MapROM(0x1000, []byte{0xAA}, "test")
	b.ram[0x1000] = 0x00 // simulate corruption
	b.Reset()
	if got := b.ReadByte(0x1000); got != 0xAA {
		t.Fatalf("Reset did not reinstall ROM image: got %02X", got)
	}
}

func TestRefreshStealConsumedOnce(t *testing.T) {
	b := NewBus()
	b.StealRefreshCycle()
	b.StealRefreshCycle()
	if n := b.ConsumeRefreshSteal(); n != 2 {
		t.Fatalf("ConsumeRefreshSteal = %d, want 2", n)
	}
	if n := b.ConsumeRefreshSteal(); n != 0 {
		t.Fatalf("second ConsumeRefreshSteal = %d, want 0", n)
	}
}
