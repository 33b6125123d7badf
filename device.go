// device.go - Shared device capability set for the PC/XT machine core
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

// Device is the capability set every chip attached to the machine loop
// implements. The device set is fixed per machine configuration (see
// machine.go), so this is a closed set of concrete types behind one
// interface rather than an open-ended plugin registry.
type Device interface {
	// Reset restores the device to its power-on state.
	Reset()

	// Tick advances the device by n of its own reference clocks. The
	// machine loop computes n from the CPU cycle count and the device's
	// clock ratio; the device never reads the CPU's cycle counter itself.
	Tick(n int)

	// Name identifies the device for trace and error messages.
	Name() string
}

// PortDevice is implemented by devices mapped into I/O port space.
type PortDevice interface {
	Device
	In(port uint16) byte
	Out(port uint16, value byte)
}

// MMIODevice is implemented by devices mapped into the memory address
// space (video RAM, CRTC shadow registers reachable via memory windows).
type MMIODevice interface {
	Device
	MMIORead(addr uint32) byte
	MMIOWrite(addr uint32, value byte)
}
