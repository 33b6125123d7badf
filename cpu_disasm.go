// cpu_disasm.go - 8088 disassembler
//
// Grounded on the teacher's debug_disasm_x86.go decode-table approach
// (a struct walking the instruction stream byte-by-byte, building a
// mnemonic + operand string), narrowed from the teacher's 386 decode
// table (which includes SIB bytes and 32-bit immediates) down to the
// 8088's 16-bit-only addressing. Negative immediates and displacements
// are normalized to a signed decimal form rather than printed as raw
// hex, matching how the teacher's disassembler renders them.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import "fmt"

var reg8Names = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
var reg16Names = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var segNames = [4]string{"es", "cs", "ss", "ds"}

// DisasmLine is one decoded instruction: address, raw bytes, and text.
type DisasmLine struct {
	CS, IP uint16
	Bytes  []byte
	Text   string
}

// disasmCursor walks the bus read-only, without touching CPU state or
// charging bus cycles, so the debugger/trace layer can disassemble
// ahead of or behind the live fetch cursor.
type disasmCursor struct {
	bus    *Bus
	cs, ip uint16
	start  uint16
}

func newDisasmCursor(bus *Bus, cs, ip uint16) *disasmCursor {
	return &disasmCursor{bus: bus, cs: cs, ip: ip, start: ip}
}

func (d *disasmCursor) u8() byte {
	v := d.bus.ReadByte(PhysicalAddress(d.cs, d.ip))
	d.ip++
	return v
}

func (d *disasmCursor) u16() uint16 {
	lo := d.u8()
	hi := d.u8()
	return uint16(lo) | uint16(hi)<<8
}

// signed renders a displacement/immediate the way the teacher's
// disassembler does: "+N" / "-N" rather than two's-complement hex.
func signed(v int32) string {
	if v < 0 {
		return fmt.Sprintf("-0x%X", -v)
	}
	return fmt.Sprintf("+0x%X", v)
}

// DisassembleOne decodes a single instruction starting at cs:ip and
// returns the decoded line plus the address just past it.
func DisassembleOne(bus *Bus, cs, ip uint16) DisasmLine {
	d := newDisasmCursor(bus, cs, ip)
	op := d.u8()
	text := disasmOpcode(d, op)
	n := d.ip - d.start
	raw := make([]byte, n)
	for i := range raw {
		raw[i] = bus.ReadByte(PhysicalAddress(cs, ip+uint16(i)))
	}
	return DisasmLine{CS: cs, IP: ip, Bytes: raw, Text: text}
}

func disasmModRM(d *disasmCursor, wide bool) (regName, rmName string, reg int) {
	b := d.u8()
	mod := b >> 6
	reg = int(b>>3) & 7
	rm := int(b) & 7
	if wide {
		regName = reg16Names[reg]
	} else {
		regName = reg8Names[reg]
	}
	if mod == 3 {
		if wide {
			rmName = reg16Names[rm]
		} else {
			rmName = reg8Names[rm]
		}
		return
	}
	bases := [8]string{"bx+si", "bx+di", "bp+si", "bp+di", "si", "di", "bp", "bx"}
	base := bases[rm]
	disp := int32(0)
	switch mod {
	case 0:
		if rm == 6 {
			disp = int32(d.u16())
			rmName = fmt.Sprintf("[0x%X]", uint16(disp))
			return
		}
	case 1:
		disp = int32(int8(d.u8()))
	case 2:
		disp = int32(int16(d.u16()))
	}
	if disp != 0 {
		rmName = fmt.Sprintf("[%s%s]", base, signed(disp))
	} else {
		rmName = fmt.Sprintf("[%s]", base)
	}
	return
}

var aluMnemonics = [8]string{"add", "or", "adc", "sbb", "and", "sub", "xor", "cmp"}

func disasmOpcode(d *disasmCursor, op byte) string {
	switch {
	case op&0xC0 == 0x00 && op&7 <= 3 && op < 0x40:
		mnem := aluMnemonics[op>>3]
		wide := op&1 != 0
		toReg := op&2 != 0
		regName, rmName, _ := disasmModRM(d, wide)
		if toReg {
			return fmt.Sprintf("%s %s, %s", mnem, regName, rmName)
		}
		return fmt.Sprintf("%s %s, %s", mnem, rmName, regName)
	case op&0xC6 == 0x04 && op < 0x40:
		mnem := aluMnemonics[op>>3]
		if op&1 != 0 {
			return fmt.Sprintf("%s ax, 0x%X", mnem, d.u16())
		}
		return fmt.Sprintf("%s al, 0x%X", mnem, d.u8())
	case op >= 0x50 && op <= 0x57:
		return "push " + reg16Names[op-0x50]
	case op >= 0x58 && op <= 0x5F:
		return "pop " + reg16Names[op-0x58]
	case op >= 0x40 && op <= 0x47:
		return "inc " + reg16Names[op-0x40]
	case op >= 0x48 && op <= 0x4F:
		return "dec " + reg16Names[op-0x48]
	case op >= 0x70 && op <= 0x7F:
		disp := int8(d.u8())
		return fmt.Sprintf("%s %s", jccMnemonic(op&0x0F), signed(int32(disp)))
	case op >= 0xB0 && op <= 0xB7:
		return fmt.Sprintf("mov %s, 0x%X", reg8Names[op-0xB0], d.u8())
	case op >= 0xB8 && op <= 0xBF:
		return fmt.Sprintf("mov %s, 0x%X", reg16Names[op-0xB8], d.u16())
	case op == 0x88:
		r, m, _ := disasmModRM(d, false)
		return fmt.Sprintf("mov %s, %s", m, r)
	case op == 0x89:
		r, m, _ := disasmModRM(d, true)
		return fmt.Sprintf("mov %s, %s", m, r)
	case op == 0x8A:
		r, m, _ := disasmModRM(d, false)
		return fmt.Sprintf("mov %s, %s", r, m)
	case op == 0x8B:
		r, m, _ := disasmModRM(d, true)
		return fmt.Sprintf("mov %s, %s", r, m)
	case op == 0x8D:
		_, m, reg := disasmModRM(d, true)
		return fmt.Sprintf("lea %s, %s", reg16Names[reg], m)
	case op == 0xE8:
		disp := int16(d.u16())
		return fmt.Sprintf("call %s", signed(int32(disp)))
	case op == 0xE9:
		disp := int16(d.u16())
		return fmt.Sprintf("jmp %s", signed(int32(disp)))
	case op == 0xEB:
		disp := int8(d.u8())
		return fmt.Sprintf("jmp short %s", signed(int32(disp)))
	case op == 0xC3:
		return "ret"
	case op == 0xCB:
		return "retf"
	case op == 0xF4:
		return "hlt"
	case op == 0x90:
		return "nop"
	case op == 0xCC:
		return "int3"
	case op == 0xCD:
		return fmt.Sprintf("int 0x%X", d.u8())
	case op == 0xCF:
		return "iret"
	case op == 0xFA:
		return "cli"
	case op == 0xFB:
		return "sti"
	case op == 0xF8:
		return "clc"
	case op == 0xF9:
		return "stc"
	case op == 0xFC:
		return "cld"
	case op == 0xFD:
		return "std"
	case op == 0x26, op == 0x2E, op == 0x36, op == 0x3E:
		return segNames[segOverrideFromPrefix(op)] + ": " + disasmOpcode(d, d.u8())
	case op == 0x84:
		r, m, _ := disasmModRM(d, false)
		return fmt.Sprintf("test %s, %s", m, r)
	case op == 0x85:
		r, m, _ := disasmModRM(d, true)
		return fmt.Sprintf("test %s, %s", m, r)
	case op == 0xA8:
		return fmt.Sprintf("test al, 0x%X", d.u8())
	case op == 0xA9:
		return fmt.Sprintf("test ax, 0x%X", d.u16())
	case op == 0xF6:
		return disasmF6F7(d, false)
	case op == 0xF7:
		return disasmF6F7(d, true)
	case op == 0x98:
		return "cbw"
	case op == 0x99:
		return "cwd"
	case op == 0x27:
		return "daa"
	case op == 0x2F:
		return "das"
	case op == 0x37:
		return "aaa"
	case op == 0x3F:
		return "aas"
	case op == 0xD4:
		d.u8() // base operand, always 0x0A on real BIOS/DOS code
		return "aam"
	case op == 0xD5:
		d.u8()
		return "aad"
	case op == 0xD7:
		return "xlat"
	default:
		return fmt.Sprintf("(db 0x%02X)", op)
	}
}

var f6f7Mnemonics = [8]string{"test", "test", "not", "neg", "mul", "imul", "div", "idiv"}

// disasmF6F7 renders the F6/F7 ModRM-reg-selected group; reg 0 and 1
// both mean TEST and take an immediate operand, the rest are unary.
func disasmF6F7(d *disasmCursor, wide bool) string {
	_, rm, reg := disasmModRM(d, wide)
	mnem := f6f7Mnemonics[reg]
	if reg <= 1 {
		if wide {
			return fmt.Sprintf("%s %s, 0x%X", mnem, rm, d.u16())
		}
		return fmt.Sprintf("%s %s, 0x%X", mnem, rm, d.u8())
	}
	return fmt.Sprintf("%s %s", mnem, rm)
}

func jccMnemonic(cc byte) string {
	names := [16]string{"jo", "jno", "jb", "jae", "je", "jne", "jbe", "ja",
		"js", "jns", "jp", "jnp", "jl", "jge", "jle", "jg"}
	return names[cc]
}
