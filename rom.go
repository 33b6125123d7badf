// rom.go - ROM set loading and run_bin support
//
// The full TOML ROM-set catalogue (per-machine ROM lists, OEM
// preference, overlay resolution) is an out-of-scope external
// collaborator (§1: "ROM set TOML loading"); this file implements
// only the in-core contract: a named set of fixed-address blocks
// installed onto the bus, checksum-verified, with run_bin override.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"
)

// ROMImage describes one block to be mapped onto the bus.
type ROMImage struct {
	Name     string
	Address  uint32
	Data     []byte
	Checksum string // expected hex sha256; empty skips verification
}

// ROMSet is a named collection of ROM images for one machine profile.
type ROMSet struct {
	Name   string
	Images []ROMImage
}

// LoadROMImage reads a ROM file from disk and verifies its checksum
// if one is given. Checksum mismatch and missing file are both
// ROMErrors; the caller decides whether no_roms makes this non-fatal.
func LoadROMImage(path string, addr uint32, expectedChecksum string) (ROMImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ROMImage{}, newROMError(path, errors.Wrap(err, "reading ROM image"))
	}
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if expectedChecksum != "" && got != expectedChecksum {
		return ROMImage{}, newROMError(path, errors.Errorf(
			"checksum mismatch: got %s want %s", got, expectedChecksum))
	}
	return ROMImage{Name: path, Address: addr, Data: data, Checksum: got}, nil
}

// InstallROMSet maps every image in the set onto the bus as read-only
// blocks. Called once at power-on and again on hard reset when
// reload_roms is configured.
func InstallROMSet(bus *Bus, set ROMSet) {
	for _, img := range set.Images {
		bus.MapROM(img.Address, img.Data, img.Name)
	}
}

// InstallRunBin loads a flat binary at CS:IP = seg:ofs and returns the
// reset vector the CPU should use instead of the machine's normal
// 0xFFFF:0x0000 BIOS entry point (spec §6: run-bin mode).
func InstallRunBin(bus *Bus, path string, seg, ofs uint16) (csip CSIP, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CSIP{}, errors.Wrap(err, "reading run_bin binary")
	}
	addr := PhysicalAddress(seg, ofs)
	for i, b := range data {
		bus.WriteByte(addr+uint32(i), b)
	}
	return CSIP{CS: seg, IP: ofs}, nil
}

// CSIP is a segment:offset pair, used for reset vectors and trace
// records.
type CSIP struct {
	CS, IP uint16
}
