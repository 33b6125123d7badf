// errors.go - Error kinds for the PC/XT machine core
//
// Grounded on db47h-hwsim, the one example repo in the retrieval pack
// that wraps errors rather than returning bare strings: it imports
// github.com/pkg/errors for exactly this purpose and nothing else.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import "github.com/pkg/errors"

// ConfigError wraps a fatal configuration problem (§7: unknown machine
// profile, missing ROM set, conflicting overlays, path creation failure).
// Always surfaced to the host before the machine is constructed.
type ConfigError struct {
	Group string // e.g. "machine", "machine.cpu", "emulator"
	Field string
	cause error
}

func (e *ConfigError) Error() string {
	return errors.Wrapf(e.cause, "config error in [%s].%s", e.Group, e.Field).Error()
}

func (e *ConfigError) Unwrap() error { return e.cause }

func newConfigError(group, field string, cause error) *ConfigError {
	return &ConfigError{Group: group, Field: field, cause: cause}
}

// ROMError wraps a fatal ROM-layer problem (checksum mismatch, unknown
// ROM set). Fatal unless the configuration sets no_roms.
type ROMError struct {
	SetName string
	cause   error
}

func (e *ROMError) Error() string {
	return errors.Wrapf(e.cause, "ROM error in set %q", e.SetName).Error()
}

func (e *ROMError) Unwrap() error { return e.cause }

func newROMError(setName string, cause error) *ROMError {
	return &ROMError{SetName: setName, cause: cause}
}

// offRailsError is raised internally when off_rails_detection trips.
// It never panics the process; the machine loop converts it into the
// configured halt policy (Continue|Stop|Warn).
type offRailsError struct {
	csip string
	msg  string
}

func (e *offRailsError) Error() string {
	return "cpu off rails at " + e.csip + ": " + e.msg
}
