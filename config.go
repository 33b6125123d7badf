// config.go - Hierarchical configuration document
//
// No example repo in the retrieval pack imports a TOML/YAML/INI
// library (surveyed: IntuitionAmiga-IntuitionEngine, bshepherdson-tc-dcpu,
// cvanloo-mmvm, db47h-hwsim, syifan-m2sim2, and the other_examples
// standalone files) — see DESIGN.md for the full per-dependency
// ledger. The configuration document is therefore decoded with the
// standard library's encoding/json into a typed struct that mirrors
// spec §6's option groups field-for-field; errors are wrapped with
// github.com/pkg/errors (the one error-wrapping library the pack
// does use, via db47h-hwsim) so the host can print full cause chains.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// HaltPolicy is the on_halt configuration knob (§4.1, §6).
type HaltPolicy string

const (
	HaltContinue HaltPolicy = "Continue"
	HaltStop     HaltPolicy = "Stop"
	HaltWarn     HaltPolicy = "Warn"
)

// TraceMode selects the trace output format (§4.2, §6).
type TraceMode string

const (
	TraceNone        TraceMode = ""
	TraceInstruction TraceMode = "Instruction"
	TraceCycleText   TraceMode = "CycleText"
	TraceCycleCsv    TraceMode = "CycleCsv"
	TraceCycleSigrok TraceMode = "CycleSigrok"
)

// PathSpec is one entry of [emulator].paths[].
type PathSpec struct {
	Resource string `json:"resource"`
	Path     string `json:"path"`
	Recurse  bool   `json:"recurse,omitempty"`
	Create   bool   `json:"create,omitempty"`
}

// MachineConfig is the [machine] group.
type MachineConfig struct {
	ConfigName     string   `json:"config_name"`
	ConfigOverlays []string `json:"config_overlays,omitempty"`
	PreferOEM      bool     `json:"prefer_oem,omitempty"`
	ReloadROMs     bool     `json:"reload_roms,omitempty"`
	NoROMs         bool     `json:"no_roms,omitempty"`
	Turbo          bool     `json:"turbo,omitempty"`
	PITPhase       int      `json:"pit_phase,omitempty"` // 0..3
}

// CPUConfig is the [machine.cpu] group.
type CPUConfig struct {
	WaitStates         bool      `json:"wait_states"`
	OffRailsDetection  bool      `json:"off_rails_detection,omitempty"`
	OnHalt             HaltPolicy `json:"on_halt,omitempty"`
	InstructionHistory bool      `json:"instruction_history,omitempty"`
	ServiceInterrupt   bool      `json:"service_interrupt,omitempty"`
	TraceOn            bool      `json:"trace_on,omitempty"`
	TraceMode          TraceMode `json:"trace_mode,omitempty"`
	TraceFile          string    `json:"trace_file,omitempty"`
}

// EmulatorConfig is the [emulator] group. Fields describing out-of-scope
// external collaborators (window/scaler presets, validator, JSON test
// options) are intentionally omitted; only the fields this core acts on
// directly are modeled (§6).
type EmulatorConfig struct {
	BaseDir       string     `json:"basedir,omitempty"`
	Paths         []PathSpec `json:"paths,omitempty"`
	IgnoreDirs    []string   `json:"ignore_dirs,omitempty"`
	AutoPowerOn   bool       `json:"auto_poweron,omitempty"`
	CPUAutostart  bool       `json:"cpu_autostart,omitempty"`
	Headless      bool       `json:"headless,omitempty"`
	DebugMode     bool       `json:"debug_mode,omitempty"`
	DebugKeyboard bool       `json:"debug_keyboard,omitempty"`
	DebugScriptPath string   `json:"debug_script_path,omitempty"`
	RunBin        string     `json:"run_bin,omitempty"`
	RunBinSeg     uint16     `json:"run_bin_seg,omitempty"`
	RunBinOfs     uint16     `json:"run_bin_ofs,omitempty"`
}

// Config is the whole hierarchical configuration document.
type Config struct {
	Machine  MachineConfig  `json:"machine"`
	CPU      CPUConfig      `json:"machine.cpu"`
	Emulator EmulatorConfig `json:"emulator"`
}

// DefaultConfig returns a configuration matching a stock 5150-class
// machine: wait states on (accurate timing), halt policy Stop, tracing
// and the debug service interrupt both off.
func DefaultConfig() Config {
	return Config{
		Machine: MachineConfig{ConfigName: "ibm5150", PITPhase: 0},
		CPU: CPUConfig{
			WaitStates:        true,
			OffRailsDetection: true,
			OnHalt:            HaltStop,
		},
	}
}

// LoadConfig reads and validates a configuration document from path.
// Every failure is a *ConfigError so the host can report it before
// the machine is constructed, per §7's error policy.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newConfigError("", "", errors.Wrap(err, "reading config file"))
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, newConfigError("", "", errors.Wrap(err, "parsing config document"))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants that can't be expressed by
// the JSON schema alone.
func (c *Config) Validate() error {
	if c.Machine.PITPhase < 0 || c.Machine.PITPhase > 3 {
		return newConfigError("machine", "pit_phase",
			errors.Errorf("pit_phase must be in 0..3, got %d", c.Machine.PITPhase))
	}
	switch c.CPU.OnHalt {
	case "", HaltContinue, HaltStop, HaltWarn:
	default:
		return newConfigError("machine.cpu", "on_halt",
			errors.Errorf("unrecognized on_halt policy %q", c.CPU.OnHalt))
	}
	switch c.CPU.TraceMode {
	case TraceNone, TraceInstruction, TraceCycleText, TraceCycleCsv, TraceCycleSigrok:
	default:
		return newConfigError("machine.cpu", "trace_mode",
			errors.Errorf("unrecognized trace_mode %q", c.CPU.TraceMode))
	}
	if c.CPU.TraceOn && c.CPU.TraceMode != TraceNone && c.CPU.TraceFile == "" {
		return newConfigError("machine.cpu", "trace_file",
			errors.New("trace_file required when trace_on is set with a trace_mode"))
	}
	return nil
}
