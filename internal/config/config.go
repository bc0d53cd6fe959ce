// Package config loads and validates the YAML configuration record
// that seeds every other component: byte-channel device paths, the
// capture/transmit safety caps, the cross-correlation transform
// parameters, and this expansion's ambient options (mDNS name, arm
// interlock GPIO descriptor, artifact dump directory, geodetic
// anchor, rig descriptor).
//
// The record is loaded once at startup and validated before anything
// opens a device; an invalid configuration is an error, never a panic.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration record.
type Config struct {
	AdcPath   string `yaml:"adc_path"`
	PulsePath string `yaml:"pulse_path"`
	CtrlPath  string `yaml:"ctrl_path"`
	Baud      int    `yaml:"baud"`

	AdcReadBytes      int `yaml:"adc_read_bytes"`
	AdcStartTimeoutMs int `yaml:"adc_start_timeout_ms"`
	AdcIdleTimeoutMs  int `yaml:"adc_idle_timeout_ms"`

	BitClockHz int     `yaml:"bit_clock_hz"`
	FsHz       float64 `yaml:"fs_hz"`

	MicSeparationM  float64 `yaml:"mic_separation_m"`
	SpeedOfSoundMPS float64 `yaml:"speed_of_sound_mps"`

	XcorrN int     `yaml:"xcorr_n"`
	HpfHz  float64 `yaml:"hpf_hz"`

	DutyMaxPercent int `yaml:"duty_max_percent"`
	MaxRunBits     int `yaml:"max_run_bits"`
	MaxTxBytes     int `yaml:"max_tx_bytes"`

	AllowedTxPaths []string `yaml:"allowed_tx_paths"`
	TestTxPrefix   string   `yaml:"test_tx_prefix"`

	DnsSdName string `yaml:"dns_sd_name"`

	ArmGpioChip string `yaml:"arm_gpio_chip"`
	ArmGpioLine int    `yaml:"arm_gpio_line"`

	DumpDir string `yaml:"dump_dir"`

	AnchorLat        float64 `yaml:"anchor_lat"`
	AnchorLon        float64 `yaml:"anchor_lon"`
	AnchorBearingDeg float64 `yaml:"anchor_bearing_deg"`

	RigModel int    `yaml:"rig_model"`
	RigPath  string `yaml:"rig_path"`
}

// allowedBauds mirrors the standard rates internal/serialport accepts.
var allowedBauds = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true,
	19200: true, 38400: true, 57600: true, 115200: true,
}

// defaults is the reference deployment: 1 MHz stereo ADC over 115200
// baud serial, 64 ms capture, 32768-point transforms.
func defaults() Config {
	return Config{
		Baud:              115200,
		AdcReadBytes:      256_000,
		AdcStartTimeoutMs: 500,
		AdcIdleTimeoutMs:  2_000,
		BitClockHz:        10_000_000,
		FsHz:              1_000_000,
		MicSeparationM:    0.116,
		SpeedOfSoundMPS:   340,
		XcorrN:            32768,
		HpfHz:             35_000,
		DutyMaxPercent:    60,
		MaxRunBits:        200,
		MaxTxBytes:        50_000,
		TestTxPrefix:      "/tmp/PULSE_",
	}
}

// Error reports a construction-time configuration problem; it is
// never appropriate to retry.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Load reads YAML from path, applies defaults() for any field the
// document omits, and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes into a validated Config, applying defaults
// to any field the document omits. A field the document sets
// explicitly, even to zero, keeps the document's value.
func Parse(raw []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every range/consistency constraint the rest of the
// pipeline relies on, returning the first violation found as a *Error.
func Validate(cfg *Config) error {
	if !allowedBauds[cfg.Baud] {
		return &Error{Field: "baud", Reason: fmt.Sprintf("unsupported rate %d", cfg.Baud)}
	}
	if cfg.AdcReadBytes <= 0 {
		return &Error{Field: "adc_read_bytes", Reason: "must be positive"}
	}
	if cfg.AdcStartTimeoutMs <= 0 || cfg.AdcIdleTimeoutMs <= 0 {
		return &Error{Field: "adc_*_timeout_ms", Reason: "must be positive"}
	}
	if cfg.FsHz <= 0 {
		return &Error{Field: "fs_hz", Reason: "must be positive"}
	}
	if cfg.XcorrN <= 0 || cfg.XcorrN&(cfg.XcorrN-1) != 0 {
		return &Error{Field: "xcorr_n", Reason: "must be a positive power of two"}
	}
	if cfg.HpfHz < 0 || cfg.HpfHz > cfg.FsHz/2 {
		return &Error{Field: "hpf_hz", Reason: "must be within [0, fs_hz/2]"}
	}
	if cfg.DutyMaxPercent <= 0 || cfg.DutyMaxPercent > 100 {
		return &Error{Field: "duty_max_percent", Reason: "must be within (0, 100]"}
	}
	if cfg.MaxRunBits <= 0 {
		return &Error{Field: "max_run_bits", Reason: "must be positive"}
	}
	if cfg.MaxTxBytes <= 0 {
		return &Error{Field: "max_tx_bytes", Reason: "must be positive"}
	}
	if cfg.MicSeparationM <= 0 {
		return &Error{Field: "mic_separation_m", Reason: "must be positive"}
	}
	if cfg.SpeedOfSoundMPS <= 0 {
		return &Error{Field: "speed_of_sound_mps", Reason: "must be positive"}
	}
	return nil
}
