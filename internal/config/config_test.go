package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// A YAML document with every field populated parses back into exactly
// the struct it was marshalled from.
func TestParse_RoundTrip(t *testing.T) {
	want := Config{
		AdcPath: "/dev/ttyUSB0", PulsePath: "/dev/ttyUSB1", CtrlPath: "/dev/ttyUSB2",
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
		AllowedTxPaths:    []string{"/dev/ttyUSB1"},
		TestTxPrefix:      "/tmp/PULSE_",
		DnsSdName:         "batrobot-1",
		ArmGpioChip:       "gpiochip0",
		ArmGpioLine:       17,
		DumpDir:           "/var/lib/batrobot/dump",
		AnchorLat:         35.0,
		AnchorLon:         139.0,
		AnchorBearingDeg:  90.0,
		RigModel:          1,
		RigPath:           "/dev/ttyUSB3",
	}

	raw, err := yaml.Marshal(&want)
	require.NoError(t, err)

	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestParse_RejectsOutOfRangeHpf(t *testing.T) {
	want := defaults()
	want.AdcPath, want.PulsePath, want.CtrlPath = "a", "b", "c"
	want.HpfHz = want.FsHz // > fs_hz/2
	raw, err := yaml.Marshal(&want)
	require.NoError(t, err)

	_, err = Parse(raw)
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "hpf_hz", cfgErr.Field)
}

func TestParse_AppliesDefaultsForZeroFields(t *testing.T) {
	got, err := Parse([]byte(`adc_path: /dev/ttyUSB0
pulse_path: /dev/ttyUSB1
ctrl_path: /dev/ttyUSB2
`))
	require.NoError(t, err)
	assert.Equal(t, 115200, got.Baud)
	assert.Equal(t, 32768, got.XcorrN)
	assert.Equal(t, "/tmp/PULSE_", got.TestTxPrefix)
}

func TestParse_RejectsUnsupportedBaud(t *testing.T) {
	got := defaults()
	got.AdcPath, got.PulsePath, got.CtrlPath = "a", "b", "c"
	got.Baud = 31250
	raw, err := yaml.Marshal(&got)
	require.NoError(t, err)

	_, err = Parse(raw)
	require.Error(t, err)
}

func TestParse_RejectsNonPowerOfTwoXcorrN(t *testing.T) {
	got := defaults()
	got.AdcPath, got.PulsePath, got.CtrlPath = "a", "b", "c"
	got.XcorrN = 1000
	raw, err := yaml.Marshal(&got)
	require.NoError(t, err)

	_, err = Parse(raw)
	require.Error(t, err)
}
