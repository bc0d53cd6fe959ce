package safety

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func defaultPolicy() Policy {
	return Policy{
		DutyMaxPercent: 60,
		MaxRunBits:     200,
		MaxTxBytes:     50_000,
		AllowedTxPaths: []string{"/dev/ttyUSB0"},
		TestTxPrefix:   "/tmp/PULSE_",
	}
}

func TestCheck_RejectsOverlongBitstream(t *testing.T) {
	data := bytes.Repeat([]byte{0x00}, 50_001)
	err := Check(defaultPolicy(), "/tmp/PULSE_A", data)
	require.Error(t, err)
	var rej *RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonLength, rej.Reason)
}

// All-0xFF is a 100% ones-ratio, well past any sane duty cap.
func TestCheck_RejectsExcessiveDuty(t *testing.T) {
	data := bytes.Repeat([]byte{0xFF}, 100)
	err := Check(defaultPolicy(), "/tmp/PULSE_A", data)
	require.Error(t, err)
	var rej *RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonDuty, rej.Reason)
}

// 250 consecutive 1-bits then zeros, 100 bytes total (800 bits): the
// ones-ratio (31%) is under the duty cap but the run exceeds the
// 200-bit cap.
func TestCheck_RejectsLongRun(t *testing.T) {
	data := make([]byte, 100)
	for bit := 0; bit < 250; bit++ {
		data[bit/8] |= 1 << uint(bit%8)
	}
	err := Check(defaultPolicy(), "/tmp/PULSE_A", data)
	require.Error(t, err)
	var rej *RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonRunLength, rej.Reason)
}

func TestCheck_Destination(t *testing.T) {
	data := []byte{0x01, 0x00, 0x01, 0x00}
	err := Check(defaultPolicy(), "/dev/ttyUSB9", data)
	require.Error(t, err)
	var rej *RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonDestination, rej.Reason)

	err = Check(defaultPolicy(), "/dev/ttyUSB0", data)
	assert.NoError(t, err)
}

func TestCheck_AcceptsSafeBitstream(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		if i%4 == 0 {
			data[i] = 0x11
		}
	}
	err := Check(defaultPolicy(), "/tmp/PULSE_A", data)
	assert.NoError(t, err)
}

// If the gate rejects X, it rejects every Y obtained from X by
// flipping a single 0 bit to 1: every check is monotone in the set
// bits.
func TestCheck_MonotonicityProperty(t *testing.T) {
	policy := defaultPolicy()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 100).Draw(t, "bytes")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "data")

		if Check(policy, "/tmp/PULSE_A", data) == nil {
			return // X wasn't rejected; nothing to assert.
		}

		// Find a zero bit to flip, if any.
		zeroBit := -1
		for bit := 0; bit < n*8; bit++ {
			if data[bit/8]>>uint(bit%8)&1 == 0 {
				zeroBit = bit
				break
			}
		}
		if zeroBit == -1 {
			return // X is all ones; no flip is possible.
		}

		flipped := append([]byte(nil), data...)
		flipped[zeroBit/8] |= 1 << uint(zeroBit%8)

		err := Check(policy, "/tmp/PULSE_A", flipped)
		assert.Errorf(t, err, "flipping bit %d of a rejected bitstream must still be rejected", zeroBit)
	})
}

func TestIsTestDestination(t *testing.T) {
	policy := defaultPolicy()
	assert.True(t, IsTestDestination(policy, "/tmp/PULSE_A"))
	assert.False(t, IsTestDestination(policy, "/dev/ttyUSB0"))
}
