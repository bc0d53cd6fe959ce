package txsink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuroAkira/Batrobot/internal/safety"
)

type fakeWriter struct {
	wrote   []byte
	shortBy int
	err     error
}

func (f *fakeWriter) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.wrote = append(f.wrote, p...)
	return len(p) - f.shortBy, nil
}

type fakeInterlock struct {
	armed bool
	err   error
}

func (f *fakeInterlock) Armed(string) (bool, error) {
	return f.armed, f.err
}

func policy() safety.Policy {
	return safety.Policy{
		DutyMaxPercent: 60,
		MaxRunBits:     200,
		MaxTxBytes:     50_000,
		AllowedTxPaths: []string{"/dev/ttyUSB0"},
		TestTxPrefix:   "/tmp/PULSE_",
	}
}

func TestTransmit_Success(t *testing.T) {
	w := &fakeWriter{}
	data := []byte{0x01, 0x00, 0x01, 0x00}
	err := Transmit(policy(), nil, "/tmp/PULSE_A", w, data)
	require.NoError(t, err)
	assert.Equal(t, data, w.wrote)
}

func TestTransmit_GateRejectionPropagates(t *testing.T) {
	w := &fakeWriter{}
	data := []byte{0xFF, 0xFF}
	err := Transmit(policy(), nil, "/tmp/PULSE_A", w, data)
	require.Error(t, err)
	var rej *safety.RejectError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, safety.ReasonDuty, rej.Reason)
	assert.Empty(t, w.wrote, "gate must fire before any write")
}

func TestTransmit_ShortWrite(t *testing.T) {
	w := &fakeWriter{shortBy: 1}
	data := []byte{0x01, 0x00}
	err := Transmit(policy(), nil, "/tmp/PULSE_A", w, data)
	require.Error(t, err)
	var short *ShortWriteError
	require.True(t, errors.As(err, &short))
}

// A live (non-test-prefix) destination with a no-assert interlock is
// rejected, and the byte channel is never written to.
func TestTransmit_InterlockBlocksLiveDestination(t *testing.T) {
	w := &fakeWriter{}
	lock := &fakeInterlock{armed: false}
	data := []byte{0x01, 0x00}
	err := Transmit(policy(), lock, "/dev/ttyUSB0", w, data)
	require.Error(t, err)
	var notArmed *InterlockNotArmedError
	require.True(t, errors.As(err, &notArmed))
	assert.Empty(t, w.wrote)
}

func TestTransmit_InterlockArmedAllowsLiveDestination(t *testing.T) {
	w := &fakeWriter{}
	lock := &fakeInterlock{armed: true}
	data := []byte{0x01, 0x00}
	err := Transmit(policy(), lock, "/dev/ttyUSB0", w, data)
	require.NoError(t, err)
	assert.Equal(t, data, w.wrote)
}

func TestTransmit_InterlockSkippedForTestDestination(t *testing.T) {
	w := &fakeWriter{}
	lock := &fakeInterlock{armed: false}
	data := []byte{0x01, 0x00}
	err := Transmit(policy(), lock, "/tmp/PULSE_A", w, data)
	require.NoError(t, err)
}
