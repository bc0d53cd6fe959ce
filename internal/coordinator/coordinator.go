// Package coordinator arms a capture source, spawns a goroutine to
// drive it, fires the transmit path on the calling goroutine, and
// joins the capture worker, preserving the ordering guarantee
// "capture spawn precedes transmit write precedes capture join" and
// the state machine IDLE -> ARMED -> TRANSMITTED -> JOINED -> DECODED.
//
// Exactly two goroutines are active during a capture: the caller,
// driving transmit, and the spawned reader. They share no mutable
// state; the reader owns the capture buffer until the join. There is
// no cancellation at this layer; a reader blocked in a timed read
// runs to its timeout.
package coordinator

import (
	"time"

	"github.com/MuroAkira/Batrobot/internal/capture"
	"github.com/MuroAkira/Batrobot/internal/safety"
	"github.com/MuroAkira/Batrobot/internal/txsink"
)

// State names the coordinator's position in its lifecycle.
type State int

const (
	Idle State = iota
	Armed
	Transmitted
	Joined
	Decoded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Transmitted:
		return "transmitted"
	case Joined:
		return "joined"
	case Decoded:
		return "decoded"
	default:
		return "unknown"
	}
}

// Timeouts bundles the capture source's activity-based read budgets.
type Timeouts struct {
	Start time.Duration
	Idle  time.Duration
}

// Run executes one arm/transmit/capture/join cycle.
//
//   - reader is armed (flushed, if it supports Flusher) and then read
//     from in a spawned goroutine, filling buf.
//   - policy, interlock, dest, writer, and txData drive the transmit
//     path on the calling goroutine, concurrently with the capture
//     goroutine.
//   - Run always joins the capture goroutine before returning, even if
//     transmit fails, so no worker is ever leaked.
//
// The returned State reflects how far the cycle progressed: Joined if
// capture completed (fully or partially) but transmit failed first,
// Decoded once both transmit succeeded and capture result is attached.
func Run(
	reader capture.Reader,
	buf []byte,
	timeouts Timeouts,
	policy safety.Policy,
	interlock txsink.Interlock,
	dest string,
	writer txsink.Writer,
	txData []byte,
) (State, capture.Result, error) {
	if flusher, ok := reader.(capture.Flusher); ok {
		if err := flusher.FlushInput(); err != nil {
			return Idle, capture.Result{}, err
		}
	}

	resultCh := make(chan capture.Result, 1)
	go func() {
		resultCh <- capture.ReadExact(reader, buf, timeouts.Start, timeouts.Idle)
	}()
	state := Armed

	txErr := txsink.Transmit(policy, interlock, dest, writer, txData)
	if txErr == nil {
		state = Transmitted
	}

	captureResult := <-resultCh
	state = Joined

	if txErr != nil {
		return state, captureResult, txErr
	}
	if captureResult.Err != nil {
		return state, captureResult, captureResult.Err
	}

	state = Decoded
	return state, captureResult, nil
}
