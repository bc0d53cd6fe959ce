// Package txsink streams a validated bitstream to a transmit
// destination, running it through the safety gate on every call. A
// short write is a failure, never retried.
package txsink

import (
	"fmt"

	"github.com/MuroAkira/Batrobot/internal/safety"
)

// Writer is the write half of the byte-channel capability.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// Interlock gates whether dest may be armed for a live transmit. It is
// consulted only for destinations that are not matched by the safety
// policy's TestTxPrefix. See internal/arminterlock for the
// GPIO-backed implementation and a no-op stand-in for tests.
type Interlock interface {
	Armed(dest string) (bool, error)
}

// InterlockNotArmedError is returned when a live-hardware destination
// is attempted without its interlock asserted.
type InterlockNotArmedError struct {
	Dest string
}

func (e *InterlockNotArmedError) Error() string {
	return fmt.Sprintf("txsink: interlock not armed for %s", e.Dest)
}

// ShortWriteError reports that fewer bytes reached the destination
// than were handed to Transmit.
type ShortWriteError struct {
	Wrote, Want int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("txsink: short write: wrote %d of %d bytes", e.Wrote, e.Want)
}

// Transmit re-evaluates the safety gate against policy, consults
// interlock for live-hardware destinations, and on success writes the
// full bitstream to dest. interlock may be nil, which behaves as
// always-armed (suitable for virtual test destinations).
func Transmit(policy safety.Policy, interlock Interlock, dest string, w Writer, data []byte) error {
	if err := safety.Check(policy, dest, data); err != nil {
		return err
	}

	if interlock != nil && !safety.IsTestDestination(policy, dest) {
		armed, err := interlock.Armed(dest)
		if err != nil {
			return err
		}
		if !armed {
			return &InterlockNotArmedError{Dest: dest}
		}
	}

	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return &ShortWriteError{Wrote: n, Want: len(data)}
	}
	return nil
}
