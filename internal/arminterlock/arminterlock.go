// Package arminterlock implements the hardware precondition that must
// hold before a live-hardware transmit destination may be armed: a
// GPIO line read as logic-high.
//
// A physical switch on a GPIO line replaces the older
// THERMOPHONE_ARM=YES environment check: arming survives a process
// restart and can't be exported into a child environment by accident.
// The line is read through the character-device interface
// (github.com/warthog618/go-gpiocdev), not sysfs.
package arminterlock

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// line is the subset of *gpiocdev.Line this package consults, broken
// out so tests can substitute a mock without real GPIO hardware or the
// gpio-sim kernel module.
type line interface {
	Value() (int, error)
	Close() error
}

// GPIOLine gates a live transmit on a single character-device GPIO
// line read as active-high. It satisfies internal/txsink.Interlock.
type GPIOLine struct {
	line line
}

// Open requests chip/offset as an input line and returns an Interlock
// backed by it. The caller owns the returned GPIOLine and must Close
// it when done; failing to do so leaks the underlying character
// device handle.
func Open(chip string, offset int) (*GPIOLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("arminterlock: request %s:%d: %w", chip, offset, err)
	}
	return &GPIOLine{line: l}, nil
}

// Armed reports whether the GPIO line currently reads logic-high. dest
// is accepted only to satisfy internal/txsink.Interlock's signature;
// this implementation gates every destination identically regardless
// of which one is named.
func (g *GPIOLine) Armed(dest string) (bool, error) {
	v, err := g.line.Value()
	if err != nil {
		return false, fmt.Errorf("arminterlock: read line: %w", err)
	}
	return v == 1, nil
}

// Close releases the underlying character-device handle.
func (g *GPIOLine) Close() error {
	return g.line.Close()
}

// AlwaysArmed is a no-op Interlock used for virtual/test destinations
// and in tests, where no physical switch exists to consult.
type AlwaysArmed struct{}

// Armed always reports true.
func (AlwaysArmed) Armed(dest string) (bool, error) { return true, nil }
