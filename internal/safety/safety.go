// Package safety implements the pure-function gate every bitstream
// must pass before it reaches a transmit destination: a destination
// allow-list check, a length cap, a duty-cycle cap, and a maximum
// consecutive-ones run-length cap.
//
// The gate is stateless and re-evaluated on every call; nothing here
// caches a previously validated bitstream. The caps and allow-lists
// come in through an injected Policy record so tests can exercise
// boundary cases without touching build-time constants.
package safety

import (
	"fmt"
	"strings"
)

// Reason tags why the gate rejected a bitstream.
type Reason string

const (
	ReasonDestination Reason = "destination"
	ReasonLength      Reason = "length"
	ReasonDuty        Reason = "duty"
	ReasonRunLength   Reason = "runlength"
)

// Policy is the injected set of safety caps and allow-lists. There is
// no global safety state; every field here must be supplied by the
// caller (typically loaded from config.Config).
type Policy struct {
	DutyMaxPercent int
	MaxRunBits     int
	MaxTxBytes     int
	AllowedTxPaths []string
	TestTxPrefix   string
}

// RejectError reports why the gate refused a bitstream.
type RejectError struct {
	Reason Reason
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("safety: rejected (%s)", e.Reason)
}

// IsTestDestination reports whether dest is a virtual test path under
// policy's prefix, which always passes the destination check
// regardless of AllowedTxPaths.
func IsTestDestination(policy Policy, dest string) bool {
	return policy.TestTxPrefix != "" && strings.HasPrefix(dest, policy.TestTxPrefix)
}

func destinationAllowed(policy Policy, dest string) bool {
	if IsTestDestination(policy, dest) {
		return true
	}
	for _, allowed := range policy.AllowedTxPaths {
		if dest == allowed {
			return true
		}
	}
	return false
}

// OnesRatio returns the fraction of set bits across all 8*len(data)
// bits of data.
func OnesRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	return float64(countOnes(data)) / float64(len(data)*8)
}

func countOnes(data []byte) int {
	var ones int
	for _, b := range data {
		for k := uint(0); k < 8; k++ {
			ones += int(b >> k & 1)
		}
	}
	return ones
}

// LongestRun returns the length of the longest run of consecutive
// 1-bits in data, walking bits LSB-first within each byte and bytes in
// order, matching the bitstream's temporal bit ordering.
func LongestRun(data []byte) int {
	var longest, current int
	for _, b := range data {
		for k := uint(0); k < 8; k++ {
			if b>>k&1 == 1 {
				current++
				if current > longest {
					longest = current
				}
			} else {
				current = 0
			}
		}
	}
	return longest
}

// Check runs every gate in order (destination, length, duty,
// run-length) and returns a *RejectError for the first one that fires,
// or nil if the bitstream may proceed to transmission.
func Check(policy Policy, dest string, data []byte) error {
	if !destinationAllowed(policy, dest) {
		return &RejectError{Reason: ReasonDestination}
	}
	if len(data) > policy.MaxTxBytes {
		return &RejectError{Reason: ReasonLength}
	}
	dutyMax := float64(policy.DutyMaxPercent) / 100
	if OnesRatio(data) >= dutyMax {
		return &RejectError{Reason: ReasonDuty}
	}
	if LongestRun(data) >= policy.MaxRunBits {
		return &RejectError{Reason: ReasonRunLength}
	}
	return nil
}
