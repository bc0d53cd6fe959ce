// Package xcorr implements the matched-filter / Hilbert-envelope
// cross-correlation engine: given a stored reference spectrum and a
// receive-channel time series, it produces the analytic-signal
// envelope used by internal/resolver to locate the arrival peak.
//
// The Hilbert pair is built by hand in the frequency domain (multiply
// by -j*sgn(k)) rather than by a second forward transform of the
// matched-filter output, so each run costs one forward and two inverse
// transforms. A symmetric band-reject around DC suppresses
// low-frequency coupling noise while preserving the Hermitian symmetry
// of real inputs.
package xcorr

import (
	"fmt"
	"math"
)

// Context holds one xcorr engine's precomputed state. It is
// constructed once per (N, Fs, hpf) triple; the reference spectrum is
// replaced whenever the emitted waveform changes. Not safe for
// concurrent use.
type Context struct {
	n      int
	fsHz   float64
	hpfBin int

	ref []complex64 // stored reference spectrum R[k]

	// Scratch, reused across RunEnvelope calls to avoid per-call
	// allocation.
	recFreq []complex64
	mixed   []complex64
	hilbert []complex64
}

// NewContext validates (n, fsHz, hpfHz) and allocates a Context. n
// must be a power of two (a requirement of the FFT in fft.go). hpfHz
// is clamped into [0, fsHz/2] before computing the cutoff bin.
func NewContext(n int, fsHz, hpfHz float64) (*Context, error) {
	if !isPowerOfTwo(n) {
		return nil, fmt.Errorf("xcorr: N must be a power of two, got %d", n)
	}
	if fsHz <= 0 {
		return nil, fmt.Errorf("xcorr: Fs must be positive, got %g", fsHz)
	}
	if hpfHz < 0 {
		hpfHz = 0
	}
	if hpfHz > fsHz/2 {
		hpfHz = fsHz / 2
	}

	hpfBin := int(math.Ceil(hpfHz * float64(n) / fsHz))
	if hpfBin < 0 {
		hpfBin = 0
	}
	if hpfBin > n/2 {
		hpfBin = n / 2
	}

	return &Context{
		n:       n,
		fsHz:    fsHz,
		hpfBin:  hpfBin,
		ref:     make([]complex64, n),
		recFreq: make([]complex64, n),
		mixed:   make([]complex64, n),
		hilbert: make([]complex64, n),
	}, nil
}

// N reports the transform length this Context was built for.
func (c *Context) N() int { return c.n }

// SetReference replaces the stored reference spectrum with the
// forward transform of refTime (real, length N, zero-padded
// imaginary).
func (c *Context) SetReference(refTime []float32) error {
	if len(refTime) != c.n {
		return fmt.Errorf("xcorr: reference length %d does not match N=%d", len(refTime), c.n)
	}
	for i, v := range refTime {
		c.ref[i] = complex(v, 0)
	}
	fft(c.ref, false)
	return nil
}

// RunEnvelope computes the analytic-signal envelope of recTime (real,
// length N) against the stored reference spectrum: forward transform,
// symmetric band-reject plus matched filter, Hilbert pair
// construction, then magnitude extraction with a single deferred
// division by N.
func (c *Context) RunEnvelope(recTime []float32) ([]float32, error) {
	if len(recTime) != c.n {
		return nil, fmt.Errorf("xcorr: receive length %d does not match N=%d", len(recTime), c.n)
	}

	for i, v := range recTime {
		c.recFreq[i] = complex(v, 0)
	}
	fft(c.recFreq, false)

	n := c.n
	for k := 0; k < n; k++ {
		pass := k >= c.hpfBin && k <= n-c.hpfBin
		var y complex64
		if pass {
			y = c.recFreq[k]
		}
		m := conj(c.ref[k]) * y
		c.mixed[k] = m
		if k <= n/2 {
			c.hilbert[k] = complex(imag(m), -real(m)) // -j*m
		} else {
			c.hilbert[k] = complex(-imag(m), real(m)) // +j*m
		}
	}

	fft(c.mixed, true)
	fft(c.hilbert, true)

	env := make([]float32, n)
	invN := float32(1) / float32(n)
	for i := 0; i < n; i++ {
		iv := real(c.mixed[i]) * invN
		qv := real(c.hilbert[i]) * invN
		env[i] = float32(math.Sqrt(float64(iv)*float64(iv) + float64(qv)*float64(qv)))
	}
	return env, nil
}

// conj returns the complex conjugate of z. complex64 has no builtin
// conjugate operator.
func conj(z complex64) complex64 {
	return complex(real(z), -imag(z))
}
