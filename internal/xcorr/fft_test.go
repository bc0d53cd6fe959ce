package xcorr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// naiveDFT computes the O(N^2) definition directly, for checking fft
// against ground truth on small sizes.
func naiveDFT(a []complex64, invert bool) []complex64 {
	n := len(a)
	out := make([]complex64, n)
	sign := -1.0
	if invert {
		sign = 1.0
	}
	for k := 0; k < n; k++ {
		var sum complex128
		for t := 0; t < n; t++ {
			angle := sign * 2 * math.Pi * float64(k) * float64(t) / float64(n)
			w := complex(math.Cos(angle), math.Sin(angle))
			sum += complex128(a[t]) * w
		}
		out[k] = complex64(sum)
	}
	return out
}

func TestFFT_MatchesNaiveDFT(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		logN := rapid.IntRange(1, 7).Draw(rt, "logN")
		n := 1 << logN
		invert := rapid.Bool().Draw(rt, "invert")

		a := make([]complex64, n)
		for i := range a {
			re := rapid.Float64Range(-1, 1).Draw(rt, "re")
			im := rapid.Float64Range(-1, 1).Draw(rt, "im")
			a[i] = complex(float32(re), float32(im))
		}

		want := naiveDFT(a, invert)
		got := make([]complex64, n)
		copy(got, a)
		fft(got, invert)

		for i := range got {
			assert.InDelta(rt, real(want[i]), real(got[i]), 1e-2)
			assert.InDelta(rt, imag(want[i]), imag(got[i]), 1e-2)
		}
	})
}

func TestFFT_ForwardThenInverseRecoversScaledInput(t *testing.T) {
	n := 64
	a := make([]complex64, n)
	for i := range a {
		a[i] = complex(float32(i%7)-3, 0)
	}
	orig := make([]complex64, n)
	copy(orig, a)

	fft(a, false)
	fft(a, true)

	for i := range a {
		assert.InDelta(t, float64(real(orig[i]))*float64(n), float64(real(a[i])), 1e-1)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, isPowerOfTwo(1))
	assert.True(t, isPowerOfTwo(2))
	assert.True(t, isPowerOfTwo(1024))
	assert.False(t, isPowerOfTwo(0))
	assert.False(t, isPowerOfTwo(3))
	assert.False(t, isPowerOfTwo(-4))
}
