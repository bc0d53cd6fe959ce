// Package reference synthesizes the continuous-time waveform the
// receiver actually observes acoustically: a sine (CF) or
// exponential chirp (FM) sampled at the ADC rate, as opposed to
// waveform.Generate's bit-packed PWM surrogate used to drive the
// transmitter.
//
// The receiver sees the band-limited acoustic output, so the matched
// filter correlates against a sine rather than the raw PWM pattern.
// The chirp phase formula mirrors internal/waveform's chirpCycles,
// expressed here in continuous phase (radians) rather than cycle-count
// form.
package reference

import "math"

// CF fills out with a unit-amplitude sine at freqHz sampled at fsHz,
// for n in [0, len(out)).
func CF(out []float32, freqHz, fsHz float64) {
	for n := range out {
		t := float64(n) / fsHz
		out[n] = float32(math.Sin(2 * math.Pi * freqHz * t))
	}
}

// FM fills out with a unit-amplitude exponential chirp from fStartHz
// to fEndHz over durationS seconds, sampled at fsHz, zero beyond
// durationS.
func FM(out []float32, fStartHz, fEndHz, durationS, fsHz float64) {
	ratio := fEndHz / fStartHz
	for n := range out {
		t := float64(n) / fsHz
		if t >= durationS {
			out[n] = 0
			continue
		}
		phase := chirpPhase(fStartHz, durationS, ratio, t)
		out[n] = float32(math.Sin(phase))
	}
}

// chirpPhase returns phi(t) in radians for the exponential chirp,
// degenerating to a fixed-frequency sine's phase when ratio == 1.
func chirpPhase(fStartHz, durationS, ratio, t float64) float64 {
	if ratio == 1 {
		return 2 * math.Pi * fStartHz * t
	}
	lnRatio := math.Log(ratio)
	return 2 * math.Pi * (fStartHz * durationS / lnRatio) * (math.Pow(ratio, t/durationS) - 1)
}
