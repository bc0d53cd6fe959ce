// Package soundcapture records a stereo capture through the host's
// sound hardware instead of the serial ADC, for bench experiments
// with ordinary microphones. Sound-card rates top out far below the
// serial ADC's 1 MHz, so this path only suits scaled-down experiments
// in the audible band.
package soundcapture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Capture records n stereo frames at fsHz from the default input
// device and returns the deinterleaved left and right channels.
//
// PortAudio is initialised and torn down per call; the coordinator
// runs one capture at a time, so there is nothing to gain from
// keeping the library resident between runs.
func Capture(n int, fsHz float64) (l, r []float32, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("soundcapture: frame count must be positive, got %d", n)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("soundcapture: initialize: %w", err)
	}
	defer portaudio.Terminate()

	const framesPerBuffer = 512
	in := make([]float32, 2*framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(2, 0, fsHz, framesPerBuffer, in)
	if err != nil {
		return nil, nil, fmt.Errorf("soundcapture: open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, nil, fmt.Errorf("soundcapture: start: %w", err)
	}
	defer stream.Stop()

	interleaved := make([]float32, 0, 2*n)
	for len(interleaved) < 2*n {
		if err := stream.Read(); err != nil {
			return nil, nil, fmt.Errorf("soundcapture: read: %w", err)
		}
		interleaved = append(interleaved, in...)
	}

	l, r = Deinterleave(interleaved[:2*n])
	return l, r, nil
}

// Deinterleave splits an interleaved L R L R ... frame sequence into
// separate channels. An odd trailing sample is dropped.
func Deinterleave(interleaved []float32) (l, r []float32) {
	frames := len(interleaved) / 2
	l = make([]float32, frames)
	r = make([]float32, frames)
	for i := 0; i < frames; i++ {
		l[i] = interleaved[2*i]
		r[i] = interleaved[2*i+1]
	}
	return l, r
}
