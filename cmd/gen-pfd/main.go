// Command gen-pfd renders a waveform description to a bitstream and
// dumps it via internal/dump, without opening any byte channel, for
// offline inspection of the synthesizer's output.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/MuroAkira/Batrobot/internal/dump"
	"github.com/MuroAkira/Batrobot/internal/safety"
	"github.com/MuroAkira/Batrobot/internal/waveform"
)

func main() {
	fmMode := pflag.BoolP("fm", "m", false, "Render an exponential chirp instead of a constant-frequency carrier.")
	freqKHz := pflag.IntP("freq-khz", "f", 40, "CF carrier frequency in kHz.")
	duty := pflag.IntP("duty", "d", 10, "Duty cycle percent.")
	byteLen := pflag.IntP("bytes", "b", 1000, "Output bitstream length in bytes (CF mode).")
	fStart := pflag.Float64P("f-start-hz", "s", 95_000, "Chirp start frequency, Hz (FM mode).")
	fEnd := pflag.Float64P("f-end-hz", "e", 50_000, "Chirp end frequency, Hz (FM mode).")
	durationMs := pflag.Float64P("duration-ms", "u", 8, "Chirp duration, milliseconds (FM mode).")
	outDir := pflag.StringP("out-dir", "o", ".", "Directory to write the bitstream dump into.")
	help := pflag.BoolP("help", "h", false, "Display help text.")
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	var spec waveform.Spec
	var out []byte
	if *fmMode {
		spec = waveform.Spec{
			Mode:          waveform.FM,
			FStartHz:      *fStart,
			FEndHz:        *fEnd,
			DurationS:     *durationMs / 1000,
			FMDutyPercent: *duty,
		}
		n := int(spec.DurationS*waveform.BitClockHz) + 1
		out = make([]byte, (n+7)/8)
	} else {
		spec = waveform.Spec{
			Mode:        waveform.CF,
			FreqKHz:     *freqKHz,
			DutyPercent: *duty,
			ByteLength:  *byteLen,
		}
		out = make([]byte, *byteLen)
	}

	written := waveform.Generate(out, spec)
	if written == 0 {
		fmt.Fprintln(os.Stderr, "gen-pfd: invalid waveform parameters")
		os.Exit(1)
	}

	ones := safety.OnesRatio(out)
	run := safety.LongestRun(out)
	fmt.Printf("wrote %d bytes, ones-ratio=%.4f, longest-run=%d bits\n", written, ones, run)

	writer := dump.New(*outDir, time.Now)
	if err := writer.Bitstream(out); err != nil {
		fmt.Fprintf(os.Stderr, "gen-pfd: failed to write dump: %v\n", err)
		os.Exit(1)
	}
}
