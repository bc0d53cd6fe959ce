// Package dump writes the three artifacts worth keeping from a run (the
// emitted bitstream, the raw stereo capture, and the computed
// envelope) to time-stamped files under a base directory. Each run
// gets fresh file names; no handle is kept open across runs.
package dump

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/lestrrat-go/strftime"
)

// DefaultLayout stamps names down to second resolution, so dumps of
// the same kind written at least a second apart get distinct names;
// two written within the same second share a name and the later one
// overwrites the earlier.
const DefaultLayout = "%Y%m%d-%H%M%S"

// Writer dumps artifacts beneath Dir, naming each file by formatting
// Layout (an strftime pattern) against the time Now returns, with a
// fixed suffix identifying the artifact kind. A zero-value Writer with
// an empty Dir is valid and every method becomes a no-op, so dumping
// is disabled simply by leaving the directory unset.
type Writer struct {
	Dir    string
	Layout string
	Now    func() time.Time
}

// New builds a Writer rooted at dir using DefaultLayout and the
// supplied clock. now is required so callers (and tests) control
// the timestamp deterministically; production wiring passes time.Now.
func New(dir string, now func() time.Time) *Writer {
	return &Writer{Dir: dir, Layout: DefaultLayout, Now: now}
}

func (w *Writer) enabled() bool {
	return w != nil && w.Dir != ""
}

func (w *Writer) stamp() (string, error) {
	layout := w.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}
	s, err := strftime.Format(layout, now())
	if err != nil {
		return "", fmt.Errorf("dump: bad layout %q: %w", layout, err)
	}
	return s, nil
}

func (w *Writer) path(kind, ext string) (string, error) {
	stamp, err := w.stamp()
	if err != nil {
		return "", err
	}
	return filepath.Join(w.Dir, fmt.Sprintf("%s-%s.%s", stamp, kind, ext)), nil
}

// Bitstream writes the raw emitted bitstream verbatim.
func (w *Writer) Bitstream(data []byte) error {
	if !w.enabled() {
		return nil
	}
	path, err := w.path("bitstream", "bin")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Capture writes the raw, undecoded stereo capture buffer verbatim.
func (w *Writer) Capture(data []byte) error {
	if !w.enabled() {
		return nil
	}
	path, err := w.path("capture", "bin")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Envelope writes env as a newline-separated text dump, one value per
// line rendered in decimal.
func (w *Writer) Envelope(env []float32) error {
	if !w.enabled() {
		return nil
	}
	path, err := w.path("envelope", "txt")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: create %s: %w", path, err)
	}
	defer f.Close()
	for _, v := range env {
		if _, err := fmt.Fprintf(f, "%g\n", v); err != nil {
			return fmt.Errorf("dump: write %s: %w", path, err)
		}
	}
	return nil
}

// EnvelopeBinary writes env as raw little-endian float32 values, for
// callers that prefer a compact binary dump over Envelope's text form.
func (w *Writer) EnvelopeBinary(env []float32) error {
	if !w.enabled() {
		return nil
	}
	path, err := w.path("envelope", "f32")
	if err != nil {
		return err
	}
	buf := make([]byte, 4*len(env))
	for i, v := range env {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return os.WriteFile(path, buf, 0o644)
}
