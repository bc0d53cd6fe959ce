// Package serialport implements the byte-channel capability
// (open/close/read/write/flush) over a real TTY, backed by
// github.com/pkg/term.
//
// One raw-mode opener (8 data bits, no parity, one stop bit, no flow
// control) is shared by the transmit and capture byte channels; the
// control port layers its dialog over the same Port type.
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/term"
)

// allowedBauds is the set of standard rates SetSpeed accepts.
var allowedBauds = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true,
	19200: true, 38400: true, 57600: true, 115200: true,
}

// Port wraps a raw-mode TTY handle, implementing txsink.Writer and
// capture.Reader/Flusher.
type Port struct {
	t *term.Term
}

// Open puts devicename into raw mode at baud. baud must be one of the
// standard rates in allowedBauds; 0 leaves the line's current speed
// alone.
func Open(devicename string, baud int) (*Port, error) {
	if baud != 0 && !allowedBauds[baud] {
		return nil, fmt.Errorf("serialport: unsupported baud %d", baud)
	}

	t, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", devicename, err)
	}

	if baud != 0 {
		if err := t.SetSpeed(baud); err != nil {
			t.Close()
			return nil, fmt.Errorf("serialport: set speed %d on %s: %w", baud, devicename, err)
		}
	}

	return &Port{t: t}, nil
}

// Write sends data verbatim. A short write is surfaced to the caller,
// never retried here.
func (p *Port) Write(data []byte) (int, error) {
	return p.t.Write(data)
}

// ReadTimeout attempts to fill buf, returning (0, nil) if timeout
// elapses with no data.
func (p *Port) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := p.t.SetReadTimeout(timeout); err != nil {
		return 0, fmt.Errorf("serialport: set read timeout: %w", err)
	}
	n, err := p.t.Read(buf)
	if err != nil {
		// With VTIME set a quiet line comes back as either a
		// timeout error or a zero-byte EOF, depending on platform.
		// Both mean "no data", not a hard I/O failure.
		if isTimeout(err) || err == io.EOF {
			return 0, nil
		}
		return n, fmt.Errorf("serialport: read: %w", err)
	}
	return n, nil
}

// FlushInput discards any buffered, unread input.
func (p *Port) FlushInput() error {
	return p.t.Flush()
}

// Close releases the underlying TTY handle.
func (p *Port) Close() error {
	return p.t.Close()
}

type timeouter interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	t, ok := err.(timeouter)
	return ok && t.Timeout()
}
