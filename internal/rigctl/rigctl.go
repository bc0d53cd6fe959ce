// Package rigctl mirrors the control port's "set gain" command onto a
// Hamlib-compatible rig/amplifier, for deployments where gain is
// better driven through a standard rig-control backend than the
// bespoke serial dialog in internal/ctrlport.
package rigctl

import (
	"fmt"

	"github.com/xylo04/goHamlib"
)

// Rig is an open Hamlib rig handle used only for gain control.
type Rig struct {
	r *goHamlib.Rig
}

// Open opens the rig identified by model (a Hamlib model number) on
// the given serial device at baud.
func Open(model int, port string, baud int) (*Rig, error) {
	r := &goHamlib.Rig{}
	if err := r.Init(model); err != nil {
		return nil, fmt.Errorf("rigctl: init model %d: %w", model, err)
	}
	p := goHamlib.Port{
		RigPortType: goHamlib.RigPortSerial,
		Portname:    port,
		Baudrate:    baud,
		Databits:    8,
		Stopbits:    1,
		Parity:      goHamlib.ParityNone,
		Handshake:   goHamlib.HandshakeNone,
	}
	if err := r.SetPort(p); err != nil {
		return nil, fmt.Errorf("rigctl: set port %s: %w", port, err)
	}
	if err := r.Open(); err != nil {
		return nil, fmt.Errorf("rigctl: open %s: %w", port, err)
	}
	return &Rig{r: r}, nil
}

// Gain mirrors internal/ctrlport.Port.SetGain onto the rig's AF gain
// level, expressed as Hamlib's [0.0, 1.0] normalized level value.
func (g *Rig) Gain(percent uint32) error {
	if percent > 100 {
		percent = 100
	}
	normalized := float32(percent) / 100
	if err := g.r.SetLevel(goHamlib.VfoCurr, goHamlib.LevelAF, normalized); err != nil {
		return fmt.Errorf("rigctl: set AF level: %w", err)
	}
	return nil
}

// Close releases the rig handle.
func (g *Rig) Close() error {
	return g.r.Close()
}
