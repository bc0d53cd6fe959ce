// Package discovery announces a running coordinator's control endpoint
// over mDNS/DNS-SD so a lab dashboard can find it without a hardcoded
// host.
//
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

// ServiceType is the DNS-SD service type announced for the control
// endpoint.
const ServiceType = "_batrobot-ctrl._tcp"

// DefaultName is used when the configuration leaves the service
// instance name blank.
const DefaultName = "batrobot"

// DefaultPort is announced when the caller has no listening control
// socket of its own.
const DefaultPort = 8770

// Advertise announces name (DefaultName if empty) on port over mDNS
// and returns an io.Closer-shaped handle; Close stops the background
// responder goroutine. The responder runs entirely outside the
// coordinator's state machine.
func Advertise(ctx context.Context, name string, port int) (*Handle, error) {
	if name == "" {
		name = DefaultName
	}

	cfg := dnssd.Config{
		Name: name,
		Type: ServiceType,
		Port: port,
	}

	sv, err := dnssd.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("discovery: create responder: %w", err)
	}

	if _, err := rp.Add(sv); err != nil {
		return nil, fmt.Errorf("discovery: add service: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- rp.Respond(runCtx)
	}()

	return &Handle{cancel: cancel, errCh: errCh}, nil
}

// Handle owns a background DNS-SD responder goroutine.
type Handle struct {
	cancel context.CancelFunc
	errCh  chan error
}

// Close stops the responder and waits for its goroutine to exit,
// returning any error it reported other than context cancellation.
func (h *Handle) Close() error {
	h.cancel()
	err := <-h.errCh
	if err == context.Canceled {
		return nil
	}
	return err
}
