// Package network provides the network subsystem initializer: a TCP reach-
// ability probe against a configured host and port, with an injectable
// dialer for tests.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/GoCodeAlone/bootstrap"
)

// DialFunc opens a connection for the probe. The default is a
// net.Dialer's DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Driver implements bootstrap.Driver for TCP reachability.
//
// Configuration keys: host (required), port (required, 1-65535), plus the
// shared timeout/retry envelope.
type Driver struct {
	dial DialFunc

	address string
}

// Option configures a Driver.
type Option func(*Driver)

// WithDialer replaces the default dialer.
func WithDialer(dial DialFunc) Option {
	return func(d *Driver) { d.dial = dial }
}

// New creates a network driver.
func New(opts ...Option) *Driver {
	d := &Driver{dial: (&net.Dialer{}).DialContext}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "network" }

// ValidateConfig checks host and port and retains the dial address.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	host, err := cfg.RequireString("host", "Host")
	if err != nil {
		return err
	}
	port, ok := cfg.Int("port")
	if !ok || port < 1 || port > 65535 {
		return errors.New("Invalid port value")
	}
	d.address = net.JoinHostPort(host, fmt.Sprintf("%d", port))
	return nil
}

// Probe dials the address and closes the connection.
func (d *Driver) Probe(ctx context.Context) error {
	conn, err := d.dial(ctx, "tcp", d.address)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", d.address, err)
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close probe connection: %w", err)
	}
	return nil
}

// Setup records the probed address on the status.
func (d *Driver) Setup(_ context.Context, status *bootstrap.Status) error {
	status.AddData("address", d.address)
	status.AddData("reachable", true)
	return nil
}

// Address returns the validated host:port pair.
func (d *Driver) Address() string { return d.address }
