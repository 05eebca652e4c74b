// Package queue provides the message queue subsystem initializer backed by
// NATS. The connection is made through a small Conn interface and an
// injectable connect function so unit tests can substitute a fake without a
// running server.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/GoCodeAlone/bootstrap"
)

// Queue errors
var (
	ErrNotConnected = errors.New("queue not connected")
)

// Conn is the minimal connection handle the initializer needs. *nats.Conn
// satisfies it; tests provide a fake.
type Conn interface {
	IsConnected() bool
	ConnectedUrl() string
	FlushTimeout(timeout time.Duration) error
	Close()
}

// ConnectFunc establishes a queue connection. The default wraps
// nats.Connect.
type ConnectFunc func(url string, timeout time.Duration) (Conn, error)

func natsConnect(url string, timeout time.Duration) (Conn, error) {
	opts := []nats.Option{nats.Name("bootstrap-probe")}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Driver implements bootstrap.Driver for a NATS message queue.
//
// Configuration keys: url (required, e.g. nats://localhost:4222), plus the
// shared timeout/retry envelope.
type Driver struct {
	connect ConnectFunc

	url  string
	conn Conn
}

// Option configures a Driver.
type Option func(*Driver)

// WithConnect replaces the default NATS connect function.
func WithConnect(connect ConnectFunc) Option {
	return func(d *Driver) { d.connect = connect }
}

// New creates a queue driver.
func New(opts ...Option) *Driver {
	d := &Driver{connect: natsConnect}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "queue" }

// ValidateConfig checks the connection fields and retains the server URL.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	url, err := cfg.RequireString("url", "URL")
	if err != nil {
		return err
	}
	d.url = url
	return nil
}

// Probe connects if needed and round-trips a flush to the server.
func (d *Driver) Probe(ctx context.Context) error {
	timeout := flushTimeout(ctx)
	if d.conn == nil {
		conn, err := d.connect(d.url, timeout)
		if err != nil {
			return fmt.Errorf("queue connect failed: %w", err)
		}
		d.conn = conn
	}
	if err := d.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("queue flush failed: %w", err)
	}
	return nil
}

// Setup records connection diagnostics on the status. The connection made
// by Probe is kept for the application's use via Conn().
func (d *Driver) Setup(ctx context.Context, status *bootstrap.Status) error {
	if d.conn == nil {
		if err := d.Probe(ctx); err != nil {
			return err
		}
	}
	status.AddData("url", d.url)
	status.AddData("connected_url", d.conn.ConnectedUrl())
	status.AddData("connected", true)
	return nil
}

// Recheck verifies the connection is still up and flushes.
func (d *Driver) Recheck(ctx context.Context) error {
	if d.conn == nil {
		return ErrNotConnected
	}
	if !d.conn.IsConnected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, d.url)
	}
	if err := d.conn.FlushTimeout(flushTimeout(ctx)); err != nil {
		return fmt.Errorf("queue flush failed: %w", err)
	}
	return nil
}

// Close releases the connection.
func (d *Driver) Close(_ context.Context) error {
	if d.conn == nil {
		return nil
	}
	d.conn.Close()
	d.conn = nil
	return nil
}

// Conn returns the live connection, nil before a successful Probe.
func (d *Driver) Conn() Conn { return d.conn }

// flushTimeout derives a flush deadline from the context, falling back to
// a conservative default since FlushTimeout requires a positive value.
func flushTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return remaining
		}
	}
	return 5 * time.Second
}
