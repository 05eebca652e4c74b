// Package cache provides the cache subsystem initializer backed by Redis.
// Connectivity is probed with PING; unit tests run against miniredis.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/GoCodeAlone/bootstrap"
)

// Cache errors
var (
	ErrNotConnected = errors.New("cache not connected")
)

// ClientFactory builds a Redis client from resolved options. The default
// is redis.NewClient; tests may substitute their own.
type ClientFactory func(opts *redis.Options) *redis.Client

// Driver implements bootstrap.Driver for a Redis cache.
//
// Configuration keys: address (required, host:port), password, database
// (Redis DB number, >= 0), plus the shared timeout/retry envelope.
type Driver struct {
	factory ClientFactory

	opts   *redis.Options
	client *redis.Client
}

// Option configures a Driver.
type Option func(*Driver)

// WithClientFactory replaces the default redis.NewClient factory.
func WithClientFactory(factory ClientFactory) Option {
	return func(d *Driver) { d.factory = factory }
}

// New creates a cache driver.
func New(opts ...Option) *Driver {
	d := &Driver{factory: redis.NewClient}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "cache" }

// ValidateConfig checks the connection fields and retains the resolved
// Redis options.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	address, err := cfg.RequireString("address", "Address")
	if err != nil {
		return err
	}
	db := 0
	if cfg.Has("database") {
		n, ok := cfg.Int("database")
		if !ok || n < 0 {
			return errors.New("Invalid database value")
		}
		db = n
	}
	d.opts = &redis.Options{
		Addr:     address,
		Password: cfg.String("password"),
		DB:       db,
	}
	if timeout := cfg.Timeout(); timeout > 0 {
		d.opts.DialTimeout = timeout
		d.opts.ReadTimeout = timeout
		d.opts.WriteTimeout = timeout
	}
	return nil
}

// Probe creates the client if needed and pings the server.
func (d *Driver) Probe(ctx context.Context) error {
	if d.client == nil {
		d.client = d.factory(d.opts)
	}
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}
	return nil
}

// Setup records connection diagnostics on the status. The client created
// by Probe is kept for the application's use via Client().
func (d *Driver) Setup(ctx context.Context, status *bootstrap.Status) error {
	if d.client == nil {
		if err := d.Probe(ctx); err != nil {
			return err
		}
	}
	status.AddData("address", d.opts.Addr)
	status.AddData("database", d.opts.DB)
	status.AddData("connected", true)
	return nil
}

// Recheck pings over the live client.
func (d *Driver) Recheck(ctx context.Context) error {
	if d.client == nil {
		return ErrNotConnected
	}
	if err := d.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache ping failed: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (d *Driver) Close(_ context.Context) error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	if err != nil {
		return fmt.Errorf("failed to close cache client: %w", err)
	}
	return nil
}

// Client returns the live Redis client, nil before a successful Probe.
func (d *Driver) Client() *redis.Client { return d.client }
