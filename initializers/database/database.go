// Package database provides the database subsystem initializer. It probes
// connectivity over database/sql with an injectable connector so unit tests
// can substitute an in-memory driver for a real server.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GoCodeAlone/bootstrap"
)

// Database errors
var (
	ErrNotConnected = errors.New("database not connected")
)

// Connector opens a database handle for the given driver name and DSN.
// The default is sql.Open; tests substitute their own.
type Connector func(driverName, dsn string) (*sql.DB, error)

// Driver implements bootstrap.Driver for relational databases.
//
// Configuration keys: driver (required), dsn or host (one required), port,
// database, username, password, plus the shared timeout/retry envelope.
type Driver struct {
	connector Connector

	driverName string
	dsn        string
	db         *sql.DB
}

// Option configures a Driver.
type Option func(*Driver)

// WithConnector replaces the default sql.Open connector.
func WithConnector(connector Connector) Option {
	return func(d *Driver) { d.connector = connector }
}

// New creates a database driver.
func New(opts ...Option) *Driver {
	d := &Driver{connector: sql.Open}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "database" }

// ValidateConfig checks the connection fields and retains the driver name
// and DSN. Without an explicit dsn key the DSN is assembled from
// host/port/database/username/password.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	driverName, err := cfg.RequireString("driver", "Driver")
	if err != nil {
		return err
	}

	dsn := cfg.String("dsn")
	if dsn == "" {
		host, err := cfg.RequireString("host", "Host")
		if err != nil {
			return err
		}
		port := 0
		if cfg.Has("port") {
			p, ok := cfg.Int("port")
			if !ok || p < 1 || p > 65535 {
				return errors.New("Invalid port value")
			}
			port = p
		}
		dsn = buildDSN(host, port, cfg.String("database"), cfg.String("username"), cfg.String("password"))
	}

	d.driverName = driverName
	d.dsn = dsn
	return nil
}

// Probe opens the handle if needed and pings the server.
func (d *Driver) Probe(ctx context.Context) error {
	if d.db == nil {
		db, err := d.connector(d.driverName, d.dsn)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		d.db = db
	}
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Setup records connection diagnostics on the status. The handle opened by
// Probe is kept for the application's use via DB().
func (d *Driver) Setup(ctx context.Context, status *bootstrap.Status) error {
	if d.db == nil {
		if err := d.Probe(ctx); err != nil {
			return err
		}
	}
	status.AddData("driver", d.driverName)
	status.AddData("max_open_connections", d.db.Stats().MaxOpenConnections)
	status.AddData("connected", true)
	return nil
}

// Recheck pings over the live handle.
func (d *Driver) Recheck(ctx context.Context) error {
	if d.db == nil {
		return ErrNotConnected
	}
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (d *Driver) Close(_ context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// DB returns the live handle, nil before a successful Probe.
func (d *Driver) DB() *sql.DB { return d.db }

func buildDSN(host string, port int, database, username, password string) string {
	addr := host
	if port > 0 {
		addr = fmt.Sprintf("%s:%d", host, port)
	}
	dsn := addr
	if database != "" {
		dsn = fmt.Sprintf("%s/%s", dsn, database)
	}
	if username != "" {
		cred := username
		if password != "" {
			cred = fmt.Sprintf("%s:%s", username, password)
		}
		dsn = fmt.Sprintf("%s@%s", cred, dsn)
	}
	return dsn
}
