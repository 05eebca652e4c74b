// Package filesystem provides the filesystem subsystem initializer: it
// verifies a working directory exists (optionally creating it) and is
// writable before dependent subsystems come up.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoCodeAlone/bootstrap"
)

// Filesystem errors
var (
	ErrNotADirectory = errors.New("path is not a directory")
)

// Driver implements bootstrap.Driver for a local directory.
//
// Configuration keys: path (required), create (bool, create the directory
// when missing), check_writable (bool, verify writes succeed during the
// probe).
type Driver struct {
	path          string
	create        bool
	checkWritable bool
}

// New creates a filesystem driver.
func New() *Driver { return &Driver{} }

// Name implements bootstrap.Driver.
func (d *Driver) Name() string { return "filesystem" }

// ValidateConfig checks and retains the directory settings.
func (d *Driver) ValidateConfig(cfg bootstrap.Config) error {
	path, err := cfg.RequireString("path", "Path")
	if err != nil {
		return err
	}
	d.path = path
	d.create = cfg.Bool("create")
	d.checkWritable = cfg.Bool("check_writable")
	return nil
}

// Probe verifies the directory exists (creating it when configured) and,
// when check_writable is set, that a file can be written and removed in it.
func (d *Driver) Probe(_ context.Context) error {
	info, err := os.Stat(d.path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADirectory, d.path)
		}
	case os.IsNotExist(err) && d.create:
		if err := os.MkdirAll(d.path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	default:
		return fmt.Errorf("failed to stat %s: %w", d.path, err)
	}

	if d.checkWritable {
		probe, err := os.CreateTemp(d.path, ".bootstrap-probe-*")
		if err != nil {
			return fmt.Errorf("directory not writable: %w", err)
		}
		name := probe.Name()
		if err := probe.Close(); err != nil {
			return fmt.Errorf("failed to close probe file: %w", err)
		}
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("failed to remove probe file: %w", err)
		}
	}
	return nil
}

// Setup records the resolved path on the status.
func (d *Driver) Setup(_ context.Context, status *bootstrap.Status) error {
	abs, err := filepath.Abs(d.path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	status.AddData("path", abs)
	status.AddData("writable_checked", d.checkWritable)
	return nil
}

// Path returns the validated directory path.
func (d *Driver) Path() string { return d.path }
