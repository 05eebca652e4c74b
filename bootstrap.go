// Package bootstrap provides a dependency-aware initialization framework for Go.
// It brings up a set of named subsystems (database, cache, queue, filesystem,
// network, external API clients) in a safe order, validates their configuration,
// probes connectivity with retry policy, records structured status and
// performance data, and detects dependency cycles before they can deadlock a
// bring-up sequence.
//
// Subsystems are described by a Driver, wrapped in an Initializer that adds
// timing, status transitions and error capture, and registered with a
// StateManager together with the names of the subsystems they depend on.
//
// Basic usage:
//
//	mgr := bootstrap.NewStateManager(logger)
//	mgr.Register("filesystem", fsInit)
//	mgr.Register("cache", cacheInit, "filesystem")
//	if err := mgr.InitializeAll(ctx); err != nil {
//		log.Fatal(err)
//	}
package bootstrap

import "context"

// Driver is the subsystem-specific hook set every concrete initializer
// supplies. The Initializer template wraps each hook with measurement,
// status transitions and error capture; drivers only implement the actual
// I/O against their subsystem.
type Driver interface {
	// Name returns the subsystem identifier used for status reporting,
	// measurements and error records.
	//
	// Example: "database", "cache", "queue"
	Name() string

	// ValidateConfig checks the supplied configuration and retains it for
	// later use by Probe and Setup. It returns an error naming the missing
	// or invalid field ("host cannot be empty", "invalid port value").
	// Validation must not perform any I/O.
	ValidateConfig(cfg Config) error

	// Probe tests connectivity to the underlying subsystem. It is invoked
	// by Initializer.TestConnection, possibly several times when retry is
	// configured, and must be safe to call repeatedly.
	Probe(ctx context.Context) error

	// Setup performs the real initialization work. Drivers record any
	// useful diagnostics on the supplied status via AddData as a side
	// effect of that work.
	Setup(ctx context.Context, status *Status) error
}

// Recheckable is an optional interface for drivers that hold a live handle
// after Setup and can be re-probed cheaply. The ConnectionRechecker uses it
// when present, falling back to Probe otherwise.
type Recheckable interface {
	Recheck(ctx context.Context) error
}

// Closer is an optional interface for drivers that hold resources which
// should be released when the framework is reset or torn down.
type Closer interface {
	Close(ctx context.Context) error
}
