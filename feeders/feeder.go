// Package feeders provides configuration feeders for the bootstrap
// framework: each feeder reads one source (YAML, TOML, JSON files, the
// process environment) and populates a bootstrap.Config envelope, either
// whole-file or per named section.
package feeders

import "github.com/GoCodeAlone/bootstrap"

// Feeder populates a configuration envelope from one source.
type Feeder interface {
	// Feed reads the whole source into target.
	Feed(target *bootstrap.Config) error
}

// SectionFeeder extends Feeder with per-section extraction, used when one
// file carries the configuration of several initializers keyed by name.
type SectionFeeder interface {
	Feeder

	// FeedSection extracts the named top-level section into target. A
	// missing section leaves target untouched and returns nil.
	FeedSection(section string, target *bootstrap.Config) error
}
