package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/GoCodeAlone/bootstrap"
)

// TomlFeeder reads configuration envelopes from a TOML file.
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a TomlFeeder reading from the specified file.
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed reads the whole TOML file into target.
func (f TomlFeeder) Feed(target *bootstrap.Config) error {
	var all map[string]any
	if _, err := toml.DecodeFile(f.Path, &all); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	merge(target, all)
	return nil
}

// FeedSection extracts one top-level table of the TOML file into target.
// A missing table leaves target untouched.
func (f TomlFeeder) FeedSection(section string, target *bootstrap.Config) error {
	var all map[string]any
	if _, err := toml.DecodeFile(f.Path, &all); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	value, exists := all[section]
	if !exists {
		return nil
	}
	sectionMap, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: section %q is not a table", ErrMalformedSection, section)
	}
	merge(target, sectionMap)
	return nil
}
