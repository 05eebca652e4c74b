package feeders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GoCodeAlone/bootstrap"
)

// JSONFeeder reads configuration envelopes from a JSON file.
type JSONFeeder struct {
	Path string
}

// NewJSONFeeder creates a JSONFeeder reading from the specified file.
func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{Path: filePath}
}

// Feed reads the whole JSON file into target.
func (f JSONFeeder) Feed(target *bootstrap.Config) error {
	all, err := f.load()
	if err != nil {
		return err
	}
	merge(target, all)
	return nil
}

// FeedSection extracts one top-level key of the JSON file into target.
// A missing key leaves target untouched.
func (f JSONFeeder) FeedSection(section string, target *bootstrap.Config) error {
	all, err := f.load()
	if err != nil {
		return err
	}
	value, exists := all[section]
	if !exists {
		return nil
	}
	sectionMap, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: section %q is not an object", ErrMalformedSection, section)
	}
	merge(target, sectionMap)
	return nil
}

func (f JSONFeeder) load() (map[string]any, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return all, nil
}
