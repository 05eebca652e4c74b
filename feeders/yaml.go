package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/bootstrap"
)

// YamlFeeder reads configuration envelopes from a YAML file.
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a YamlFeeder reading from the specified file.
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed reads the whole YAML file into target.
func (f YamlFeeder) Feed(target *bootstrap.Config) error {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	var all map[string]any
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	merge(target, all)
	return nil
}

// FeedSection extracts one top-level key of the YAML file into target.
// A missing key leaves target untouched.
func (f YamlFeeder) FeedSection(section string, target *bootstrap.Config) error {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	var all map[string]any
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	value, exists := all[section]
	if !exists {
		return nil
	}
	sectionMap, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: section %q is not a mapping", ErrMalformedSection, section)
	}
	merge(target, sectionMap)
	return nil
}

// merge copies values into the target envelope, allocating it when nil.
func merge(target *bootstrap.Config, values map[string]any) {
	if *target == nil {
		*target = make(bootstrap.Config, len(values))
	}
	for k, v := range values {
		(*target)[k] = v
	}
}
