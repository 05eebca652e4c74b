package feeders

import (
	"os"
	"strings"

	"github.com/GoCodeAlone/bootstrap"
)

// EnvFeeder reads configuration envelopes from the process environment.
// Variables are matched by prefix and mapped to lowercased keys:
// with prefix "APP", APP_HOST=db.local feeds {"host": "db.local"}.
// Values stay strings; the Config accessors convert on read.
type EnvFeeder struct {
	Prefix string
}

// NewEnvFeeder creates an EnvFeeder matching variables under the given
// prefix. An empty prefix matches every variable.
func NewEnvFeeder(prefix string) EnvFeeder {
	return EnvFeeder{Prefix: prefix}
}

// Feed reads all matching environment variables into target.
func (f EnvFeeder) Feed(target *bootstrap.Config) error {
	f.feedWithPrefix(f.envPrefix(), target)
	return nil
}

// FeedSection reads variables under PREFIX_SECTION_ into target: with
// prefix "APP", FeedSection("database", ...) matches APP_DATABASE_HOST as
// "host".
func (f EnvFeeder) FeedSection(section string, target *bootstrap.Config) error {
	f.feedWithPrefix(f.envPrefix()+strings.ToUpper(section)+"_", target)
	return nil
}

func (f EnvFeeder) envPrefix() string {
	if f.Prefix == "" {
		return ""
	}
	return strings.ToUpper(f.Prefix) + "_"
}

func (f EnvFeeder) feedWithPrefix(prefix string, target *bootstrap.Config) {
	for _, raw := range os.Environ() {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		if key == "" {
			continue
		}
		if *target == nil {
			*target = make(bootstrap.Config)
		}
		(*target)[key] = value
	}
}
