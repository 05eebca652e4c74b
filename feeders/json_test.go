package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/bootstrap"
)

func TestJSONFeederFeed(t *testing.T) {
	path := writeTempFile(t, "app.json", `{"host": "db.local", "port": 5432}`)

	var cfg bootstrap.Config
	require.NoError(t, NewJSONFeeder(path).Feed(&cfg))

	assert.Equal(t, "db.local", cfg.String("host"))
	port, ok := cfg.Int("port")
	require.True(t, ok)
	assert.Equal(t, 5432, port)
}

func TestJSONFeederFeedSection(t *testing.T) {
	path := writeTempFile(t, "app.json", `{
		"database": {"driver": "sqlite", "dsn": ":memory:"},
		"cache": {"address": "localhost:6379"}
	}`)
	feeder := NewJSONFeeder(path)

	var db bootstrap.Config
	require.NoError(t, feeder.FeedSection("database", &db))
	assert.Equal(t, "sqlite", db.String("driver"))
	assert.False(t, db.Has("address"))

	var queue bootstrap.Config
	require.NoError(t, feeder.FeedSection("queue", &queue))
	assert.Nil(t, queue)
}

func TestJSONFeederFeedSectionNotAnObject(t *testing.T) {
	path := writeTempFile(t, "app.json", `{"database": "just-a-string"}`)

	var cfg bootstrap.Config
	err := NewJSONFeeder(path).FeedSection("database", &cfg)
	assert.ErrorIs(t, err, ErrMalformedSection)
}

func TestJSONFeederErrors(t *testing.T) {
	var cfg bootstrap.Config
	assert.Error(t, NewJSONFeeder("does-not-exist.json").Feed(&cfg))

	path := writeTempFile(t, "bad.json", `{"host":`)
	assert.Error(t, NewJSONFeeder(path).Feed(&cfg))
}
