package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherDeliversWriteEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: old\n"), 0o600))

	changed := make(chan string, 4)
	w, err := NewConfigWatcher(func(p string) { changed <- p }, &testLogger{})
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, w.Watch(path))
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("host: new\n"), 0o600))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("change notification never arrived")
	}
}

func TestConfigWatcherWatchMissingPath(t *testing.T) {
	w, err := NewConfigWatcher(func(string) {}, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Stop()) }()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "does-not-exist.yaml")))
}

func TestConfigWatcherStopWithoutStart(t *testing.T) {
	w, err := NewConfigWatcher(func(string) {}, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestConfigWatcherStartTwice(t *testing.T) {
	w, err := NewConfigWatcher(func(string) {}, nil)
	require.NoError(t, err)
	w.Start()
	w.Start()
	assert.NoError(t, w.Stop())
}
