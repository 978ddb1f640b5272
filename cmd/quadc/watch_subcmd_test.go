package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptWatcher(t *testing.T) {
	const debounceDuration = 20 * time.Millisecond

	t.Run("a series of writes triggers a single call", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "demo.yaml")
		require.NoError(t, os.WriteFile(path, []byte(DEMO_SCRIPT), 0o600))

		watcher, err := newScriptWatcher(path, zerolog.Nop())
		require.NoError(t, err)
		defer watcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		calls := make(chan struct{}, 10)
		done := make(chan error, 1)
		go func() {
			done <- watcher.Run(ctx, debounceDuration, func() { calls <- struct{}{} })
		}()

		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(path, []byte(DEMO_SCRIPT), 0o600))
		}

		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			require.FailNow(t, "onChange was not called")
		}

		time.Sleep(5 * debounceDuration)
		assert.Empty(t, calls)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			require.FailNow(t, "Run did not return")
		}
	})

	t.Run("changes to other files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "demo.yaml")
		require.NoError(t, os.WriteFile(path, []byte(DEMO_SCRIPT), 0o600))

		watcher, err := newScriptWatcher(path, zerolog.Nop())
		require.NoError(t, err)
		defer watcher.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*debounceDuration)
		defer cancel()

		calls := 0
		go func() {
			time.Sleep(debounceDuration)
			os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("unit: other\n"), 0o600)
		}()

		require.NoError(t, watcher.Run(ctx, debounceDuration, func() { calls++ }))
		assert.Zero(t, calls)
	})

	t.Run("missing script", func(t *testing.T) {
		_, err := newScriptWatcher(filepath.Join(t.TempDir(), "missing.yaml"), zerolog.Nop())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := newScriptWatcher(t.TempDir(), zerolog.Nop())
		assert.ErrorContains(t, err, "is a directory")
	})
}

func TestMain_Watch(t *testing.T) {
	env := newTestEnv(t)

	code, _, errOut := run(WATCH_SUBCMD, "-config", env.configPath)
	assert.Equal(t, ERROR_STATUS_CODE, code)
	assert.Contains(t, errOut, "missing script path")

	script := env.writeScript(t, "demo.yaml", DEMO_SCRIPT)
	code, _, errOut = run(WATCH_SUBCMD, "-config", env.configPath, "-debounce", "1ms", script)
	assert.Equal(t, ERROR_STATUS_CODE, code)
	assert.Contains(t, errOut, "the debounce duration should be at least")
}
