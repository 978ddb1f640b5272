package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/inoxlang/quadc/internal/logs"
	"github.com/rs/zerolog"
)

const (
	DEFAULT_WATCH_DEBOUNCE_DURATION = 250 * time.Millisecond
	MIN_WATCH_DEBOUNCE_DURATION     = 10 * time.Millisecond
)

func WatchScript(mainSubCommand string, mainSubCommandArgs []string, outW, errW io.Writer) (exitCode int) {
	flags := flag.NewFlagSet(mainSubCommand, flag.ContinueOnError)
	common := addCommonFlags(flags)

	var debounceDuration time.Duration
	flags.DurationVar(&debounceDuration, "debounce", DEFAULT_WATCH_DEBOUNCE_DURATION, "delay between the last change and the check")

	args, ok, statusCode := parseFlags(flags, mainSubCommandArgs, outW, errW)
	if !ok {
		return statusCode
	}

	if len(args) == 0 {
		fmt.Fprintf(errW, "missing script path\n")
		return ERROR_STATUS_CODE
	}

	if debounceDuration < MIN_WATCH_DEBOUNCE_DURATION {
		fmt.Fprintf(errW, "the debounce duration should be at least %s\n", MIN_WATCH_DEBOUNCE_DURATION)
		return ERROR_STATUS_CODE
	}

	env, err := common.environment(outW, errW)
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}

	path := args[0]

	watcher, err := newScriptWatcher(path, logs.ChildLoggerForSource(env.logger, logs.WATCH_SRC_NAME))
	if err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}
	defer watcher.Close()

	var outputLock sync.Mutex
	check := func() {
		outputLock.Lock()
		defer outputLock.Unlock()
		checkScript(env, path, false, outW, errW)
	}

	check()
	fmt.Fprintf(errW, "watching %s, press Ctrl+C to stop\n", path)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := watcher.Run(ctx, debounceDuration, check); err != nil {
		fmt.Fprintln(errW, err)
		return ERROR_STATUS_CODE
	}
	return 0
}

// scriptWatcher watches the parent directory of a script, editors often replace a file instead of writing it.
type scriptWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
}

func newScriptWatcher(path string, logger zerolog.Logger) (*scriptWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &scriptWatcher{
		path:    absPath,
		watcher: watcher,
		logger:  logger,
	}, nil
}

// Run calls onChange after each series of changes to the script, it returns when ctx is done or
// if the watcher fails. onChange is never called after Run returns.
func (w *scriptWatcher) Run(ctx context.Context, debounceDuration time.Duration, onChange func()) error {
	debounced := debounce.New(debounceDuration)

	var (
		stopped bool
		lock    sync.Mutex
	)

	defer func() {
		lock.Lock()
		stopped = true
		lock.Unlock()
		debounced(func() {})
	}()

	call := func() {
		lock.Lock()
		defer lock.Unlock()
		if !stopped {
			onChange()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			w.logger.Debug().Str("op", event.Op.String()).Msg("script changed")

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounced(call)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn().Err(err).Send()
				debounced(call)
				continue
			}
			return err
		}
	}
}

func (w *scriptWatcher) Close() error {
	return w.watcher.Close()
}
