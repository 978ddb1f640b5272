package testconfig

import (
	"testing"

	"github.com/inoxlang/quadc/internal/utils"
	"github.com/rs/zerolog"
)

var (
	PARALLELIZE_SAME_PKG_TESTS = false

	// set to true to see the logs of the tested components in the test output.
	LOG_TO_TEST_OUTPUT = false
)

func AllowParallelization(t *testing.T) {
	if PARALLELIZE_SAME_PKG_TESTS {
		t.Parallel()
	}
}

// Logger returns a debug logger writing to t.Log if LOG_TO_TEST_OUTPUT is set, a disabled logger otherwise.
func Logger(t *testing.T) zerolog.Logger {
	if !LOG_TO_TEST_OUTPUT {
		return zerolog.Nop()
	}
	return zerolog.New(&utils.TestWriter{T: t}).Level(zerolog.DebugLevel)
}
