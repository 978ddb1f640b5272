package logs

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	SOURCE_LOG_FIELD_NAME = "src"

	SYMBOLS_SRC_NAME = "/symbols"
	QUAD_SRC_NAME    = "/quad"
	UNIT_SRC_NAME    = "/unit"
	ARCHIVE_SRC_NAME = "/archive"
	REPLAY_SRC_NAME  = "/replay"
	WATCH_SRC_NAME   = "/watch"

	DEFAULT_LEVEL = zerolog.InfoLevel
)

func init() {
	zerolog.DurationFieldInteger = false
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.MessageFieldName = "msg"
	zerolog.LevelFieldName = "lvl"
	zerolog.TimestampFieldName = "tm"
}

// New creates a root logger writing to w. If pretty is true the output is formatted for humans.
func New(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ChildLoggerForSource returns a copy of logger with the source field set to src.
func ChildLoggerForSource(logger zerolog.Logger, src string) zerolog.Logger {
	return logger.With().Str(SOURCE_LOG_FIELD_NAME, src).Logger()
}

// ParseLevel parses a level name, the empty string is parsed as DEFAULT_LEVEL.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DEFAULT_LEVEL, nil
	}
	return zerolog.ParseLevel(s)
}
