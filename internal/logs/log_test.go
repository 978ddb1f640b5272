package logs

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildLoggerForSource(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := New(buf, zerolog.DebugLevel, false)

	child := ChildLoggerForSource(logger, QUAD_SRC_NAME)
	child.Debug().Msg("appended")

	s := buf.String()
	assert.Contains(t, s, `"src":"/quad"`)
	assert.Contains(t, s, `"msg":"appended"`)
	assert.Contains(t, s, `"lvl":"debug"`)

	buf.Reset()
	logger.Debug().Msg("root")
	assert.NotContains(t, buf.String(), `"src"`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_LEVEL, level)

	level, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
