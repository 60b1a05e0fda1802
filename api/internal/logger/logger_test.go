package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := InitWithWriter(&buf, "debug", "json")

	l.Debug().Str("batch_id", "b-1").Msg("batch processed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "b-1", entry["batch_id"])
	assert.Contains(t, entry, "time")
}

func TestInitWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := InitWithWriter(&buf, "chatty", "json")

	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "json")

	c := WithComponent("batch")
	c.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"batch"`)
}
