package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/tourneydesk/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel(" error "))
	assert.Equal(t, logger.INFO, logger.ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "WARN")
}

func TestJSONFieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.DEBUG))

	log.WithPrefix("round_repo").WithField("round_id", 7).Debug("saving round %s", "Round 2")

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "saving round Round 2", entry["msg"])
	assert.Equal(t, "round_repo", entry["logger"])
	assert.EqualValues(t, 7, entry["round_id"])
}

func TestWithPrefixReplacesPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true))

	log.WithPrefix("a").WithPrefix("b").Info("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "b", entry["logger"])
}

func TestContextRoundTrip(t *testing.T) {
	log := logger.Nop().WithField("request_id", "abc")
	ctx := logger.NewContext(context.Background(), log)

	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
