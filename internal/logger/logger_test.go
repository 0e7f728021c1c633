package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(Config{Level: "debug"}, &buf)
	l.Info().Str("component", "test").Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, DefaultService, line["service"])
	assert.Contains(t, line, "time")
}

func TestComponentAndService(t *testing.T) {
	var buf bytes.Buffer
	root := newWithWriter(Config{Level: "info", Service: "pricing-eu"}, &buf)
	cl := Component(root, "ramadan_cache")
	cl.Warn().Dur("age", 1500*time.Millisecond).Msg("Cache expired")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pricing-eu", line["service"])
	assert.Equal(t, "ramadan_cache", line["component"])
	assert.EqualValues(t, 1500, line["age"])
}

func TestNewLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			newWithWriter(Config{Level: tt.level}, &buf)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
