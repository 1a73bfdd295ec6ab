package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Solarpaletten/dashkavisa/internal/config"
)

// resetGlobalLogger is needed because the logger is a process-wide
// singleton and tests share the process.
func resetGlobalLogger() {
	once = sync.Once{}
	globalLogger.Store(nil)
}

func TestGetLoggerBeforeInitialization(t *testing.T) {
	resetGlobalLogger()

	logger := GetLogger()
	require.NotNil(t, logger, "uninitialized GetLogger must return a usable fallback")
	logger.Info("fallback logger works")
}

func TestInitializeLoggerIsIdempotent(t *testing.T) {
	resetGlobalLogger()

	InitializeLogger(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "test"})
	first := GetLogger()

	InitializeLogger(config.LoggerConfig{Level: "error", Format: "json", ServiceName: "другой"})
	assert.Same(t, first, GetLogger(), "re-initialization must not replace the logger")
}

func TestInitializeLoggerBadLevelFallsBackToInfo(t *testing.T) {
	resetGlobalLogger()

	InitializeLogger(config.LoggerConfig{Level: "nonsense", Format: "console", ServiceName: "test"})
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel),
		"an unparsable level must land on info, not debug")
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestColorizedLevelEncoderKnownColors(t *testing.T) {
	enc := newColorizedLevelEncoder(config.ColorConfig{Info: "green", Error: "red"})
	require.NotNil(t, enc)

	var out sliceArrayEncoder
	enc(zapcore.InfoLevel, &out)
	require.Len(t, out.items, 1)
	assert.Contains(t, out.items[0], "INFO")
	assert.Contains(t, out.items[0], colorGreen)

	out.items = nil
	enc(zapcore.WarnLevel, &out)
	require.Len(t, out.items, 1)
	assert.Equal(t, "WARN", out.items[0], "unconfigured levels stay uncolored")
}

// sliceArrayEncoder captures appended strings for encoder assertions.
type sliceArrayEncoder struct {
	zapcore.PrimitiveArrayEncoder
	items []string
}

func (s *sliceArrayEncoder) AppendString(v string) {
	s.items = append(s.items, v)
}
