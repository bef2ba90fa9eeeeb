package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "subsystem=test")
	assert.Contains(t, output, "level=info")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log.Info("after switch", "key", "value")

	assert.Contains(t, buf.String(), "after switch")
}

func TestSetLevel_AppliesToDerivedLoggers(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	derived := Logger("test3").With("peer", "http://localhost:3001")

	SetLevel("test3", slog.LevelError)
	derived.Warn("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("test3", slog.LevelDebug)
	derived.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "peer=http://localhost:3001")
}

func TestApplyLevelSpec(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	a := Logger("spec-a")
	b := Logger("spec-b")

	ApplyLevelSpec("spec-a=debug,error")
	defer ApplyLevelSpec("info")

	a.Debug("a-debug")
	b.Warn("b-warn")

	assert.Contains(t, buf.String(), "a-debug")
	assert.NotContains(t, buf.String(), "b-warn")
}

func TestParseConfig(t *testing.T) {
	env := map[string]string{
		EnvLevel:     "noderegistry=debug, transport=warn, error, bogus=loud",
		EnvFormat:    "JSON",
		EnvAddSource: "1",
	}
	cfg := parseConfig(func(k string) string { return env[k] })

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("noderegistry"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("transport"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("rpc"))
	assert.NotContains(t, cfg.SubsystemLevels, "bogus")
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)

	empty := parseConfig(func(string) string { return "" })
	assert.Equal(t, slog.LevelInfo, empty.DefaultLevel)
	assert.Equal(t, FormatText, empty.Format)
	assert.False(t, empty.AddSource)
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
