package cliutil

import (
	"bytes"
	"testing"

	"github.com/risksense-community/RSClientGo/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	logger, err := NewLogger("debug", &out)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Debug("connected")
	logger.Trace("hidden")
	assert.Regexp(t, `(?i)^\[debug\]\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] connected\n$`, out.String())

	_, err = NewLogger("verbose", &out)
	assert.Error(t, err)
}

func TestSetupFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvPlatformURL, "https://platform.risksense.com")
	t.Setenv(config.EnvAPIKey, "key")
	t.Setenv(config.EnvClientID, "42")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level", "warn"}))
	assert.Equal(t, "config.toml", opts.ConfigPath)

	cfg, logger, err := opts.Setup()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.ClientID)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.Equal(t, "hostFinding", string(Subject(cfg)))
}

func TestSetupExplicitConfigMustExist(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts := AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", "missing.toml"}))

	_, _, err := opts.Setup()
	assert.Error(t, err)
}
