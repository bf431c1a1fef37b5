package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchktools/fastweb/logging"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileEnvFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
workers: 3
read_timeout: 2s
log:
  level: debug
  format: json
metrics:
  enabled: false
`), 0o600))

	t.Setenv("FASTWEB_WORKERS", "5")
	t.Setenv("FASTWEB_LOG_FORMAT", "console")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port=9100"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "flag beats file")
	assert.Equal(t, 5, cfg.Workers, "env beats file")
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.Equal(t, logging.LevelDebug, cfg.Log.Level)
	assert.Equal(t, logging.FormatConsole, cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0", cfg.Host, "unset flag keeps default")

	opts := cfg.Engine()
	assert.Equal(t, 9100, opts.Port)
	assert.Equal(t, 5, opts.Workers)
	assert.Equal(t, "0.0.0.0:9100", opts.Addr())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FASTWEB_WORKERS", "0")

	_, err := Load("", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 70000
	cfg.Workers = -1
	cfg.MaxRequestSize = 10
	cfg.Metrics.Path = "metrics"
	cfg.Log.Level = "chatty"

	err := cfg.Validate()
	require.Error(t, err)

	fields := map[string]bool{}
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		fields[ve.Field] = true
	}
	assert.Equal(t, map[string]bool{
		"port": true, "workers": true, "max_request_size": true, "metrics.path": true, "log": true,
	}, fields)

	assert.NoError(t, Default().Validate())
}
