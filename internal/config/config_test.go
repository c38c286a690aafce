package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/ws/comm", cfg.Server.CommPath)
	assert.Equal(t, "json", cfg.Comm.Codec)
	assert.Equal(t, 10, cfg.Comm.RequestTimeoutSeconds)
	assert.Equal(t, 5, cfg.Comm.HandshakeTimeoutSeconds)
	assert.Equal(t, 500, cfg.Comm.HandshakeGraceMillis)
	assert.Equal(t, "en", cfg.Widget.Lang)
}

func TestParseAcceptsCommentsAndTrailingCommas(t *testing.T) {
	raw := []byte(`{
		// frontend endpoint
		"server": {"host": "127.0.0.1", "port": 9000, "listen_addr": ""},
		"comm": {
			"codec": "msgpack",
			"request_timeout_seconds": 3, /* short */
		},
	}`)

	cfg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, "msgpack", cfg.Comm.Codec)
	assert.Equal(t, 3, cfg.Comm.RequestTimeoutSeconds)
	assert.Equal(t, 5, cfg.Comm.HandshakeTimeoutSeconds)
}

func TestParseNormalisesZeroValues(t *testing.T) {
	cfg, err := Parse([]byte(`{"server": {"comm_path": "", "hips_path": "/tiles"}, "comm": {"request_timeout_seconds": -1, "handshake_grace_millis": -5}}`))
	require.NoError(t, err)

	assert.Equal(t, "/ws/comm", cfg.Server.CommPath)
	assert.Equal(t, "/tiles/", cfg.Server.HiPSPath)
	assert.Equal(t, 10, cfg.Comm.RequestTimeoutSeconds)
	assert.Equal(t, 0, cfg.Comm.HandshakeGraceMillis)
}

func TestParseRejectsUnknownLanguage(t *testing.T) {
	_, err := Parse([]byte(`{"widget": {"lang": "fr"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "en, es, zh")

	cfg, err := Parse([]byte(`{"widget": {"lang": "ZH"}}`))
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.Widget.Lang)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skywidget.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"redis_addr": "localhost:6379"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
