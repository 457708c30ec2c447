package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	var c Config
	c.Writer.Mode = WriterEmbedded
	c.KV.Backend = KVBackendMemory
	c.Bench.ConcurrentClients = 10
	c.Bench.DurationSeconds = 60
	c.Log.Level = "info"
	c.Log.Format = "text"
	return &c
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())
}

func TestValidateRejectsOutOfRangeConcurrentClients(t *testing.T) {
	var c = defaultConfig()
	c.Bench.ConcurrentClients = 0
	require.Error(t, c.Validate())

	c.Bench.ConcurrentClients = 1001
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownWriterMode(t *testing.T) {
	var c = defaultConfig()
	c.Writer.Mode = "bogus"
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownKVBackend(t *testing.T) {
	var c = defaultConfig()
	c.KV.Backend = "bogus"
	require.Error(t, c.Validate())
}

func TestInitLogRejectsUnknownLevel(t *testing.T) {
	var c = defaultConfig()
	c.Log.Level = "bogus"
	require.Error(t, c.InitLog())
}

func TestInitLogAcceptsJSONFormat(t *testing.T) {
	var c = defaultConfig()
	c.Log.Format = "json"
	require.NoError(t, c.InitLog())
}
