package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  port           = 9090
  log_level      = "debug"
  action_timeout = "5s"
  history_dir    = "/tmp/hands"
}

ledger {
  driver = "sqlite"
  dsn    = "file:chips.db"
}

table "high" {
  max_players = 9
  small_blind = 50
  big_blind   = 100
}

table "low" {
  min_players = 3
}
`)

	config, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "localhost:9090", config.GetServerAddress())
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, "/tmp/hands", config.Server.HistoryDir)

	timeout, err := config.ActionTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)

	delay, err := config.HandDelay()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, delay)

	assert.Equal(t, "sqlite", config.Ledger.Driver)
	assert.Equal(t, 1000, config.Ledger.DefaultStack)

	require.Len(t, config.Tables, 2)
	high := config.GetTableByName("high")
	require.NotNil(t, high)
	assert.Equal(t, TableConfig{Name: "high", MaxPlayers: 9, MinPlayers: 2, SmallBlind: 50, BigBlind: 100}, *high)

	low := config.GetTableByName("low")
	require.NotNil(t, low)
	assert.Equal(t, 6, low.MaxPlayers)
	assert.Equal(t, 3, low.MinPlayers)
	assert.Zero(t, low.BigBlind)

	assert.Nil(t, config.GetTableByName("missing"))
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	t.Parallel()

	config, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, DefaultServerConfig(), config)
	require.Len(t, config.Tables, 1)
	assert.Equal(t, "main", config.Tables[0].Name)
	assert.Equal(t, "memory", config.Ledger.Driver)
}

func TestLoadServerConfigParseError(t *testing.T) {
	t.Parallel()

	_, err := LoadServerConfig(writeConfig(t, `server { port = `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = LoadServerConfig(writeConfig(t, `server { colour = "blue" }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		errMsg string
	}{
		{"bad port", func(c *ServerConfig) { c.Server.Port = 70000 }, "invalid port"},
		{"bad log level", func(c *ServerConfig) { c.Server.LogLevel = "loud" }, "invalid log level"},
		{"bad timeout", func(c *ServerConfig) { c.Server.ActionTimeout = "soon" }, "invalid action_timeout"},
		{"negative delay", func(c *ServerConfig) { c.Server.HandDelay = "-1s" }, "must not be negative"},
		{"unknown ledger", func(c *ServerConfig) { c.Ledger.Driver = "redis" }, "invalid ledger driver"},
		{"ledger without dsn", func(c *ServerConfig) { c.Ledger.Driver = "postgres" }, "requires a dsn"},
		{"zero stack", func(c *ServerConfig) { c.Ledger.DefaultStack = 0 }, "default stack"},
		{"no tables", func(c *ServerConfig) { c.Tables = nil }, "at least one table"},
		{"duplicate table", func(c *ServerConfig) { c.Tables = append(c.Tables, c.Tables[0]) }, "defined twice"},
		{"inverted blinds", func(c *ServerConfig) { c.Tables[0].SmallBlind, c.Tables[0].BigBlind = 10, 5 }, "big blind"},
		{"negative blinds", func(c *ServerConfig) { c.Tables[0].SmallBlind = -1 }, "negative"},
		{"too many players", func(c *ServerConfig) { c.Tables[0].MaxPlayers = 11 }, "max players"},
		{"min above max", func(c *ServerConfig) { c.Tables[0].MinPlayers = 7 }, "min players"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			config := DefaultServerConfig()
			tt.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
