package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings  `hcl:"server,block"`
	Ledger *LedgerSettings `hcl:"ledger,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
	HandDelay     string `hcl:"hand_delay,optional"`
	HistoryDir    string `hcl:"history_dir,optional"`
}

// LedgerSettings selects where chip stacks are stored.
type LedgerSettings struct {
	Driver       string `hcl:"driver,optional"`
	DSN          string `hcl:"dsn,optional"`
	DefaultStack int    `hcl:"default_stack,optional"`
}

// TableConfig defines a poker table configuration
type TableConfig struct {
	Name       string `hcl:"name,label"`
	MaxPlayers int    `hcl:"max_players,optional"`
	MinPlayers int    `hcl:"min_players,optional"`
	SmallBlind int    `hcl:"small_blind,optional"`
	BigBlind   int    `hcl:"big_blind,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	config := &ServerConfig{
		Tables: []TableConfig{{Name: "main"}},
	}
	config.applyDefaults()
	return config
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if len(config.Tables) == 0 {
		config.Tables = []TableConfig{{Name: "main"}}
	}
	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ActionTimeout == "" {
		c.Server.ActionTimeout = "30s"
	}
	if c.Server.HandDelay == "" {
		c.Server.HandDelay = "3s"
	}

	if c.Ledger == nil {
		c.Ledger = &LedgerSettings{}
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "memory"
	}
	if c.Ledger.DefaultStack == 0 {
		c.Ledger.DefaultStack = 1000
	}

	for i := range c.Tables {
		if c.Tables[i].MaxPlayers == 0 {
			c.Tables[i].MaxPlayers = 6
		}
		if c.Tables[i].MinPlayers == 0 {
			c.Tables[i].MinPlayers = 2
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if _, err := c.ActionTimeout(); err != nil {
		return err
	}
	if _, err := c.HandDelay(); err != nil {
		return err
	}

	switch c.Ledger.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Ledger.DSN == "" {
			return fmt.Errorf("ledger driver %s requires a dsn", c.Ledger.Driver)
		}
	default:
		return fmt.Errorf("invalid ledger driver: %s", c.Ledger.Driver)
	}
	if c.Ledger.DefaultStack <= 0 {
		return fmt.Errorf("default stack must be positive")
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: defined twice", table.Name)
		}
		seen[table.Name] = true

		if table.SmallBlind < 0 || table.BigBlind < 0 {
			return fmt.Errorf("table %s: blinds cannot be negative", table.Name)
		}
		if table.BigBlind < table.SmallBlind {
			return fmt.Errorf("table %s: big blind must not be less than small blind", table.Name)
		}
		if table.MaxPlayers < 2 || table.MaxPlayers > 10 {
			return fmt.Errorf("table %s: max players must be between 2 and 10", table.Name)
		}
		if table.MinPlayers < 2 || table.MinPlayers > table.MaxPlayers {
			return fmt.Errorf("table %s: min players must be between 2 and max players", table.Name)
		}
	}

	return nil
}

// ActionTimeout is how long a player has to act before the table acts for them.
func (c *ServerConfig) ActionTimeout() (time.Duration, error) {
	return parseDuration("action_timeout", c.Server.ActionTimeout)
}

// HandDelay is the pause between the end of one hand and the next.
func (c *ServerConfig) HandDelay() (time.Duration, error) {
	return parseDuration("hand_delay", c.Server.HandDelay)
}

func parseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, value)
	}
	return d, nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table configuration by name
func (c *ServerConfig) GetTableByName(name string) *TableConfig {
	for _, table := range c.Tables {
		if table.Name == name {
			return &table
		}
	}
	return nil
}
