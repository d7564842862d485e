package server

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/ruleta/internal/engine"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Table  *TableConfig    `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// TableConfig defines the rules every connection's table is created with
type TableConfig struct {
	InitialBalance  int   `hcl:"initial_balance,optional"`
	BettingSeconds  int   `hcl:"betting_seconds,optional"`
	LastCallSeconds *int  `hcl:"last_call_seconds,optional"`
	SpinDelayMS     int   `hcl:"spin_delay_ms,optional"`
	CooldownMS      int   `hcl:"cooldown_ms,optional"`
	Chips           []int `hcl:"chips,optional"`
	DefaultChip     int   `hcl:"default_chip,optional"`
	AutoSpin        bool  `hcl:"auto_spin,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	config := &ServerConfig{}
	config.applyDefaults()
	return config
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source and applies defaults for anything
// left unset.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	defaults := engine.DefaultConfig()
	if c.Table == nil {
		c.Table = &TableConfig{}
	}
	t := c.Table
	if t.InitialBalance == 0 {
		t.InitialBalance = defaults.InitialBalance
	}
	if t.BettingSeconds == 0 {
		t.BettingSeconds = defaults.BettingSeconds
	}
	if t.LastCallSeconds == nil {
		lastCall := min(defaults.LastCallSeconds, t.BettingSeconds-1)
		t.LastCallSeconds = &lastCall
	}
	if t.SpinDelayMS == 0 {
		t.SpinDelayMS = int(defaults.SpinDelay / time.Millisecond)
	}
	if t.CooldownMS == 0 {
		t.CooldownMS = int(defaults.Cooldown / time.Millisecond)
	}
	if len(t.Chips) == 0 {
		t.Chips = slices.Clone(defaults.Chips)
	}
	if t.DefaultChip == 0 {
		t.DefaultChip = defaults.DefaultChip
		if !slices.Contains(t.Chips, t.DefaultChip) {
			t.DefaultChip = slices.Min(t.Chips)
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return nil
}

// EngineConfig converts the table block into an engine configuration
func (c *ServerConfig) EngineConfig() engine.Config {
	t := c.Table
	cfg := engine.Config{
		InitialBalance: t.InitialBalance,
		BettingSeconds: t.BettingSeconds,
		SpinDelay:      time.Duration(t.SpinDelayMS) * time.Millisecond,
		Cooldown:       time.Duration(t.CooldownMS) * time.Millisecond,
		Chips:          slices.Clone(t.Chips),
		DefaultChip:    t.DefaultChip,
		AutoSpin:       t.AutoSpin,
	}
	if t.LastCallSeconds != nil {
		cfg.LastCallSeconds = *t.LastCallSeconds
	}
	return cfg
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
