package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// GridConfig describes the visible hour range and time granularity of the
// board.
type GridConfig struct {
	StartHour       int           `json:"startHour"`
	EndHour         int           `json:"endHour"`
	Quantum         time.Duration `json:"quantum"`
	DefaultDuration time.Duration `json:"defaultDuration"`
}

// Config captures the configuration of the dispatch board service.
type Config struct {
	HTTPPort       int           `json:"httpPort"`
	SQLiteDSN      string        `json:"sqliteDsn"`
	Grid           GridConfig    `json:"grid"`
	DebounceWindow time.Duration `json:"debounceWindow"`
}

// SetDefaults fills unset fields with sensible values.
func (c *Config) SetDefaults() {
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.SQLiteDSN == "" {
		c.SQLiteDSN = "file:dispatch.db?_foreign_keys=on"
	}
	if c.Grid.StartHour == 0 && c.Grid.EndHour == 0 {
		c.Grid.StartHour = 8
		c.Grid.EndHour = 18
	}
	if c.Grid.Quantum == 0 {
		c.Grid.Quantum = 15 * time.Minute
	}
	if c.Grid.DefaultDuration == 0 {
		c.Grid.DefaultDuration = time.Hour
	}
	if c.DebounceWindow == 0 {
		c.DebounceWindow = 250 * time.Millisecond
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: http port %d out of range", c.HTTPPort)
	}
	if c.Grid.StartHour < 0 || c.Grid.StartHour > 23 {
		return fmt.Errorf("config: grid start hour %d out of range", c.Grid.StartHour)
	}
	if c.Grid.EndHour < 1 || c.Grid.EndHour > 24 {
		return fmt.Errorf("config: grid end hour %d out of range", c.Grid.EndHour)
	}
	if c.Grid.StartHour >= c.Grid.EndHour {
		return fmt.Errorf("config: grid start hour %d must be before end hour %d", c.Grid.StartHour, c.Grid.EndHour)
	}
	if c.Grid.Quantum <= 0 {
		return fmt.Errorf("config: quantum must be positive")
	}
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("config: debounce window must be positive")
	}
	return nil
}

// envKeys maps flattened environment variable names to the config keys
// they override.
var envKeys = map[string]string{
	"httpport":             "httpPort",
	"sqlitedsn":            "sqliteDsn",
	"debouncewindow":       "debounceWindow",
	"grid.starthour":       "grid.startHour",
	"grid.endhour":         "grid.endHour",
	"grid.quantum":         "grid.quantum",
	"grid.defaultduration": "grid.defaultDuration",
}

// Load reads the configuration file at path, applies DISPATCH_ prefixed
// environment overrides, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Optional environment overrides, e.g. DISPATCH_GRID__STARTHOUR=7.
	// koanf keys are case sensitive, so the uppercase variable names are
	// mapped onto the canonical config keys; unknown variables are ignored.
	if err := k.Load(env.Provider("DISPATCH_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dispatch_")
		return envKeys[strings.ReplaceAll(s, "__", ".")]
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
