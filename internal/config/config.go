package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"drawdown-service/internal/model"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Log        LogConfig        `yaml:"log"`
	Categories []CategoryConfig `yaml:"categories"`
	// Optional: override the date layouts tried when parsing uploads.
	DateLayouts []string `yaml:"date_layouts"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// CategoryConfig maps an asset category to the CSV columns it is read from.
type CategoryConfig struct {
	Name        string `yaml:"name"`
	DateColumn  string `yaml:"date_column"`
	PriceColumn string `yaml:"price_column"`
}

// Default returns the built-in configuration: the two asset categories the
// service has always accepted, an in-memory store, and port 8080.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			MaxUploadBytes: 32 << 20,
			CORSOrigins:    []string{"*"},
		},
		Store: StoreConfig{
			Driver: StoreMemory,
			DSN:    ":memory:",
		},
		Log: LogConfig{Level: "info"},
		Categories: []CategoryConfig{
			{Name: "nifty", DateColumn: "Date", PriceColumn: "Nifty_price"},
			{Name: "multi_asset", DateColumn: "Date", PriceColumn: "Price"},
		},
	}
}

// Load reads config from a YAML file, applies environment variable overrides
// and validates the result. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the file and merges it onto Default, without env
// overrides or validation.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var override Config
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return Merge(c, &override), nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be > 0")
	}
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported store.driver: %q", c.Store.Driver)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level invalid: %w", err)
	}
	if len(c.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d].name is required", i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if cat.DateColumn == "" || cat.PriceColumn == "" {
			return fmt.Errorf("category %q needs date_column and price_column", cat.Name)
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Category looks up a configured category by name.
func (c *Config) Category(name string) (model.Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat.ToModel(), true
		}
	}
	return model.Category{}, false
}

// CategoryNames lists the configured categories in declaration order.
func (c *Config) CategoryNames() []string {
	out := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

func (cc CategoryConfig) ToModel() model.Category {
	return model.Category{
		Name:        cc.Name,
		DateColumn:  cc.DateColumn,
		PriceColumn: cc.PriceColumn,
	}
}

// Merge overlays non-zero fields from override onto base and returns base.
// Categories are matched by name: a known name is merged field by field,
// an unknown one is appended.
func Merge(base, override *Config) *Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.Env != "" {
		base.Server.Env = override.Server.Env
	}
	if override.Server.MaxUploadBytes != 0 {
		base.Server.MaxUploadBytes = override.Server.MaxUploadBytes
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}
	if override.Store.Driver != "" {
		base.Store.Driver = override.Store.Driver
	}
	if override.Store.DSN != "" {
		base.Store.DSN = override.Store.DSN
	}
	if override.Log.Level != "" {
		base.Log.Level = override.Log.Level
	}
	if len(override.DateLayouts) > 0 {
		base.DateLayouts = override.DateLayouts
	}
	for _, oc := range override.Categories {
		merged := false
		for i := range base.Categories {
			if base.Categories[i].Name == oc.Name {
				base.Categories[i] = MergeCategory(base.Categories[i], oc)
				merged = true
				break
			}
		}
		if !merged {
			base.Categories = append(base.Categories, oc)
		}
	}
	return base
}

// MergeCategory overlays non-empty fields from override onto base.
func MergeCategory(base, override CategoryConfig) CategoryConfig {
	out := base
	if override.DateColumn != "" {
		out.DateColumn = override.DateColumn
	}
	if override.PriceColumn != "" {
		out.PriceColumn = override.PriceColumn
	}
	return out
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
