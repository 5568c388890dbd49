package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/architeketh/retail-trends-bot/internal/brand"
	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/tokenize"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "retail-trends"

// MinYearRetention is the smallest retention that keeps every date of the
// current year queryable.
const MinYearRetention = 366

type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type HistoryConfig struct {
	Backend string `yaml:"backend"` // "json" or "sqlite"
	Dir     string `yaml:"dir"`
}

type PathsConfig struct {
	Input     string `yaml:"input"`
	OutputDir string `yaml:"output_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Timezone     string          `yaml:"timezone"`
	Retention    string          `yaml:"retention"`
	TopK         int             `yaml:"top_k,omitempty"`
	PerFeedLimit int             `yaml:"per_feed_limit,omitempty"`
	History      HistoryConfig   `yaml:"history"`
	Paths        PathsConfig     `yaml:"paths"`
	Log          LogConfig       `yaml:"log"`
	Sources      []Source        `yaml:"sources"`
	Stopwords    []string        `yaml:"stopwords,omitempty"`
	Brands       []string        `yaml:"brands,omitempty"`
	Categories   []classify.Rule `yaml:"categories,omitempty"`
}

// RetentionDays parses Retention as "Nd", a bare day count, or a Go
// duration rounded down to whole days. It returns 0 when unparseable.
func (c *Config) RetentionDays() int {
	r := strings.TrimSpace(c.Retention)
	if r == "" {
		return 400
	}
	var days int
	if strings.HasSuffix(r, "d") {
		if _, err := fmt.Sscanf(r, "%dd", &days); err == nil {
			return days
		}
		return 0
	}
	if _, err := fmt.Sscanf(r, "%d", &days); err == nil && fmt.Sprint(days) == r {
		return days
	}
	d, err := time.ParseDuration(r)
	if err != nil {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// GetTopK returns the ranked list size, defaulting to 15.
func (c *Config) GetTopK() int {
	if c.TopK <= 0 {
		return 15
	}
	return c.TopK
}

// GetPerFeedLimit returns the per-feed item cap, defaulting to 20.
func (c *Config) GetPerFeedLimit() int {
	if c.PerFeedLimit <= 0 {
		return 20
	}
	return c.PerFeedLimit
}

// Location resolves the configured timezone. Empty means the process zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) SourceNames() []string {
	var names []string
	for _, s := range c.EnabledSources() {
		names = append(names, s.Name)
	}
	return names
}

func (c *Config) StopwordList() []string {
	if len(c.Stopwords) == 0 {
		return tokenize.DefaultStopwords()
	}
	return c.Stopwords
}

func (c *Config) BrandList() []string {
	if len(c.Brands) == 0 {
		return brand.DefaultSeeds()
	}
	return c.Brands
}

func (c *Config) CategoryRules() []classify.Rule {
	if len(c.Categories) == 0 {
		return classify.DefaultRules()
	}
	return c.Categories
}

// HistoryDir is where the history files, database and run lock live.
func (c *Config) HistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	return filepath.Join(DataDir(), "history")
}

// InputPath is the headlines document written by fetch and read by run.
func (c *Config) InputPath() string {
	if c.Paths.Input != "" {
		return c.Paths.Input
	}
	return filepath.Join(DataDir(), "headlines.json")
}

func (c *Config) OutputDir() string {
	if c.Paths.OutputDir != "" {
		return c.Paths.OutputDir
	}
	return filepath.Join(DataDir(), "site")
}

// Warnings lists settings that are valid but likely to surprise.
func (c *Config) Warnings() []string {
	var out []string
	if days := c.RetentionDays(); days > 0 && days < MinYearRetention {
		out = append(out, fmt.Sprintf(
			"retention of %d days is below %d; year-to-date totals will lose older dates", days, MinYearRetention))
	}
	if len(c.EnabledSources()) == 0 {
		out = append(out, "no enabled sources; fetch will produce an empty document")
	}
	return out
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (DefaultConfigPath when empty) on top of
// the embedded defaults. On first run the defaults are written to path.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply.
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	defaults := &Config{Sources: cfg.Sources}
	cfg.Sources = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultSources(cfg, defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDefaultSources refreshes the type and URL of user sources that share
// a name with a built-in source and appends built-in sources the user does
// not list yet.
func mergeDefaultSources(cfg, defaults *Config) {
	byName := make(map[string]int, len(cfg.Sources))
	for i, s := range cfg.Sources {
		byName[s.Name] = i
	}
	for _, d := range defaults.Sources {
		if i, ok := byName[d.Name]; ok {
			cfg.Sources[i].URL = d.URL
			cfg.Sources[i].Type = d.Type
			continue
		}
		cfg.Sources = append(cfg.Sources, d)
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}

	if cfg.RetentionDays() < 1 {
		return fmt.Errorf("retention: invalid value %q (use e.g. 400d)", cfg.Retention)
	}
	if cfg.TopK < 0 {
		return fmt.Errorf("top_k: must not be negative, got %d", cfg.TopK)
	}
	if cfg.PerFeedLimit < 0 {
		return fmt.Errorf("per_feed_limit: must not be negative, got %d", cfg.PerFeedLimit)
	}
	switch cfg.History.Backend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("history.backend: unknown backend %q (valid: json, sqlite)", cfg.History.Backend)
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if _, err := classify.New(cfg.CategoryRules()); err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	return nil
}
